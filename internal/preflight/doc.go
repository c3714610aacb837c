// Package preflight provides readiness checks for the filesystem locations
// and local state hardsub depends on.
//
// The CLI "hardsub deps" command runs them next to the external binary
// checks from internal/deps so a misconfigured scratch or cache directory
// shows up before a long conversion starts.
package preflight
