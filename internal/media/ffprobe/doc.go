// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// It has no process handling of its own: callers run ffprobe with Args and
// hand the captured stdout to Parse.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual stream properties, including frame rate ratios
//   - Format: container-level metadata (duration, size, bitrate)
package ffprobe
