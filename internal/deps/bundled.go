package deps

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// executablePath is swapped in tests.
var executablePath = os.Executable

// ResolveBinary returns the command to execute for a decoder binary.
//
// A bare name such as "ffmpeg" prefers a copy shipped next to the hardsub
// executable (the layout of a bundled release) and otherwise stays as-is so
// it resolves from PATH. Explicit paths are returned untouched.
func ResolveBinary(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsRune(name, os.PathSeparator) || strings.ContainsRune(name, '/') {
		return name
	}
	exe, err := executablePath()
	if err != nil {
		return name
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	if candidate, ok := bundledCandidate(filepath.Dir(exe), name); ok {
		return candidate
	}
	return name
}

func bundledCandidate(dir, name string) (string, bool) {
	if dir == "" {
		return "", false
	}
	if runtime.GOOS == "windows" && !strings.HasSuffix(strings.ToLower(name), ".exe") {
		name += ".exe"
	}
	candidate := filepath.Join(dir, name)
	info, err := os.Stat(candidate)
	if err != nil || !isExecutable(info) {
		return "", false
	}
	return candidate, true
}

func isExecutable(info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
