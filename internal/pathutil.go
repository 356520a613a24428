package internal

import (
	"path/filepath"
	"runtime"
	"strings"
)

// SafePath returns an extended-length path on Windows so that very long
// paths (and UNC shares) stay openable. On other platforms the path is
// returned unchanged. Idempotent.
func SafePath(path string) string {
	if runtime.GOOS != "windows" {
		return path
	}
	if !strings.HasPrefix(path, `\\`) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	return safePathFor("windows", path)
}

// safePathFor is the pure transform behind SafePath; it expects an
// already-absolute path when goos is windows.
func safePathFor(goos, path string) string {
	if goos != "windows" {
		return path
	}
	if strings.HasPrefix(path, `\\?\`) {
		return path
	}
	if strings.HasPrefix(path, `\\`) { // UNC path
		return `\\?\UNC\` + strings.TrimLeft(path, `\`)
	}
	return `\\?\` + path
}
