package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteTranscript writes one line per element to path, with a trailing
// newline, creating parent directories as needed. It returns path for
// convenient inlining at call sites.
func WriteTranscript(t testing.TB, path string, lines ...string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	var data string
	if len(lines) > 0 {
		data = strings.Join(lines, "\n") + "\n"
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
