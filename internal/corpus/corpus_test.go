package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"single newline", "\n", []string{""}},
		{"no trailing newline", "a", []string{"a"}},
		{"trailing newline", "a\n", []string{"a"}},
		{"crlf", "a\r\nb\r\n", []string{"a", "b"}},
		{"interior blank kept", "a\n\nb\n", []string{"a", "", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitLines(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitLines(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestReadPair(t *testing.T) {
	pred := writeFile(t, "pred.txt", "the cat sit on mat\nhello word\n")
	ref := writeFile(t, "ref.txt", "the cat sat on the mat\nhello world\n")

	pair, err := ReadPair(pred, ref)
	if err != nil {
		t.Fatalf("ReadPair: %v", err)
	}
	if pair.Len() != 2 {
		t.Fatalf("Len = %d, want 2", pair.Len())
	}
	if pair.Prediction[1] != "hello word" || pair.Reference[1] != "hello world" {
		t.Errorf("unexpected pair contents: %q / %q", pair.Prediction[1], pair.Reference[1])
	}
}

func TestReadPairMismatch(t *testing.T) {
	pred := writeFile(t, "pred.txt", "one\ntwo\nthree\n")
	ref := writeFile(t, "ref.txt", "one\ntwo\n")

	_, err := ReadPair(pred, ref)
	if !errors.Is(err, ErrLineCountMismatch) {
		t.Fatalf("ReadPair error = %v, want ErrLineCountMismatch", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "3") || !strings.Contains(msg, "2") {
		t.Errorf("error %q should name both line counts", msg)
	}
}

func TestReadPairMissingFile(t *testing.T) {
	ref := writeFile(t, "ref.txt", "one\n")
	if _, err := ReadPair(filepath.Join(t.TempDir(), "absent.txt"), ref); err == nil {
		t.Fatal("ReadPair succeeded on a missing prediction file")
	}
}
