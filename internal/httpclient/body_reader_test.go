package httpclient

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func readAll(t *testing.T, source BodySource) string {
	t.Helper()
	rc, err := source.NewReader()
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	return string(got)
}

func TestNewBodySource(t *testing.T) {
	t.Run("both body and body file", func(t *testing.T) {
		_, err := NewBodySource("inline", "file.txt")
		if err == nil {
			t.Error("NewBodySource(both) error = nil, want error")
		}
	})

	t.Run("inline body", func(t *testing.T) {
		content := "hello world"
		source, err := NewBodySource(content, "")
		if err != nil {
			t.Fatalf("NewBodySource(inline) error = %v", err)
		}
		if length, ok := source.ContentLength(); !ok || length != int64(len(content)) {
			t.Errorf("ContentLength() = %d, %v; want %d, true", length, ok, len(content))
		}
		if got := readAll(t, source); got != content {
			t.Errorf("ReadAll() = %q, want %q", got, content)
		}
	})

	t.Run("file body", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "body.txt")
		content := "file content"
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		source, err := NewBodySource("", path)
		if err != nil {
			t.Fatalf("NewBodySource(file) error = %v", err)
		}
		if length, ok := source.ContentLength(); !ok || length != int64(len(content)) {
			t.Errorf("ContentLength() = %d, %v; want %d, true", length, ok, len(content))
		}
		// Every reader replays the full payload.
		for i := 0; i < 3; i++ {
			if got := readAll(t, source); got != content {
				t.Fatalf("iteration %d: ReadAll() = %q, want %q", i, got, content)
			}
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewBodySource("", "/nonexistent/file")
		if err == nil {
			t.Error("NewBodySource(missing file) error = nil, want error")
		}
	})

	t.Run("directory as file", func(t *testing.T) {
		_, err := NewBodySource("", t.TempDir())
		if err == nil {
			t.Error("NewBodySource(directory) error = nil, want error")
		}
	})

	t.Run("no body", func(t *testing.T) {
		source, err := NewBodySource("", "  ")
		if err != nil {
			t.Fatalf("NewBodySource(empty) error = %v", err)
		}
		if source != nil {
			t.Fatalf("NewBodySource(empty) = %T, want nil", source)
		}
	})
}

func TestEmptyBodySource(t *testing.T) {
	var source emptyBodySource
	if length, ok := source.ContentLength(); !ok || length != 0 {
		t.Errorf("ContentLength() = %d, %v; want 0, true", length, ok)
	}
	if got := readAll(t, source); got != "" {
		t.Errorf("ReadAll() = %q, want empty", got)
	}
}
