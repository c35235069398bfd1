package feedstore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStore_Write(t *testing.T) {
	t.Parallel()

	t.Run("creates missing directory and writes file", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "export", "roivenue")
		store := NewStore(dir)

		path, err := store.Write("feed.xml", []byte("<Orders></Orders>"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if path != filepath.Join(dir, "feed.xml") {
			t.Fatalf("unexpected path %q", path)
		}

		body, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read back: %v", err)
		}
		if string(body) != "<Orders></Orders>" {
			t.Fatalf("unexpected contents %q", body)
		}
	})

	t.Run("directory creation failure surfaces through the write", func(t *testing.T) {
		// A regular file where the directory should be makes both the mkdir
		// and the subsequent write fail; the store must return the write error
		// instead of aborting at the mkdir.
		base := t.TempDir()
		blocker := filepath.Join(base, "export")
		if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
			t.Fatalf("failed to create blocking file: %v", err)
		}

		store := NewStore(blocker)
		if _, err := store.Write("feed.xml", []byte("data")); err == nil {
			t.Fatalf("expected write error")
		}
	})
}
