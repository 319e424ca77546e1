package mediaarchive

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/horse37/corretores-sub000/internal/core/domain"
)

func TestDiskArchive_Store(t *testing.T) {
	entry := domain.MediaBackupEntry{
		PropertyID: 42,
		Ref:        "/uploads/imoveis/fachada.jpg",
		Filename:   "fachada.jpg",
		SHA256:     "aabbccddeeff00112233445566778899aabbccddeeff00112233445566778899",
		Size:       4,
		Data:       []byte("data"),
	}

	t.Run("writes the asset under the property directory", func(t *testing.T) {
		root := t.TempDir()
		archive := NewDiskArchive(root, nil)

		if err := archive.Store(context.Background(), entry); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		wantPath := filepath.Join(root, "42", "aabbccddeeff_fachada.jpg")
		content, err := os.ReadFile(wantPath)
		if err != nil {
			t.Fatalf("archived file missing: %v", err)
		}
		if string(content) != "data" {
			t.Errorf("content = %q", content)
		}
	})

	t.Run("storing the same entry twice is a no-op", func(t *testing.T) {
		root := t.TempDir()
		archive := NewDiskArchive(root, nil)

		if err := archive.Store(context.Background(), entry); err != nil {
			t.Fatalf("first store: %v", err)
		}
		if err := archive.Store(context.Background(), entry); err != nil {
			t.Fatalf("second store: %v", err)
		}

		dir := filepath.Join(root, "42")
		files, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(files) != 1 {
			t.Errorf("files = %d, want 1", len(files))
		}
	})

	t.Run("different content of the same file coexists", func(t *testing.T) {
		root := t.TempDir()
		archive := NewDiskArchive(root, nil)

		second := entry
		second.SHA256 = "ffeeddccbbaa99887766554433221100ffeeddccbbaa99887766554433221100"
		second.Data = []byte("other")

		if err := archive.Store(context.Background(), entry); err != nil {
			t.Fatal(err)
		}
		if err := archive.Store(context.Background(), second); err != nil {
			t.Fatal(err)
		}

		files, err := os.ReadDir(filepath.Join(root, "42"))
		if err != nil {
			t.Fatal(err)
		}
		if len(files) != 2 {
			t.Errorf("files = %d, want 2", len(files))
		}
	})
}
