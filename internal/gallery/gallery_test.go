package gallery

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveArtifact_ReturnsServableURL(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	url, err := store.SaveArtifact([]byte("png-bytes"), "image/png")
	if err != nil {
		t.Fatalf("SaveArtifact: %v", err)
	}
	if !strings.HasPrefix(url, "/static/") || !strings.HasSuffix(url, ".png") {
		t.Fatalf("url = %q", url)
	}

	data, err := os.ReadFile(filepath.Join(store.Dir(), strings.TrimPrefix(url, "/static/")))
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Fatalf("artifact content = %q", data)
	}
}

func TestSaveArtifact_ExtensionFollowsMime(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	url, err := store.SaveArtifact([]byte("jpg"), "image/jpeg")
	if err != nil {
		t.Fatalf("SaveArtifact: %v", err)
	}
	if !strings.HasSuffix(url, ".jpg") {
		t.Fatalf("url = %q, want .jpg", url)
	}
}

func TestSaveUpload_RemoveCleansUp(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	path, err := store.SaveUpload(strings.NewReader("selfie"))
	if err != nil {
		t.Fatalf("SaveUpload: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(path), "upload_") {
		t.Fatalf("upload name = %q", filepath.Base(path))
	}

	store.Remove([]string{path})
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("upload still present after Remove")
	}

	// Removing again must be harmless.
	store.Remove([]string{path})
}

func TestNew_RejectsEmptyDir(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatalf("expected an error for an empty dir")
	}
}
