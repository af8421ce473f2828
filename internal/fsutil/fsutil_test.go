package fsutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRemoveFileSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := f.Truncate(123); err != nil {
		t.Fatalf("truncate failed: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	size, removed, err := RemoveFileSize(path)
	if err != nil {
		t.Fatalf("RemoveFileSize() failed: %v", err)
	}
	if !removed || size != 123 {
		t.Errorf("RemoveFileSize() = %d, %v; want 123, true", size, removed)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file still exists after removal")
	}

	// Removing it again reports nothing reclaimed, not an error.
	size, removed, err = RemoveFileSize(path)
	if err != nil {
		t.Fatalf("RemoveFileSize(absent) failed: %v", err)
	}
	if removed || size != 0 {
		t.Errorf("RemoveFileSize(absent) = %d, %v; want 0, false", size, removed)
	}
}

func TestRemoveFileSize_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	size, removed, err := RemoveFileSize(path)
	if err != nil {
		t.Fatalf("RemoveFileSize() failed: %v", err)
	}
	// Zero bytes reclaimed, but the deletion itself did happen.
	if !removed || size != 0 {
		t.Errorf("RemoveFileSize() = %d, %v; want 0, true", size, removed)
	}
}
