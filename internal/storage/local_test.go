package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestStorage(t *testing.T) (*LocalStorage, string) {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "storage-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	store, err := NewLocalStorage(filepath.Join(tmpDir, "bucket"))
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	return store, tmpDir
}

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestLocalStorage_UploadDownload(t *testing.T) {
	store, tmpDir := newTestStorage(t)
	ctx := context.Background()

	src := writeTempFile(t, tmpDir, "input.json", `{"event_id":"e1"}`)

	if err := store.Upload(ctx, src, "raw/events/input.json"); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	exists, err := store.Exists(ctx, "raw/events/input.json")
	if err != nil || !exists {
		t.Fatalf("expected object to exist (err=%v)", err)
	}

	dest := filepath.Join(tmpDir, "downloaded.json")
	if err := store.Download(ctx, "raw/events/input.json", dest); err != nil {
		t.Fatalf("Download failed: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("failed to read downloaded file: %v", err)
	}
	if string(data) != `{"event_id":"e1"}` {
		t.Errorf("unexpected content after round trip: %s", data)
	}
}

func TestLocalStorage_DownloadMissing(t *testing.T) {
	store, tmpDir := newTestStorage(t)

	err := store.Download(context.Background(), "raw/missing.json", filepath.Join(tmpDir, "out"))
	if !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("expected ErrObjectNotFound, got %v", err)
	}
}

func TestLocalStorage_ListObjects(t *testing.T) {
	store, tmpDir := newTestStorage(t)
	ctx := context.Background()

	src := writeTempFile(t, tmpDir, "f.txt", "data")
	for _, obj := range []string{"raw/a.json", "raw/sub/b.json", "transformed/c.sqlite"} {
		if err := store.Upload(ctx, src, obj); err != nil {
			t.Fatalf("Upload %s failed: %v", obj, err)
		}
	}

	objects, err := store.ListObjects(ctx, "raw/")
	if err != nil {
		t.Fatalf("ListObjects failed: %v", err)
	}
	if len(objects) != 2 {
		t.Fatalf("expected 2 objects under raw/, got %d: %v", len(objects), objects)
	}
	for _, obj := range objects {
		if obj != "raw/a.json" && obj != "raw/sub/b.json" {
			t.Errorf("unexpected object %s", obj)
		}
	}
}

func TestLocalStorage_ListMissingPrefix(t *testing.T) {
	store, _ := newTestStorage(t)

	objects, err := store.ListObjects(context.Background(), "nothing-here/")
	if err != nil {
		t.Fatalf("ListObjects failed: %v", err)
	}
	if len(objects) != 0 {
		t.Errorf("expected empty list for missing prefix, got %v", objects)
	}
}

func TestLocalStorage_DeleteIdempotent(t *testing.T) {
	store, tmpDir := newTestStorage(t)
	ctx := context.Background()

	src := writeTempFile(t, tmpDir, "f.txt", "data")
	if err := store.Upload(ctx, src, "raw/a.json"); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if err := store.Delete(ctx, "raw/a.json"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	// Second delete of the same object is not an error.
	if err := store.Delete(ctx, "raw/a.json"); err != nil {
		t.Fatalf("repeated Delete failed: %v", err)
	}

	exists, err := store.Exists(ctx, "raw/a.json")
	if err != nil || exists {
		t.Errorf("expected object gone after delete (err=%v)", err)
	}
}

func TestLocalStorage_UploadMultipart(t *testing.T) {
	store, tmpDir := newTestStorage(t)
	ctx := context.Background()

	src := writeTempFile(t, tmpDir, "big.bin", "payload")
	if err := store.UploadMultipart(ctx, src, "transformed/big.bin"); err != nil {
		t.Fatalf("UploadMultipart failed: %v", err)
	}

	exists, err := store.Exists(ctx, "transformed/big.bin")
	if err != nil || !exists {
		t.Errorf("expected multipart upload to behave like Upload (err=%v)", err)
	}
}

func TestLocalStorage_CancelledContext(t *testing.T) {
	store, tmpDir := newTestStorage(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := writeTempFile(t, tmpDir, "f.txt", "data")
	if err := store.Upload(ctx, src, "raw/a.json"); err == nil {
		t.Error("expected error for cancelled context")
	}
	if _, err := store.ListObjects(ctx, "raw/"); err == nil {
		t.Error("expected error for cancelled context")
	}
}
