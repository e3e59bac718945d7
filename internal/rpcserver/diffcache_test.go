package rpcserver

import (
	"crypto/sha256"
	"os"
	"path/filepath"
	"testing"

	"github.com/iwyu-go/iwyu-go/internal/common"
)

func keyFor(t *testing.T, contents string) common.SHA256 {
	t.Helper()
	hasher := sha256.New()
	hasher.Write([]byte(contents))
	return common.MakeSHA256Struct(hasher)
}

func writeTempFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing %s: %v", p, err)
	}
	return p
}

func TestFileCacheSaveAndLookup(t *testing.T) {
	cacheDir := filepath.Join(t.TempDir(), "cache")
	cache, err := MakeFileCache(cacheDir, 1<<20)
	if err != nil {
		t.Fatalf("MakeFileCache: %v", err)
	}

	srcDir := t.TempDir()
	key := keyFor(t, "hello")
	src := writeTempFile(t, srcDir, "hello.h", "hello")

	if got := cache.LookupInCache(key); got != "" {
		t.Fatalf("want empty lookup before save, got %q", got)
	}

	if err := cache.SaveFileToCache(src, "hello.h", key, 5); err != nil {
		t.Fatalf("SaveFileToCache: %v", err)
	}

	pathInCache := cache.LookupInCache(key)
	if pathInCache == "" {
		t.Fatal("want non-empty lookup after save")
	}
	if cache.GetFilesCount() != 1 {
		t.Errorf("want 1 cached file, got %d", cache.GetFilesCount())
	}
	if cache.GetBytesOnDisk() != 5 {
		t.Errorf("want 5 bytes on disk, got %d", cache.GetBytesOnDisk())
	}

	dest := filepath.Join(t.TempDir(), "restored.h")
	if !cache.CreateHardLinkFromCache(dest, key) {
		t.Fatal("want hard link to succeed")
	}
	contents, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading restored file: %v", err)
	}
	if string(contents) != "hello" {
		t.Errorf("want restored contents 'hello', got %q", contents)
	}
}

func TestFileCacheSaveBytesToCache(t *testing.T) {
	cacheDir := filepath.Join(t.TempDir(), "cache")
	cache, err := MakeFileCache(cacheDir, 1<<20)
	if err != nil {
		t.Fatalf("MakeFileCache: %v", err)
	}

	key := keyFor(t, "diff text")
	if err := cache.SaveBytesToCache([]byte("diff text"), "result.diff", key); err != nil {
		t.Fatalf("SaveBytesToCache: %v", err)
	}

	pathInCache := cache.LookupInCache(key)
	if pathInCache == "" {
		t.Fatal("want non-empty lookup after SaveBytesToCache")
	}
	contents, err := os.ReadFile(pathInCache)
	if err != nil {
		t.Fatalf("reading cached file: %v", err)
	}
	if string(contents) != "diff text" {
		t.Errorf("want 'diff text', got %q", contents)
	}
}

func TestFileCachePurgesOldestWhenOverLimit(t *testing.T) {
	cacheDir := filepath.Join(t.TempDir(), "cache")
	// A tiny hard limit forces every SaveFileToCache past the first to purge.
	cache, err := MakeFileCache(cacheDir, 10)
	if err != nil {
		t.Fatalf("MakeFileCache: %v", err)
	}

	srcDir := t.TempDir()
	keyA := keyFor(t, "AAAAAAAAAA")
	keyB := keyFor(t, "BBBBBBBBBB")

	srcA := writeTempFile(t, srcDir, "a.h", "AAAAAAAAAA")
	if err := cache.SaveFileToCache(srcA, "a.h", keyA, 10); err != nil {
		t.Fatalf("SaveFileToCache a: %v", err)
	}

	srcB := writeTempFile(t, srcDir, "b.h", "BBBBBBBBBB")
	if err := cache.SaveFileToCache(srcB, "b.h", keyB, 10); err != nil {
		t.Fatalf("SaveFileToCache b: %v", err)
	}

	if got := cache.LookupInCache(keyA); got != "" {
		t.Errorf("want the older entry purged once the limit is exceeded, still found at %q", got)
	}
	if got := cache.LookupInCache(keyB); got == "" {
		t.Error("want the newer entry to survive the purge")
	}
	if cache.GetPurgedFilesCount() != 1 {
		t.Errorf("want 1 purged file, got %d", cache.GetPurgedFilesCount())
	}
}

func TestFileCacheDropAll(t *testing.T) {
	cacheDir := filepath.Join(t.TempDir(), "cache")
	cache, err := MakeFileCache(cacheDir, 1<<20)
	if err != nil {
		t.Fatalf("MakeFileCache: %v", err)
	}

	srcDir := t.TempDir()
	key := keyFor(t, "hello")
	src := writeTempFile(t, srcDir, "hello.h", "hello")
	if err := cache.SaveFileToCache(src, "hello.h", key, 5); err != nil {
		t.Fatalf("SaveFileToCache: %v", err)
	}

	dropped := cache.DropAll()
	if dropped != 1 {
		t.Errorf("want 1 dropped entry, got %d", dropped)
	}
	if cache.GetFilesCount() != 0 {
		t.Errorf("want empty cache after DropAll, got %d files", cache.GetFilesCount())
	}
	if cache.GetBytesOnDisk() != 0 {
		t.Errorf("want 0 bytes on disk after DropAll, got %d", cache.GetBytesOnDisk())
	}
	if got := cache.LookupInCache(key); got != "" {
		t.Errorf("want empty lookup after DropAll, got %q", got)
	}
}
