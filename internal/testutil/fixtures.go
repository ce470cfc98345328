// Package testutil provides heap fixtures shared across test packages.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/runtime-analysis/internal/heap"
)

// BuildSampleHeap constructs the canonical small test heap: a Global
// object retaining two Points and a String, with one Point holding a
// populated element store.
func BuildSampleHeap() *heap.Heap {
	h := heap.NewHeap()
	h.SetCapacity(1 << 20)

	global := h.AddObject("Global", 64)
	p1 := h.AddObject("Point", 24)
	p2 := h.AddObject("Point", 24)
	name := h.AddString(12)

	p1.Elements = h.AddStorageArray(48, name)
	global.Refs = append(global.Refs, p1, p2, name)
	h.AddRoot(global)

	return h
}

// WriteSnapshot writes a heap snapshot file into dir and returns its path.
func WriteSnapshot(t *testing.T, h *heap.Heap, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := h.WriteSnapshotFile(path); err != nil {
		t.Fatalf("failed to write snapshot %s: %v", name, err)
	}
	return path
}

// TempDir creates a temporary directory for testing and returns its path.
// The directory is automatically cleaned up when the test completes.
func TempDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "runtime-analysis-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() {
		os.RemoveAll(dir)
	})
	return dir
}

// WriteFile writes content to a file in the given directory.
func WriteFile(t *testing.T, dir, filename, content string) string {
	t.Helper()
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	return path
}

// ReadFile reads a file and returns its contents.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file %s: %v", path, err)
	}
	return string(data)
}

// FileExists checks if a file exists.
func FileExists(t *testing.T, path string) bool {
	t.Helper()
	_, err := os.Stat(path)
	return err == nil
}
