package blobstore

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	nfs "github.com/hupe1980/nucleus/internal/fs"
)

func TestLocalBlobStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)

	ctx := context.Background()

	// 1. Create a blob
	blobName := "data-001.bin"
	data := []byte("hello world, this is a test checkpoint blob")

	w, err := store.Create(ctx, blobName)
	require.NoError(t, err)

	n, err := w.Write(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)

	err = w.Close()
	require.NoError(t, err)

	// Verify file exists on disk
	expectedPath := filepath.Join(tmpDir, blobName)
	_, err = os.Stat(expectedPath)
	require.NoError(t, err)

	// 2. Open and ReadAt
	blob, err := store.Open(ctx, blobName)
	require.NoError(t, err)
	defer blob.Close()

	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err = blob.ReadAt(ctx, buf, 6) // "world"
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "world", string(buf))

	// 3. ReadRange
	// Read "this" (offset 13, length 4)
	rangeReader, err := blob.ReadRange(ctx, 13, 4)
	require.NoError(t, err)
	defer rangeReader.Close()

	rangeContent, err := io.ReadAll(rangeReader)
	require.NoError(t, err)
	require.Equal(t, "this", string(rangeContent))

	// 4. List
	// Create another file to test listing
	blobName2 := "data-002.bin"
	w2, err := store.Create(ctx, blobName2)
	require.NoError(t, err)
	w2.Close()

	blobs, err := store.List(ctx, "")
	require.NoError(t, err)

	// Sort for deterministic assertion
	var names []string
	for _, b := range blobs {
		names = append(names, b)
	}
	sort.Strings(names)

	require.Equal(t, []string{blobName, blobName2}, names)

	// 5. Delete
	err = store.Delete(ctx, blobName)
	require.NoError(t, err)

	// Verify deletion
	blobsAfter, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{blobName2}, blobsAfter)

	_, err = store.Open(ctx, blobName)
	require.Error(t, err) // Should fail now
}

func TestLocalBlobStore_ReadRange_Boundaries(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)
	ctx := context.Background()

	blobName := "boundary.bin"
	data := []byte("0123456789")
	w, _ := store.Create(ctx, blobName)
	w.Write(data)
	w.Close()

	blob, err := store.Open(ctx, blobName)
	require.NoError(t, err)
	defer blob.Close()

	// Case 1: Read full range
	r, err := blob.ReadRange(ctx, 0, 10)
	require.NoError(t, err)
	content, _ := io.ReadAll(r)
	r.Close()
	require.True(t, bytes.Equal(data, content))

	// Case 2: Read past end
	r, err = blob.ReadRange(ctx, 8, 5) // Request 5 bytes starting at 8 (only 2 available: 8, 9)
	require.NoError(t, err)
	content, err = io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "89", string(content))
	r.Close()

	// Case 3: Offset past EOF
	r, err = blob.ReadRange(ctx, 20, 5)
	require.ErrorIs(t, err, io.EOF)
	if r != nil {
		r.Close()
	}
}

func TestLocalBlobStore_InvalidName(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	for _, name := range []string{"", "../escape", "/abs/path"} {
		_, err := store.Open(ctx, name)
		require.ErrorIs(t, err, ErrInvalidName, name)
		require.ErrorIs(t, store.Put(ctx, name, []byte("x")), ErrInvalidName, name)
	}
}

func TestLocalBlobStore_NotFound(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	_, err := store.Open(context.Background(), "missing.bin")
	require.ErrorIs(t, err, ErrNotFound)

	// Listing a root that does not exist yet is empty, not an error.
	names, err := NewLocalStore(filepath.Join(t.TempDir(), "nope")).List(context.Background(), "")
	require.NoError(t, err)
	require.Empty(t, names)
}

func TestLocalBlobStore_Nested(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "run-1/step-10/w1.nucm", []byte("a")))
	require.NoError(t, store.Put(ctx, "run-1/step-20/w1.nucm", []byte("b")))
	require.NoError(t, store.Put(ctx, "run-2/step-10/w1.nucm", []byte("c")))

	names, err := store.List(ctx, "run-1/")
	require.NoError(t, err)
	require.Equal(t, []string{"run-1/step-10/w1.nucm", "run-1/step-20/w1.nucm"}, names)

	data, err := ReadAll(ctx, store, "run-2/step-10/w1.nucm")
	require.NoError(t, err)
	require.Equal(t, "c", string(data))
}

func TestLocalBlobStore_FaultInjection(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		fault nfs.Fault
	}{
		{"write", nfs.Fault{FailAfterBytes: 4}},
		{"sync", nfs.Fault{FailAfterBytes: -1, FailOnSync: true}},
		{"close", nfs.Fault{FailAfterBytes: -1, FailOnClose: true}},
		{"rename", nfs.Fault{FailAfterBytes: -1, FailOnRename: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			faulty := nfs.NewFaultyFS(nil)
			faulty.AddRule("broken.bin", tt.fault)
			store := NewLocalStore(dir, WithFileSystem(faulty))

			err := store.Put(ctx, "broken.bin", []byte("0123456789"))
			require.ErrorIs(t, err, nfs.ErrInjected)

			// Neither the blob nor its temporary file may be left behind.
			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			require.Empty(t, entries)

			_, err = store.Open(ctx, "broken.bin")
			require.ErrorIs(t, err, ErrNotFound)

			// Unmatched names are unaffected.
			require.NoError(t, store.Put(ctx, "fine.bin", []byte("ok")))
		})
	}
}
