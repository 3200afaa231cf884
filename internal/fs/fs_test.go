package fs

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS(t *testing.T) {
	tmp := t.TempDir()
	lfs := LocalFS{}

	dir := filepath.Join(tmp, "subdir")
	require.NoError(t, lfs.MkdirAll(dir, 0o755))

	fpath := filepath.Join(dir, "test.txt")
	f, err := lfs.OpenFile(fpath, os.O_CREATE|os.O_RDWR, 0o644)
	require.NoError(t, err)

	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, f.Sync())
	require.NoError(t, f.Close())

	info, err := lfs.Stat(fpath)
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size())

	tmpFile, err := lfs.CreateTemp(dir, "x-*.tmp")
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(tmpFile.Name()))
	require.NoError(t, tmpFile.Close())

	newPath := filepath.Join(dir, "renamed.txt")
	require.NoError(t, lfs.Rename(fpath, newPath))

	r, err := lfs.OpenFile(newPath, os.O_RDONLY, 0)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	require.NoError(t, r.Close())

	require.NoError(t, lfs.Remove(newPath))
	_, err = lfs.Stat(newPath)
	assert.True(t, os.IsNotExist(err))
}

func TestFaultyFS(t *testing.T) {
	tmp := t.TempDir()

	t.Run("fail after bytes", func(t *testing.T) {
		ffs := NewFaultyFS(nil)
		ffs.AddRule("limited", Fault{FailAfterBytes: 4})

		f, err := ffs.OpenFile(filepath.Join(tmp, "limited.bin"), os.O_CREATE|os.O_WRONLY, 0o644)
		require.NoError(t, err)
		defer f.Close()

		_, err = f.Write([]byte("abcd"))
		require.NoError(t, err)
		_, err = f.Write([]byte("e"))
		require.ErrorIs(t, err, ErrInjected)
	})

	t.Run("unmatched files are untouched", func(t *testing.T) {
		ffs := NewFaultyFS(nil)
		ffs.AddRule("limited", Fault{FailAfterBytes: 0})

		f, err := ffs.OpenFile(filepath.Join(tmp, "free.bin"), os.O_CREATE|os.O_WRONLY, 0o644)
		require.NoError(t, err)
		_, err = f.Write([]byte("plenty"))
		require.NoError(t, err)
		require.NoError(t, f.Close())
	})

	t.Run("sync and close", func(t *testing.T) {
		custom := errors.New("disk gone")
		ffs := NewFaultyFS(nil)
		ffs.AddRule("broken", Fault{FailAfterBytes: -1, FailOnSync: true, FailOnClose: true, Err: custom})

		f, err := ffs.CreateTemp(tmp, "broken-*.tmp")
		require.NoError(t, err)
		require.ErrorIs(t, f.Sync(), custom)
		require.ErrorIs(t, f.Close(), custom)
	})

	t.Run("rename", func(t *testing.T) {
		ffs := NewFaultyFS(nil)
		ffs.AddRule("target", Fault{FailAfterBytes: -1, FailOnRename: true})

		src := filepath.Join(tmp, "src.bin")
		require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))
		require.ErrorIs(t, ffs.Rename(src, filepath.Join(tmp, "target.bin")), ErrInjected)

		ffs.ClearRules()
		require.NoError(t, ffs.Rename(src, filepath.Join(tmp, "target.bin")))
	})
}
