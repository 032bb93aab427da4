package badger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/venuefinder/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "nested", "store")
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	info, err := os.Stat(tmpDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpenBackend_NotADirectory(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(tmpFile, []byte("x"), 0644))

	_, err := OpenBackend(tmpFile, false)
	assert.Error(t, err)
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())

	err = backend.WithTx(func(tx *badger.Txn) error { return nil }, false)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestDeletePrefix(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	err = backend.WithWriteBatch(func(wb *badger.WriteBatch) error {
		for _, k := range []string{"v:a:1", "v:a:2", "v:ab:1", "act"} {
			if err := wb.Set([]byte(k), []byte("x")); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	n, err := backend.deletePrefix(makeVersionPrefix("a"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	keys, err := backend.keysWithPrefix([]byte("v:"))
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, "v:ab:1", string(keys[0]))

	n, err = backend.deletePrefix([]byte("missing:"))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "v:x:man", string(makeManifestKey("x")))
	assert.Equal(t, "v:x:ven:42", string(makeVenueKey("x", "42")))

	k1 := makeRowKey("x", 1)
	k256 := makeRowKey("x", 256)
	assert.Less(t, string(k1), string(k256), "row keys must sort by position")

	pos, ok := suffixUint32(k256, makeRowPrefix("x"))
	assert.True(t, ok)
	assert.Equal(t, uint32(256), pos)

	_, ok = suffixUint32([]byte("v:x:row:12"), makeRowPrefix("x"))
	assert.False(t, ok)

	assert.Error(t, validateVersion(""))
	assert.Error(t, validateVersion("a:b"))
	assert.NoError(t, validateVersion("3f0c8a6e-2d4b-4c1a-9b7e-5a6d8c9e0f12"))
}
