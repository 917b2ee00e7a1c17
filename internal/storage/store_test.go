package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStoreRoundTrip(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	content := []byte("scanned degree certificate")
	hash, err := store.Save(content)
	require.NoError(t, err)

	sum := sha256.Sum256(content)
	assert.Equal(t, hex.EncodeToString(sum[:]), hash)

	loaded, err := store.Load(hash)
	require.NoError(t, err)
	assert.Equal(t, content, loaded)
}

func TestDiskStoreDeduplicatesIdenticalContent(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	h1, err := store.Save([]byte("same bytes"))
	require.NoError(t, err)
	h2, err := store.Save([]byte("same bytes"))
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestDiskStoreLoadMissingHash(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("deadbeef")
	assert.Error(t, err)
}
