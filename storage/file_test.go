package storage

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyfort/vault-service-backend/interfaces"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := NewFileStore(t.TempDir(), logger)
	require.NoError(t, err)
	return store
}

func testMeta(id, userID string) *interfaces.VaultMetadata {
	return &interfaces.VaultMetadata{
		VaultID:   id,
		Name:      "Test Wallet",
		Email:     "a@b.com",
		UserID:    userID,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Chains:    []string{},
	}
}

func TestFileStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	meta := testMeta("vault-1", "user-1")
	require.NoError(t, store.Save(ctx, meta))

	got, err := store.Get(ctx, "vault-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, meta.VaultID, got.VaultID)
	assert.Equal(t, meta.Name, got.Name)
	assert.Equal(t, meta.Email, got.Email)
	assert.False(t, got.Verified)
}

func TestFileStore_GetMissingIsNilNotError(t *testing.T) {
	store := newTestStore(t)

	got, err := store.Get(context.Background(), "never-created")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFileStore_GetCorruptRecordIsError(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	path := filepath.Join(store.Dir(), "broken"+metaSuffix)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	got, err := store.Get(ctx, "broken")
	assert.Error(t, err)
	assert.Nil(t, got)
}

func TestFileStore_UpdateMergesInsteadOfOverwriting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	meta := testMeta("vault-1", "")
	require.NoError(t, store.Save(ctx, meta))

	verified := true
	updated, err := store.Update(ctx, "vault-1", interfaces.MetadataUpdate{Verified: &verified})
	require.NoError(t, err)
	assert.True(t, updated.Verified)

	// A later chain-only update must not clear the verified flag.
	updated, err = store.Update(ctx, "vault-1", interfaces.MetadataUpdate{Chains: []string{"Bitcoin"}})
	require.NoError(t, err)
	assert.True(t, updated.Verified)
	assert.Equal(t, []string{"Bitcoin"}, updated.Chains)

	// Chain union is idempotent and order-independent.
	updated, err = store.Update(ctx, "vault-1", interfaces.MetadataUpdate{Chains: []string{"Ethereum", "Bitcoin"}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Bitcoin", "Ethereum"}, updated.Chains)
	assert.True(t, updated.Verified)
}

func TestFileStore_UpdateMissingVault(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Update(context.Background(), "nope", interfaces.MetadataUpdate{Chains: []string{"Bitcoin"}})
	assert.ErrorIs(t, err, interfaces.ErrVaultNotFound)
}

func TestFileStore_ListFiltersByUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testMeta("v1", "alice")))
	require.NoError(t, store.Save(ctx, testMeta("v2", "bob")))
	require.NoError(t, store.Save(ctx, testMeta("v3", "")))

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	alices, err := store.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, alices, 1)
	assert.Equal(t, "v1", alices[0].VaultID)
}

func TestFileStore_ListSkipsCorruptRecords(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testMeta("good", "")))
	path := filepath.Join(store.Dir(), "bad"+metaSuffix)
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0644))

	vaults, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, vaults, 1)
	assert.Equal(t, "good", vaults[0].VaultID)
}

func TestFileStore_ExportRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetExport(ctx, "vault-1")
	assert.ErrorIs(t, err, interfaces.ErrBackupNotFound)

	payload := []byte("opaque-backup-blob")
	require.NoError(t, store.SaveExport(ctx, "vault-1", payload))

	got, err := store.GetExport(ctx, "vault-1")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestFileStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testMeta("v1", "")))
	require.NoError(t, store.Delete(ctx, "v1"))

	got, err := store.Get(ctx, "v1")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting again is not an error.
	assert.NoError(t, store.Delete(ctx, "v1"))
}

func TestFileStore_RejectsTraversalIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	got, err := store.Get(ctx, "../escape")
	require.NoError(t, err)
	assert.Nil(t, got)

	meta := testMeta("../escape", "")
	assert.Error(t, store.Save(ctx, meta))
}
