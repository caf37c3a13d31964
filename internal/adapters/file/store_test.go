package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nambucca-eng/talus/internal/adapters/file"
	"github.com/nambucca-eng/talus/pkg/domain"
	"github.com/nambucca-eng/talus/pkg/ports"
)

var _ ports.StateStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_OverwriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	state := domain.NewState()
	require.NoError(t, store.Save(ctx, "site", state))

	state.Slope.Height = 5
	require.NoError(t, store.Save(ctx, "site", state))

	loaded, err := store.Load(ctx, "site")
	require.NoError(t, err)
	assert.Equal(t, 5.0, loaded.Slope.Height)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "site.json", entries[0].Name())
}

func TestFileStore_EmptySessionIDRejected(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	assert.Error(t, store.Save(ctx, "", domain.NewState()))
	_, err := store.Load(ctx, "")
	assert.Error(t, err)
}

func TestFileStore_DeleteIsIdempotent(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "gone", domain.NewState()))
	require.NoError(t, store.Delete(ctx, "gone"))
	// Deleting again is not an error.
	assert.NoError(t, store.Delete(ctx, "gone"))
}

func TestFileStore_ListIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "a", domain.NewState()))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, sessions)
}
