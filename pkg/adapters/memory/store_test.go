package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nambucca-eng/talus/pkg/adapters/memory"
	"github.com/nambucca-eng/talus/pkg/domain"
	"github.com/nambucca-eng/talus/pkg/ports"
)

var _ ports.StateStore = (*memory.Store)(nil)

func TestMemoryStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, memory.NewStore())
}

func TestMemoryStore_IsolatesCallers(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	state := domain.NewState()
	state.Layers = append(state.Layers, domain.MaterialLayer{ID: "L1", UnitWeight: 20, DepthToBottom: 2})
	require.NoError(t, store.Save(ctx, "s", state))

	// Mutating the saved-in state must not affect the stored copy.
	state.Layers[0].UnitWeight = 99

	loaded, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, 20.0, loaded.Layers[0].UnitWeight)

	// Mutating a loaded state must not affect later loads.
	loaded.Layers[0].UnitWeight = 50
	again, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, 20.0, again.Layers[0].UnitWeight)
}
