package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nambucca-eng/talus/pkg/domain"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore
// implementation adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewState()
		state.Slope.Height = 3
		state.Slope.Angle = domain.Float64(30)
		state.LayerSeq = 1
		state.Layers = append(state.Layers, domain.MaterialLayer{
			ID: "L1", UnitWeight: 20, FrictionAngle: 35, Cohesion: 2, DepthToBottom: 5,
		})
		state.Phase = domain.PhaseResult
		state.Result = &domain.AnalysisResult{
			CriticalFOS: 1.4562,
			Surfaces:    2000,
			Plots: map[domain.PlotMode][]byte{
				domain.PlotBoundary: []byte("png-bytes"),
			},
		}

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, state.Phase, loaded.Phase)
		assert.Equal(t, state.Slope.Height, loaded.Slope.Height)
		require.NotNil(t, loaded.Slope.Angle)
		assert.Equal(t, 30.0, *loaded.Slope.Angle)
		require.Len(t, loaded.Layers, 1)
		assert.Equal(t, "L1", loaded.Layers[0].ID)
		require.NotNil(t, loaded.Result)
		assert.Equal(t, 1.4562, loaded.Result.CriticalFOS)
		assert.Equal(t, []byte("png-bytes"), loaded.Result.Plots[domain.PlotBoundary])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewState())
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewState())
		_ = store.Save(ctx, id2, domain.NewState())

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
