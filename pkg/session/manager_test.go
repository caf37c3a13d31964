package session_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nambucca-eng/talus/pkg/adapters/memory"
	"github.com/nambucca-eng/talus/pkg/domain"
	"github.com/nambucca-eng/talus/pkg/session"
)

func TestManager_LoadOrStart(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	// First call initializes and persists a clean session.
	state, err := manager.LoadOrStart(ctx, "site-a")
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseIdle, state.Phase)
	assert.Equal(t, domain.DefaultSlices, state.Slope.Slices)

	// Mutate and save; the next LoadOrStart resumes it.
	state.Slope.Height = 7
	require.NoError(t, manager.Save(ctx, "site-a", state))

	resumed, err := manager.LoadOrStart(ctx, "site-a")
	require.NoError(t, err)
	assert.Equal(t, 7.0, resumed.Slope.Height)

	ids, err := manager.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "site-a")
}

func TestManager_DeleteRemovesSession(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	_, err := manager.LoadOrStart(ctx, "temp")
	require.NoError(t, err)

	require.NoError(t, manager.Delete(ctx, "temp"))

	_, err = manager.Load(ctx, "temp")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_WithLockSerializesPerSession(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	const workers = 20
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = manager.WithLock(ctx, "shared", func(ctx context.Context) error {
				// Unsynchronized on purpose: the lock is the only guard.
				counter++
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestManager_LocksAreIndependentAcrossSessions(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	holding := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = manager.WithLock(ctx, "one", func(ctx context.Context) error {
			close(holding)
			<-release
			return nil
		})
	}()

	<-holding

	// A different session must not block behind "one".
	done := make(chan struct{})
	go func() {
		_ = manager.WithLock(ctx, "two", func(ctx context.Context) error { return nil })
		close(done)
	}()

	<-done
	close(release)
}
