package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshGuardSingleFlight(t *testing.T) {
	const callers = 16

	var calls atomic.Int32
	var startedOnce sync.Once
	started := make(chan struct{})
	release := make(chan struct{})

	guard := NewRefreshGuardFunc(func(ctx context.Context) error {
		calls.Add(1)
		startedOnce.Do(func() { close(started) })
		<-release
		return nil
	})

	results := make(chan error, callers)
	var wg sync.WaitGroup

	// First caller starts the refresh and blocks inside it.
	wg.Add(1)
	go func() {
		defer wg.Done()
		results <- guard.Refresh(context.Background())
	}()
	<-started

	// The rest arrive while the refresh is outstanding.
	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- guard.Refresh(context.Background())
		}()
	}
	time.Sleep(50 * time.Millisecond) // let the joiners reach the guard
	close(release)
	wg.Wait()
	close(results)

	for err := range results {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), calls.Load(), "concurrent callers must share one upstream call")
}

func TestRefreshGuardSharesFailure(t *testing.T) {
	refreshErr := errors.New("refresh rejected")

	var calls atomic.Int32
	var startedOnce sync.Once
	started := make(chan struct{})
	release := make(chan struct{})

	guard := NewRefreshGuardFunc(func(ctx context.Context) error {
		calls.Add(1)
		startedOnce.Do(func() { close(started) })
		<-release
		return refreshErr
	})

	first := make(chan error, 1)
	go func() { first <- guard.Refresh(context.Background()) }()
	<-started

	second := make(chan error, 1)
	go func() { second <- guard.Refresh(context.Background()) }()
	time.Sleep(50 * time.Millisecond)
	close(release)

	assert.ErrorIs(t, <-first, refreshErr)
	assert.ErrorIs(t, <-second, refreshErr)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRefreshGuardClearsAfterCompletion(t *testing.T) {
	var calls atomic.Int32
	guard := NewRefreshGuardFunc(func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	require.NoError(t, guard.Refresh(context.Background()))
	require.NoError(t, guard.Refresh(context.Background()))

	// Sequential attempts each get their own upstream call.
	assert.Equal(t, int32(2), calls.Load())
}
