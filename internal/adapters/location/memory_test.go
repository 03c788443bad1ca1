package location_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/checkoutkit/internal/adapters/location"
)

func receiveFragment(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case fragment := <-ch:
		return fragment
	case <-time.After(time.Second):
		t.Fatal("no fragment notification arrived")
		return ""
	}
}

func assertNoNotification(t *testing.T, ch <-chan string) {
	t.Helper()
	select {
	case fragment := <-ch:
		t.Fatalf("unexpected notification: %q", fragment)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemory_StartsEmpty(t *testing.T) {
	t.Parallel()

	loc := location.NewMemory()

	assert.Equal(t, "", loc.Fragment())
	assert.Equal(t, 0, loc.Writes())
}

func TestNewMemoryWithFragment_StripsHash(t *testing.T) {
	t.Parallel()

	loc := location.NewMemoryWithFragment("#step2")

	assert.Equal(t, "step2", loc.Fragment())
}

func TestMemory_ReplaceFragmentIsSilent(t *testing.T) {
	t.Parallel()

	loc := location.NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := loc.Watch(ctx)

	loc.ReplaceFragment("step2")

	assert.Equal(t, "step2", loc.Fragment())
	assert.Equal(t, 1, loc.Writes())
	assertNoNotification(t, changes)
}

func TestMemory_NavigateNotifiesWatchers(t *testing.T) {
	t.Parallel()

	loc := location.NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := loc.Watch(ctx)

	loc.Navigate("#step3")

	assert.Equal(t, "step3", receiveFragment(t, changes))
	assert.Equal(t, "step3", loc.Fragment())
}

func TestMemory_NavigateToCurrentFragmentIsSuppressed(t *testing.T) {
	t.Parallel()

	loc := location.NewMemoryWithFragment("step2")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := loc.Watch(ctx)

	loc.Navigate("step2")

	assertNoNotification(t, changes)
}

func TestMemory_NavigateReachesEveryWatcher(t *testing.T) {
	t.Parallel()

	loc := location.NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := loc.Watch(ctx)
	second := loc.Watch(ctx)

	loc.Navigate("step2")

	assert.Equal(t, "step2", receiveFragment(t, first))
	assert.Equal(t, "step2", receiveFragment(t, second))
}

func TestMemory_WatchChannelClosesOnContextCancel(t *testing.T) {
	t.Parallel()

	loc := location.NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	changes := loc.Watch(ctx)

	cancel()

	deadline := time.After(time.Second)
	for {
		select {
		case _, open := <-changes:
			if !open {
				return
			}
		case <-deadline:
			t.Fatal("watch channel never closed")
		}
	}
}

func TestMemory_NavigateAfterWatcherGone_DoesNotPanic(t *testing.T) {
	t.Parallel()

	loc := location.NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	changes := loc.Watch(ctx)

	cancel()
	// Drain until closed so the watcher is fully detached.
	for range changes { //nolint:revive // draining
	}

	require.NotPanics(t, func() {
		loc.Navigate("step2")
	})
}
