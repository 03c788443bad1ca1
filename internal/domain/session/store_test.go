package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/checkoutkit/internal/domain/session"
)

type counterState struct {
	Count int
}

func counterReducer(state counterState, action session.Action) counterState {
	if action.Type == "INCREMENT" {
		state.Count++
	}
	return state
}

func TestStore_DispatchCommitsSynchronously(t *testing.T) {
	t.Parallel()

	store := session.NewStore(counterState{}, counterReducer)

	store.Dispatch(session.Action{Type: "INCREMENT"})

	assert.Equal(t, 1, store.State().Count)
}

func TestStore_UnknownActionLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	store := session.NewStore(counterState{Count: 3}, counterReducer)

	store.Dispatch(session.Action{Type: "NOOP"})

	assert.Equal(t, 3, store.State().Count)
}

func TestStore_EffectsRunBeforeCommit(t *testing.T) {
	t.Parallel()

	store := session.NewStore(counterState{}, counterReducer)

	var observed []int
	store.Use(func(state counterState, _ session.Action) {
		observed = append(observed, state.Count)
	})

	store.Dispatch(session.Action{Type: "INCREMENT"})
	store.Dispatch(session.Action{Type: "INCREMENT"})

	// Each effect saw the state as it was before its action committed.
	assert.Equal(t, []int{0, 1}, observed)
	assert.Equal(t, 2, store.State().Count)
}

func TestStore_EffectsRunInRegistrationOrder(t *testing.T) {
	t.Parallel()

	store := session.NewStore(counterState{}, counterReducer)

	var order []string
	store.Use(func(_ counterState, _ session.Action) { order = append(order, "first") })
	store.Use(func(_ counterState, _ session.Action) { order = append(order, "second") })

	store.Dispatch(session.Action{Type: "INCREMENT"})

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestStore_SubscribersSeeCommittedState(t *testing.T) {
	t.Parallel()

	store := session.NewStore(counterState{}, counterReducer)

	var notified []int
	store.Subscribe(func(state counterState) {
		notified = append(notified, state.Count)
	})

	store.Dispatch(session.Action{Type: "INCREMENT"})
	store.Dispatch(session.Action{Type: "INCREMENT"})

	assert.Equal(t, []int{1, 2}, notified)
}

func TestStore_UnsubscribeStopsNotifications(t *testing.T) {
	t.Parallel()

	store := session.NewStore(counterState{}, counterReducer)

	calls := 0
	unsubscribe := store.Subscribe(func(counterState) { calls++ })

	store.Dispatch(session.Action{Type: "INCREMENT"})
	unsubscribe()
	store.Dispatch(session.Action{Type: "INCREMENT"})

	assert.Equal(t, 1, calls)
}

func TestRegistry_RegisterClaimsKeyOnce(t *testing.T) {
	t.Parallel()

	registry := session.NewRegistry()

	require.NoError(t, registry.Register("checkout-steps", struct{}{}))

	err := registry.Register("checkout-steps", struct{}{})
	require.Error(t, err)
	require.ErrorIs(t, err, session.ErrDuplicateStore)
}

func TestRegistry_LookupReturnsRegisteredStore(t *testing.T) {
	t.Parallel()

	registry := session.NewRegistry()
	store := session.NewStore(counterState{}, counterReducer)
	require.NoError(t, registry.Register("counter", store))

	got, ok := registry.Lookup("counter")

	require.True(t, ok)
	assert.Same(t, store, got)

	_, ok = registry.Lookup("missing")
	assert.False(t, ok)
}

func TestRegistry_KeysAreSorted(t *testing.T) {
	t.Parallel()

	registry := session.NewRegistry()
	require.NoError(t, registry.Register("zeta", struct{}{}))
	require.NoError(t, registry.Register("alpha", struct{}{}))

	assert.Equal(t, []string{"alpha", "zeta"}, registry.Keys())
}
