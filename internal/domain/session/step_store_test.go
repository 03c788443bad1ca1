package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/checkoutkit/internal/domain/analytics"
	"github.com/felixgeelhaar/checkoutkit/internal/domain/session"
)

// orderSink records the moment each event arrived relative to URL writes.
type orderSink struct {
	order  *[]string
	events []analytics.Event
}

func (s *orderSink) Record(event analytics.Event) error {
	*s.order = append(*s.order, "notify")
	s.events = append(s.events, event)
	return nil
}

func (s *orderSink) Close() error { return nil }

func newStepStore(t *testing.T, order *[]string) (*session.StepStore, *orderSink) {
	t.Helper()

	sink := &orderSink{order: order}
	store, err := session.NewStepStore(session.StepStoreConfig{
		Registry:  session.NewRegistry(),
		SessionID: "session-1",
		Sink:      sink,
		WriteURL: func(int) {
			*order = append(*order, "url")
		},
		Clamp: func(target int) int {
			if target < 1 {
				return 1
			}
			if target > 3 {
				return 3
			}
			return target
		},
	})
	require.NoError(t, err)
	return store, sink
}

func TestNewStepStore_RequiresAllCollaborators(t *testing.T) {
	t.Parallel()

	base := session.StepStoreConfig{
		Registry: session.NewRegistry(),
		Sink:     analytics.NewNullSink(),
		WriteURL: func(int) {},
		Clamp:    func(n int) int { return n },
	}

	testCases := []struct {
		name   string
		mutate func(*session.StepStoreConfig)
	}{
		{name: "missing registry", mutate: func(c *session.StepStoreConfig) { c.Registry = nil }},
		{name: "missing sink", mutate: func(c *session.StepStoreConfig) { c.Sink = nil }},
		{name: "missing url writer", mutate: func(c *session.StepStoreConfig) { c.WriteURL = nil }},
		{name: "missing clamp", mutate: func(c *session.StepStoreConfig) { c.Clamp = nil }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := base
			tc.mutate(&cfg)

			_, err := session.NewStepStore(cfg)
			require.Error(t, err)
		})
	}
}

func TestStepStore_DefaultsToStepOne(t *testing.T) {
	t.Parallel()

	var order []string
	store, _ := newStepStore(t, &order)

	assert.Equal(t, 1, store.StepNumber())
}

func TestStepStore_ChangeStepRunsNotifyThenURLThenCommit(t *testing.T) {
	t.Parallel()

	var order []string
	store, _ := newStepStore(t, &order)

	committed := -1
	store.Subscribe(func(state session.StepState) {
		order = append(order, "commit")
		committed = state.StepNumber
	})

	store.ChangeStep(2)

	assert.Equal(t, []string{"notify", "url", "commit"}, order)
	assert.Equal(t, 2, committed)
	assert.Equal(t, 2, store.StepNumber())
}

func TestStepStore_ChangeStepEmitsStepNumberChangeEvent(t *testing.T) {
	t.Parallel()

	var order []string
	store, sink := newStepStore(t, &order)

	store.ChangeStep(3)

	require.Len(t, sink.events, 1)
	event := sink.events[0]
	assert.Equal(t, analytics.EventStepNumberChange, event.Type)
	assert.Equal(t, "session-1", event.SessionID)
	assert.Equal(t, 3, event.Payload)
}

func TestStepStore_ChangeStepClampsTarget(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		target int
		want   int
	}{
		{name: "below range", target: 0, want: 1},
		{name: "negative", target: -2, want: 1},
		{name: "above range", target: 9, want: 3},
		{name: "in range", target: 2, want: 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var order []string
			store, sink := newStepStore(t, &order)

			store.ChangeStep(tc.target)

			assert.Equal(t, tc.want, store.StepNumber())
			// The notification carries the already clamped target.
			require.Len(t, sink.events, 1)
			assert.Equal(t, tc.want, sink.events[0].Payload)
		})
	}
}

func TestStepStore_RegistersUnderStepStoreKey(t *testing.T) {
	t.Parallel()

	registry := session.NewRegistry()
	_, err := session.NewStepStore(session.StepStoreConfig{
		Registry: registry,
		Sink:     analytics.NewNullSink(),
		WriteURL: func(int) {},
		Clamp:    func(n int) int { return n },
	})
	require.NoError(t, err)

	_, ok := registry.Lookup(session.StepStoreKey)
	assert.True(t, ok)

	// The key is claimed once per session.
	_, err = session.NewStepStore(session.StepStoreConfig{
		Registry: registry,
		Sink:     analytics.NewNullSink(),
		WriteURL: func(int) {},
		Clamp:    func(n int) int { return n },
	})
	require.Error(t, err)
	require.ErrorIs(t, err, session.ErrDuplicateStore)
}
