package ports

import "context"

// Location abstracts the address surface that holds the step fragment.
// Implementations wrap a browser-style address bar, an in-memory fake for
// tests, or the TUI's simulated address line.
//
// The split between ReplaceFragment and Navigate matters: ReplaceFragment
// rewrites the fragment in place without notifying watchers (the equivalent
// of a replace-style history update), while Navigate notifies every active
// watcher (the equivalent of a user-driven hash change).
type Location interface {
	// Fragment returns the current fragment without a leading '#'.
	// Returns the empty string when no fragment is set.
	Fragment() string

	// ReplaceFragment rewrites the fragment in place. Watchers are not
	// notified and no history entry is created. An empty string clears
	// the fragment.
	ReplaceFragment(fragment string)

	// Navigate sets the fragment and notifies all active watchers,
	// mirroring back/forward navigation or a manual address edit.
	Navigate(fragment string)

	// Watch returns a channel that receives the new fragment after every
	// Navigate call. The channel is closed when ctx is cancelled.
	Watch(ctx context.Context) <-chan string
}
