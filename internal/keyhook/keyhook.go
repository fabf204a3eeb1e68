package keyhook

import (
	"context"
	"time"

	"github.com/1broseidon/railers/internal/keys"
)

// Event is one key transition.
type Event struct {
	Key  keys.Key
	Down bool
	// Injected is set for events produced by synthetic input.
	Injected bool
}

// Source reports every key transition. Observed events are never consumed;
// they always reach the focused application.
type Source interface {
	// Start installs the hook. fn runs on the hook thread and must not block.
	Start(fn func(Event)) error
	// Run keeps the hook alive until ctx is cancelled, then removes it.
	Run(ctx context.Context)
	// Close releases a source whose Run was never started.
	Close() error
}

// Injector synthesizes key transitions.
type Injector interface {
	KeyDown(k keys.Key) error
	KeyUp(k keys.Key) error
}

// Options tunes platform sources.
type Options struct {
	// PollInterval is used by sources that sample keyboard state.
	PollInterval time.Duration
}

// DefaultPollInterval applies when Options.PollInterval is unset.
const DefaultPollInterval = 5 * time.Millisecond
