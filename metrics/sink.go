// Package metrics records request outcomes of the dispatch core.
package metrics

import (
	"context"
	"time"

	"github.com/poiesic/concierge/core"
)

// Sink receives dispatch events. Implementations must be safe for
// concurrent use.
type Sink interface {
	// RequestCompleted is called once per handled request with the responder
	// that produced the answer, or core.KindFallback.
	RequestCompleted(ctx context.Context, winner core.ResponderKind, elapsed time.Duration)

	// ResponderFailed is called when a responder returned an error or panicked.
	ResponderFailed(ctx context.Context, kind core.ResponderKind, err error)
}

// Noop discards every event.
type Noop struct{}

var _ Sink = Noop{}

func (Noop) RequestCompleted(context.Context, core.ResponderKind, time.Duration) {}
func (Noop) ResponderFailed(context.Context, core.ResponderKind, error)          {}
