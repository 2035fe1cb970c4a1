package metrics

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/poiesic/concierge/core"
)

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Requests  int64 `json:"requests"`
	Errors    int64 `json:"errors"`
	Fallbacks int64 `json:"fallbacks"`
	// AvgTimeSec is the mean request duration in seconds, 0 before the first request.
	AvgTimeSec float64 `json:"avg_time_sec"`
}

// Counters keeps process-local totals.
type Counters struct {
	requests  atomic.Int64
	errors    atomic.Int64
	fallbacks atomic.Int64
	totalNano atomic.Int64
}

var _ Sink = (*Counters)(nil)

// NewCounters returns zeroed counters.
func NewCounters() *Counters {
	return &Counters{}
}

func (c *Counters) RequestCompleted(_ context.Context, winner core.ResponderKind, elapsed time.Duration) {
	c.requests.Add(1)
	c.totalNano.Add(int64(elapsed))
	if winner == core.KindFallback {
		c.fallbacks.Add(1)
	}
}

func (c *Counters) ResponderFailed(context.Context, core.ResponderKind, error) {
	c.errors.Add(1)
}

// Snapshot returns the current totals.
func (c *Counters) Snapshot() Snapshot {
	s := Snapshot{
		Requests:  c.requests.Load(),
		Errors:    c.errors.Load(),
		Fallbacks: c.fallbacks.Load(),
	}
	if s.Requests > 0 {
		s.AvgTimeSec = time.Duration(c.totalNano.Load() / s.Requests).Seconds()
	}
	return s
}
