package metrics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/concierge/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestCounters(t *testing.T) {
	c := NewCounters()
	assert.Equal(t, Snapshot{}, c.Snapshot())

	ctx := context.Background()
	c.RequestCompleted(ctx, core.KindSearch, time.Second)
	c.RequestCompleted(ctx, core.KindFallback, 3*time.Second)
	c.ResponderFailed(ctx, core.KindSynthesis, errors.New("boom"))

	s := c.Snapshot()
	assert.Equal(t, int64(2), s.Requests)
	assert.Equal(t, int64(1), s.Errors)
	assert.Equal(t, int64(1), s.Fallbacks)
	assert.InDelta(t, 2.0, s.AvgTimeSec, 1e-9)
}

func TestCounters_Concurrent(t *testing.T) {
	c := NewCounters()
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RequestCompleted(context.Background(), core.KindSearch, time.Millisecond)
			c.ResponderFailed(context.Background(), core.KindSearch, nil)
		}()
	}
	wg.Wait()

	s := c.Snapshot()
	assert.Equal(t, int64(50), s.Requests)
	assert.Equal(t, int64(50), s.Errors)
}

func TestOTel(t *testing.T) {
	o, err := NewOTel(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		o.RequestCompleted(context.Background(), core.KindSynthesis, 10*time.Millisecond)
		o.ResponderFailed(context.Background(), core.KindSearch, errors.New("boom"))
	})

	global, err := NewOTel(nil)
	require.NoError(t, err)
	assert.NotNil(t, global)
}

func TestNoop(t *testing.T) {
	var s Sink = Noop{}
	s.RequestCompleted(context.Background(), core.KindFallback, 0)
	s.ResponderFailed(context.Background(), core.KindSearch, nil)
}
