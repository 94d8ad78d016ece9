package mockdata

import (
	"context"
	"math/rand"
	"time"
)

// Executor abstracts query execution so the latency simulation is not
// hardwired into the chat gateway. Production swaps in a real backend;
// tests use Instant.
type Executor interface {
	Execute(ctx context.Context, query string) ([]Row, error)
}

// JitterExecutor resolves queries against the canned datasets after a
// randomized delay emulating warehouse latency.
type JitterExecutor struct {
	MinDelay time.Duration
	MaxDelay time.Duration
}

// NewJitterExecutor returns an executor with the demo's 300-500ms window.
func NewJitterExecutor() *JitterExecutor {
	return &JitterExecutor{
		MinDelay: 300 * time.Millisecond,
		MaxDelay: 500 * time.Millisecond,
	}
}

func (e *JitterExecutor) Execute(ctx context.Context, query string) ([]Row, error) {
	delay := e.MinDelay
	if e.MaxDelay > e.MinDelay {
		delay += time.Duration(rand.Int63n(int64(e.MaxDelay - e.MinDelay)))
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	return Respond(query), nil
}

// Instant resolves queries immediately. Used by tests.
type Instant struct{}

func (Instant) Execute(ctx context.Context, query string) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Respond(query), nil
}
