package query

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/catalogsearch/internal/metrics"
)

// EvalFunc evaluates one settled query. ctx is cancelled when a newer
// query supersedes this one.
type EvalFunc[Q, R any] func(ctx context.Context, q Q) (R, error)

// Outcome is the result of the latest settled query.
type Outcome[Q, R any] struct {
	Query  Q
	Result R
	Err    error
}

// Controller debounces query changes. Each Submit restarts the delay and
// abandons whatever the previous Submit started, so deliver only ever sees
// the outcome of the most recent query, in submission order.
type Controller[Q, R any] struct {
	label   string
	delay   time.Duration
	eval    EvalFunc[Q, R]
	deliver func(Outcome[Q, R])

	mu     sync.Mutex
	seq    uint64
	timer  *time.Timer
	cancel context.CancelFunc
	closed bool
}

// NewController creates a controller. deliver runs on the evaluating
// goroutine while the controller lock is held; it must not call back into
// the controller.
func NewController[Q, R any](
	label string,
	delay time.Duration,
	eval EvalFunc[Q, R],
	deliver func(Outcome[Q, R]),
) *Controller[Q, R] {
	return &Controller[Q, R]{
		label:   label,
		delay:   delay,
		eval:    eval,
		deliver: deliver,
	}
}

// Delay returns the debounce window.
func (c *Controller[Q, R]) Delay() time.Duration { return c.delay }

// Submit schedules q for evaluation after the debounce window, superseding
// any pending or running evaluation.
func (c *Controller[Q, R]) Submit(q Q) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.abandonLocked()

	c.seq++
	seq := c.seq
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.timer = time.AfterFunc(c.delay, func() {
		c.run(ctx, seq, q)
	})
}

// Cancel abandons the pending or running evaluation without scheduling a new one.
func (c *Controller[Q, R]) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.abandonLocked()
	c.seq++
}

// Close cancels outstanding work; later Submits are ignored.
func (c *Controller[Q, R]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.abandonLocked()
	c.seq++
	c.closed = true
}

func (c *Controller[Q, R]) abandonLocked() {
	if c.timer != nil {
		if c.timer.Stop() {
			metrics.QueryEvaluationsTotal.WithLabelValues(c.label, "superseded").Inc()
		}
		c.timer = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Controller[Q, R]) run(ctx context.Context, seq uint64, q Q) {
	res, err := c.eval(ctx, q)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || seq != c.seq {
		metrics.QueryEvaluationsTotal.WithLabelValues(c.label, "discarded").Inc()
		return
	}

	c.timer = nil
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.deliver(Outcome[Q, R]{Query: q, Result: res, Err: err})
	metrics.QueryEvaluationsTotal.WithLabelValues(c.label, "delivered").Inc()
}
