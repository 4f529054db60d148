package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"
)

// ErrQueueFull is returned by Dispatcher.Publish when the buffer is full.
var ErrQueueFull = errors.New("event queue full")

// ErrClosed is returned by Dispatcher.Publish after Close.
var ErrClosed = errors.New("event dispatcher closed")

type DispatcherOptions struct {
	Workers     int
	QueueSize   int
	MaxAttempts int
	// BaseBackoff is the wait before the first retry; it doubles per attempt.
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

// Dispatcher hands events to a downstream Publisher from a pool of workers so
// request handlers never wait on the broker. Failed deliveries are retried
// with exponential backoff and dropped with an error log after MaxAttempts.
type Dispatcher struct {
	next   Publisher
	logger *slog.Logger
	opts   DispatcherOptions

	queue chan Event
	stop  chan struct{}
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
	once   sync.Once
}

func NewDispatcher(next Publisher, logger *slog.Logger, opts DispatcherOptions) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.BaseBackoff <= 0 {
		opts.BaseBackoff = 200 * time.Millisecond
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = 5 * time.Second
	}
	d := &Dispatcher{
		next:   next,
		logger: logger,
		opts:   opts,
		queue:  make(chan Event, opts.QueueSize),
		stop:   make(chan struct{}),
	}
	for i := 0; i < opts.Workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	return d
}

// Publish enqueues e without blocking.
func (d *Dispatcher) Publish(_ context.Context, e Event) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	select {
	case d.queue <- e:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting events and waits for the workers to drain the queue.
// While closing, each queued event gets a single delivery attempt.
func (d *Dispatcher) Close() error {
	var err error
	d.once.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		close(d.stop)
		d.mu.Unlock()

		d.wg.Wait()
		err = d.next.Close()
	})
	return err
}

// Backoff returns the wait before retry number attempt (1-based).
func (d *Dispatcher) Backoff(attempt int) time.Duration {
	if attempt <= 1 {
		return d.opts.BaseBackoff
	}
	if attempt > 32 {
		return d.opts.MaxBackoff
	}
	b := d.opts.BaseBackoff << uint(attempt-1)
	if b <= 0 || b > d.opts.MaxBackoff {
		return d.opts.MaxBackoff
	}
	return b
}

func (d *Dispatcher) stopping() bool {
	select {
	case <-d.stop:
		return true
	default:
		return false
	}
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()
	for e := range d.queue {
		d.deliver(id, e)
	}
}

func (d *Dispatcher) deliver(worker int, e Event) {
	for attempt := 1; ; attempt++ {
		err := d.next.Publish(context.Background(), e)
		if err == nil {
			return
		}
		if attempt >= d.opts.MaxAttempts || d.stopping() {
			d.logger.Error("event dropped",
				slog.String("type", string(e.Type)),
				slog.Int64("id", e.ID),
				slog.Int("attempts", attempt),
				slog.Int("worker", worker),
				slog.Any("err", err),
			)
			return
		}
		t := time.NewTimer(d.Backoff(attempt))
		select {
		case <-t.C:
		case <-d.stop:
			t.Stop()
			return
		}
	}
}
