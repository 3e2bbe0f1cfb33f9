package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"btevta-wasl-backend/internal/domain"
	"btevta-wasl-backend/internal/logger"
)

var (
	ErrQueueFull = errors.New("notification queue is full")
	ErrClosed    = errors.New("notification dispatcher is closed")
)

// Dispatcher queues events and delivers them on worker goroutines so Send never blocks on
// a delivery channel.
type Dispatcher struct {
	next    Notifier
	queue   chan domain.Event
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	delivered atomic.Int64
	failed    atomic.Int64
}

func NewDispatcher(next Notifier, queueSize, workers int, timeout time.Duration) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}
	if workers <= 0 {
		workers = 1
	}
	d := &Dispatcher{
		next:    next,
		queue:   make(chan domain.Event, queueSize),
		timeout: timeout,
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	return d
}

// Send enqueues ev without waiting for delivery.
func (d *Dispatcher) Send(_ context.Context, ev domain.Event) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}
	select {
	case d.queue <- ev:
		return nil
	default:
		return fmt.Errorf("%s %s: %w", ev.Kind, ev.ID, ErrQueueFull)
	}
}

// Close stops accepting events and waits until the queue is drained.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	d.wg.Wait()
}

// Stats returns delivered and failed counts.
func (d *Dispatcher) Stats() (delivered, failed int64) {
	return d.delivered.Load(), d.failed.Load()
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()
	log := logger.WithComponent("notify.dispatcher").With("worker", id)
	log.Debug("Dispatcher worker started")
	for ev := range d.queue {
		if err := d.deliver(ev); err != nil {
			d.failed.Add(1)
			logger.Swallowed("notify.dispatch", err, "kind", ev.Kind, "event_id", ev.ID, "candidate_id", ev.CandidateID)
			continue
		}
		d.delivered.Add(1)
	}
	log.Debug("Dispatcher worker stopped")
}

func (d *Dispatcher) deliver(ev domain.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic delivering %s: %v", ev.Kind, r)
		}
	}()
	ctx := context.Background()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	return d.next.Send(ctx, ev)
}
