package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/gatelaunch/internal/domain"
	"github.com/spec-kit/gatelaunch/internal/integrations"
)

const maxRecentDispatches = 50

// DispatchRecord is the outcome of delivering one notification to every provider.
type DispatchRecord struct {
	NotificationID string                `json:"notificationId"`
	Type           string                `json:"type"`
	At             time.Time             `json:"at"`
	Results        []integrations.Result `json:"results"`
}

// Dispatcher delivers notifications to external providers off the request path.
type Dispatcher struct {
	providers []integrations.Provider
	queue     chan domain.Notification
	timeout   time.Duration
	logger    *zap.Logger

	mu      sync.Mutex
	recent  []DispatchRecord
	dropped atomic.Int64
}

// NewDispatcher builds a dispatcher with a bounded queue.
func NewDispatcher(providers []integrations.Provider, queueSize int, timeout time.Duration, logger *zap.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		providers: providers,
		queue:     make(chan domain.Notification, queueSize),
		timeout:   timeout,
		logger:    logger,
	}
}

// Enqueue schedules n for delivery without blocking. It reports false when
// no provider is configured or the queue is full.
func (d *Dispatcher) Enqueue(n domain.Notification) bool {
	if len(d.providers) == 0 {
		return false
	}
	select {
	case d.queue <- n:
		return true
	default:
		d.dropped.Add(1)
		d.logger.Warn("dispatch queue full, notification dropped", zap.String("notificationId", n.ID))
		return false
	}
}

// Run consumes the queue until ctx is cancelled, then drains what is left.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case n := <-d.queue:
			d.DispatchNow(ctx, n)
		case <-ctx.Done():
			d.drain()
			return nil
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case n := <-d.queue:
			d.DispatchNow(context.Background(), n)
		default:
			return
		}
	}
}

// DispatchNow delivers n to every provider concurrently and waits for all of
// them. A failing or panicking provider never affects the others.
func (d *Dispatcher) DispatchNow(ctx context.Context, n domain.Notification) []integrations.Result {
	results := make([]integrations.Result, len(d.providers))
	var wg sync.WaitGroup
	for i, p := range d.providers {
		wg.Add(1)
		go func(i int, p integrations.Provider) {
			defer wg.Done()
			results[i] = d.send(ctx, p, n)
		}(i, p)
	}
	wg.Wait()

	d.record(DispatchRecord{NotificationID: n.ID, Type: string(n.Type), At: time.Now(), Results: results})
	return results
}

func (d *Dispatcher) send(ctx context.Context, p integrations.Provider, n domain.Notification) (res integrations.Result) {
	res.Provider = p.Name()
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			res.OK = false
			res.Error = fmt.Sprintf("panic: %v", r)
			d.logger.Error("provider panicked", zap.String("provider", res.Provider), zap.Any("panic", r))
		}
	}()

	if err := p.Send(ctx, n); err != nil {
		res.Error = err.Error()
		d.logger.Warn("provider delivery failed",
			zap.String("provider", res.Provider),
			zap.String("notificationId", n.ID),
			zap.Error(err))
		return res
	}
	res.OK = true
	return res
}

func (d *Dispatcher) record(rec DispatchRecord) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.recent = append([]DispatchRecord{rec}, d.recent...)
	if len(d.recent) > maxRecentDispatches {
		d.recent = d.recent[:maxRecentDispatches]
	}
}

// Recent returns the latest dispatch records, newest first.
func (d *Dispatcher) Recent() []DispatchRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]DispatchRecord, len(d.recent))
	copy(out, d.recent)
	return out
}

// Dropped returns how many notifications were rejected by a full queue.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}
