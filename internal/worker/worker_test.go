package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/gatelaunch/internal/domain"
	"github.com/spec-kit/gatelaunch/internal/integrations"
)

type stubProvider struct {
	name  string
	err   error
	panic bool
	delay time.Duration

	mu   sync.Mutex
	sent []string
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Send(ctx context.Context, n domain.Notification) error {
	if p.panic {
		panic("boom")
	}
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	p.mu.Lock()
	p.sent = append(p.sent, n.ID)
	p.mu.Unlock()
	return p.err
}

func (p *stubProvider) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}

func TestDispatchNowIsolatesFailures(t *testing.T) {
	good := &stubProvider{name: "slack"}
	bad := &stubProvider{name: "webhook", err: errors.New("HTTP 502")}
	crashy := &stubProvider{name: "telegram", panic: true}
	d := NewDispatcher([]integrations.Provider{good, bad, crashy}, 4, time.Second, zap.NewNop())

	results := d.DispatchNow(context.Background(), domain.Notification{ID: "n1", Type: domain.NotificationTicketCreated})

	require.Len(t, results, 3)
	assert.Equal(t, integrations.Result{Provider: "slack", OK: true}, results[0])
	assert.Equal(t, integrations.Result{Provider: "webhook", Error: "HTTP 502"}, results[1])
	assert.False(t, results[2].OK)
	assert.Contains(t, results[2].Error, "panic")
	assert.Equal(t, 1, good.count())

	recent := d.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, "n1", recent[0].NotificationID)
}

func TestDispatchTimeoutPerProvider(t *testing.T) {
	slow := &stubProvider{name: "n8n", delay: time.Second}
	fast := &stubProvider{name: "slack"}
	d := NewDispatcher([]integrations.Provider{slow, fast}, 4, 20*time.Millisecond, zap.NewNop())

	start := time.Now()
	results := d.DispatchNow(context.Background(), domain.Notification{ID: "n1"})

	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.False(t, results[0].OK)
	assert.True(t, results[1].OK)
}

func TestEnqueueWithoutProviders(t *testing.T) {
	d := NewDispatcher(nil, 1, time.Second, zap.NewNop())
	assert.False(t, d.Enqueue(domain.Notification{ID: "n1"}))
	assert.Zero(t, d.Dropped())
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	p := &stubProvider{name: "slack"}
	d := NewDispatcher([]integrations.Provider{p}, 1, time.Second, zap.NewNop())

	assert.True(t, d.Enqueue(domain.Notification{ID: "n1"}))
	assert.False(t, d.Enqueue(domain.Notification{ID: "n2"}))
	assert.Equal(t, int64(1), d.Dropped())
}

func TestRunDeliversAndDrains(t *testing.T) {
	p := &stubProvider{name: "slack"}
	d := NewDispatcher([]integrations.Provider{p}, 8, time.Second, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		_ = d.Run(ctx)
		close(done)
	}()
	for i := 0; i < 5; i++ {
		require.True(t, d.Enqueue(domain.Notification{ID: "n"}))
	}
	cancel()
	<-done

	assert.Equal(t, 5, p.count())
}

func TestSchedulerRunsDelayedAndPeriodicTasks(t *testing.T) {
	var once, periodic atomic.Int32
	s := NewScheduler(zap.NewNop())
	s.Add(Task{Name: "startup", Delay: 5 * time.Millisecond, Run: func(context.Context) error {
		once.Add(1)
		return nil
	}})
	s.Add(Task{Name: "tick", Interval: 5 * time.Millisecond, Run: func(context.Context) error {
		periodic.Add(1)
		return errors.New("ignored")
	}})
	s.Add(Task{Name: "never", Run: func(context.Context) error { panic("unreachable") }})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- s.Run(ctx) }()

	assert.Eventually(t, func() bool { return once.Load() == 1 && periodic.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), once.Load())
}

func TestSchedulerRecoversPanics(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler(zap.NewNop())
	s.Add(Task{Name: "crash", Interval: 2 * time.Millisecond, Run: func(context.Context) error {
		runs.Add(1)
		panic("boom")
	}})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- s.Run(ctx) }()
	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}
