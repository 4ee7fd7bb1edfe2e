package auth

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestSessionExpiresAtTTL(t *testing.T) {
	clock := newFakeClock()
	ttl := 12 * time.Hour
	registry := NewSessionRegistry(ttl, clock.Now)

	session, err := registry.Create("user-1")
	require.NoError(t, err)
	assert.Len(t, session.Token, 64)

	clock.Advance(ttl - time.Millisecond)
	got, ok := registry.Resolve(session.Token)
	require.True(t, ok)
	assert.Equal(t, "user-1", got.UserID)

	clock.Advance(2 * time.Millisecond)
	_, ok = registry.Resolve(session.Token)
	assert.False(t, ok)
	assert.Equal(t, 0, registry.Len(), "expired entry is removed lazily")
}

func TestSessionRevokeIsIdempotent(t *testing.T) {
	registry := NewSessionRegistry(time.Hour, nil)
	session, err := registry.Create("user-1")
	require.NoError(t, err)

	registry.Revoke(session.Token)
	registry.Revoke(session.Token)
	_, ok := registry.Resolve(session.Token)
	assert.False(t, ok)
}

func TestSessionSweepRemovesOnlyExpired(t *testing.T) {
	clock := newFakeClock()
	registry := NewSessionRegistry(time.Hour, clock.Now)

	old, err := registry.Create("a")
	require.NoError(t, err)
	clock.Advance(30 * time.Minute)
	fresh, err := registry.Create("b")
	require.NoError(t, err)
	clock.Advance(31 * time.Minute)

	assert.Equal(t, 1, registry.Sweep())
	_, ok := registry.Resolve(old.Token)
	assert.False(t, ok)
	_, ok = registry.Resolve(fresh.Token)
	assert.True(t, ok)
}

func TestSessionUnknownToken(t *testing.T) {
	registry := NewSessionRegistry(time.Hour, nil)
	_, ok := registry.Resolve("")
	assert.False(t, ok)
	_, ok = registry.Resolve("nope")
	assert.False(t, ok)
}

func TestSessionConcurrentCreateResolve(t *testing.T) {
	registry := NewSessionRegistry(time.Hour, nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := registry.Create("u")
			if err != nil {
				return
			}
			registry.Resolve(s.Token)
			registry.Sweep()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, registry.Len())
}
