package auth

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Limiter decides whether another attempt for key is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// AttemptKey joins caller identity and email into a limiter key.
func AttemptKey(ip, email string) string {
	if ip == "" {
		ip = "unknown"
	}
	return ip + "|" + email
}

// MemoryLimiter is a sliding-log limiter held in process memory.
type MemoryLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	window   time.Duration
	max      int
	now      func() time.Time
}

// NewMemoryLimiter allows max attempts per key within window.
func NewMemoryLimiter(window time.Duration, max int, now func() time.Time) *MemoryLimiter {
	if now == nil {
		now = time.Now
	}
	return &MemoryLimiter{attempts: make(map[string][]time.Time), window: window, max: max, now: now}
}

// Allow records the attempt when it fits inside the window.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := l.now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()
	log := prune(l.attempts[key], cutoff)
	if len(log) >= l.max {
		l.attempts[key] = log
		return false, nil
	}
	l.attempts[key] = append(log, now)
	return true, nil
}

// Purge drops keys whose attempts all fell out of the window.
func (l *MemoryLimiter) Purge(context.Context) error {
	cutoff := l.now().Add(-l.window)
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, log := range l.attempts {
		if log = prune(log, cutoff); len(log) == 0 {
			delete(l.attempts, key)
		} else {
			l.attempts[key] = log
		}
	}
	return nil
}

func prune(log []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(log) && !log[i].After(cutoff) {
		i++
	}
	return log[i:]
}

// slidingWindowScript trims the log, counts it, and admits the attempt atomically.
var slidingWindowScript = redis.NewScript(`
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", ARGV[1])
local count = redis.call("ZCARD", KEYS[1])
if count >= tonumber(ARGV[3]) then
  return 0
end
redis.call("ZADD", KEYS[1], ARGV[2], ARGV[4])
redis.call("PEXPIRE", KEYS[1], ARGV[5])
return 1
`)

// RedisLimiter shares the sliding log across processes through a sorted set.
type RedisLimiter struct {
	client redis.Scripter
	prefix string
	window time.Duration
	max    int
	now    func() time.Time
}

// NewRedisLimiter builds a limiter backed by client.
func NewRedisLimiter(client redis.Scripter, window time.Duration, max int) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: "gatelaunch:ratelimit:", window: window, max: max, now: time.Now}
}

// Allow records the attempt when it fits inside the window.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := l.now()
	cutoff := now.Add(-l.window).UnixMilli()
	res, err := slidingWindowScript.Run(ctx, l.client, []string{l.prefix + key},
		strconv.FormatInt(cutoff, 10),
		strconv.FormatInt(now.UnixMilli(), 10),
		l.max,
		uuid.NewString(),
		l.window.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit script: %w", err)
	}
	return res == 1, nil
}
