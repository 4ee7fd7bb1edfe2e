package observability

import (
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	maxSamples      = 5000
	maxErrors       = 50
	recentErrorView = 10
	topPathLimit    = 5
)

type sample struct {
	at        time.Time
	path      string
	status    int
	latencyMs int64
}

// ErrorSample is one failed API request.
type ErrorSample struct {
	At        time.Time `json:"at"`
	Method    string    `json:"method"`
	Path      string    `json:"path"`
	Status    int       `json:"status"`
	LatencyMs int64     `json:"latencyMs"`
}

// PathCount is a request count for one path.
type PathCount struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// Summary aggregates the samples inside one window.
type Summary struct {
	WindowMs     int64       `json:"windowMs"`
	Total        int         `json:"total"`
	Success      int         `json:"success"`
	Errors       int         `json:"errors"`
	SuccessRate  int         `json:"successRate"`
	AvgLatencyMs int64       `json:"avgLatencyMs"`
	P95LatencyMs int64       `json:"p95LatencyMs"`
	TopPaths     []PathCount `json:"topPaths"`
}

// Snapshot is the performance report served to staff.
type Snapshot struct {
	OneHour      Summary       `json:"oneHour"`
	FiveMin      Summary       `json:"fiveMin"`
	RecentErrors []ErrorSample `json:"recentErrors"`
	SampleCount  int           `json:"sampleCount"`
}

// Metrics keeps a bounded in-memory log of API request samples.
type Metrics struct {
	mu      sync.Mutex
	samples []sample
	errors  []ErrorSample // newest first
	now     func() time.Time
}

// NewMetrics initializes metrics storage. A nil clock uses time.Now.
func NewMetrics(now func() time.Time) *Metrics {
	if now == nil {
		now = time.Now
	}
	return &Metrics{now: now}
}

// RecordRequest stores one request sample. Paths outside /api/ are ignored.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil || !strings.HasPrefix(path, "/api/") {
		return
	}
	at := m.now()
	latency := duration.Milliseconds()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = append(m.samples, sample{at: at, path: path, status: status, latencyMs: latency})
	if over := len(m.samples) - maxSamples; over > 0 {
		m.samples = append(m.samples[:0], m.samples[over:]...)
	}
	if status >= 400 {
		m.errors = append([]ErrorSample{{At: at, Method: method, Path: path, Status: status, LatencyMs: latency}}, m.errors...)
		if len(m.errors) > maxErrors {
			m.errors = m.errors[:maxErrors]
		}
	}
}

// Summary aggregates samples recorded within window of now.
func (m *Metrics) Summary(window time.Duration) Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.summaryLocked(window)
}

func (m *Metrics) summaryLocked(window time.Duration) Summary {
	now := m.now()
	out := Summary{WindowMs: window.Milliseconds(), SuccessRate: 100, TopPaths: []PathCount{}}

	var latencies []int64
	var sum int64
	counts := map[string]int{}
	for _, s := range m.samples {
		if now.Sub(s.at) > window {
			continue
		}
		out.Total++
		switch {
		case s.status >= 200 && s.status < 400:
			out.Success++
		case s.status >= 400:
			out.Errors++
		}
		sum += s.latencyMs
		latencies = append(latencies, s.latencyMs)
		counts[s.path]++
	}
	if out.Total == 0 {
		return out
	}

	out.SuccessRate = roundDiv(int64(out.Success)*100, int64(out.Total))
	out.AvgLatencyMs = int64(roundDiv(sum, int64(out.Total)))
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	out.P95LatencyMs = latencies[int(float64(len(latencies)-1)*0.95)]

	for path, count := range counts {
		out.TopPaths = append(out.TopPaths, PathCount{Path: path, Count: count})
	}
	sort.Slice(out.TopPaths, func(i, j int) bool {
		if out.TopPaths[i].Count != out.TopPaths[j].Count {
			return out.TopPaths[i].Count > out.TopPaths[j].Count
		}
		return out.TopPaths[i].Path < out.TopPaths[j].Path
	})
	if len(out.TopPaths) > topPathLimit {
		out.TopPaths = out.TopPaths[:topPathLimit]
	}
	return out
}

// Snapshot returns the hour and five-minute summaries plus the latest errors.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.errors)
	if n > recentErrorView {
		n = recentErrorView
	}
	recent := make([]ErrorSample, n)
	copy(recent, m.errors[:n])
	return Snapshot{
		OneHour:      m.summaryLocked(time.Hour),
		FiveMin:      m.summaryLocked(5 * time.Minute),
		RecentErrors: recent,
		SampleCount:  len(m.samples),
	}
}

func roundDiv(a, b int64) int {
	return int((a*2 + b) / (2 * b))
}
