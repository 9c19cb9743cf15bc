package observability

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics aggregates in-process counters for extraction endpoints.
type Metrics struct {
	mu sync.Mutex

	requestTotal  atomic.Int64
	requestFailed atomic.Int64

	endpoints map[string]*EndpointMetrics
	// fallbacks counts fallback outcomes by reason.
	fallbacks map[string]int64
}

// EndpointMetrics represents metrics for a single API route.
type EndpointMetrics struct {
	count         atomic.Int64
	totalDuration atomic.Int64 // milliseconds
	errorCount    atomic.Int64
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		endpoints: make(map[string]*EndpointMetrics),
		fallbacks: make(map[string]int64),
	}
}

// RecordRequest records a finished request.
func (m *Metrics) RecordRequest(endpoint string, duration time.Duration, failed bool) {
	m.requestTotal.Add(1)
	em := m.endpoint(endpoint)
	em.count.Add(1)
	em.totalDuration.Add(duration.Milliseconds())
	if failed {
		m.requestFailed.Add(1)
		em.errorCount.Add(1)
	}
}

// RecordFallback records that an extraction used the fallback policy.
func (m *Metrics) RecordFallback(reason string) {
	m.mu.Lock()
	m.fallbacks[reason]++
	m.mu.Unlock()
}

func (m *Metrics) endpoint(name string) *EndpointMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	em, ok := m.endpoints[name]
	if !ok {
		em = &EndpointMetrics{}
		m.endpoints[name] = em
	}
	return em
}

// Reset resets all metrics.
func (m *Metrics) Reset() {
	m.requestTotal.Store(0)
	m.requestFailed.Store(0)

	m.mu.Lock()
	m.endpoints = make(map[string]*EndpointMetrics)
	m.fallbacks = make(map[string]int64)
	m.mu.Unlock()
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := &MetricsSnapshot{
		RequestTotal:  m.requestTotal.Load(),
		RequestFailed: m.requestFailed.Load(),
		Endpoints:     make([]EndpointSnapshot, 0, len(m.endpoints)),
		Fallbacks:     make(map[string]int64, len(m.fallbacks)),
	}
	for name, em := range m.endpoints {
		count := em.count.Load()
		var avg int64
		if count > 0 {
			avg = em.totalDuration.Load() / count
		}
		snap.Endpoints = append(snap.Endpoints, EndpointSnapshot{
			Endpoint:        name,
			Count:           count,
			ErrorCount:      em.errorCount.Load(),
			AverageDuration: avg,
		})
	}
	sort.Slice(snap.Endpoints, func(i, j int) bool {
		return snap.Endpoints[i].Endpoint < snap.Endpoints[j].Endpoint
	})
	for reason, n := range m.fallbacks {
		snap.Fallbacks[reason] = n
	}
	return snap
}

// MetricsSnapshot represents a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	RequestTotal  int64              `json:"request_total"`
	RequestFailed int64              `json:"request_failed"`
	Endpoints     []EndpointSnapshot `json:"endpoints"`
	Fallbacks     map[string]int64   `json:"fallbacks"`
}

// EndpointSnapshot represents metrics for a single route.
type EndpointSnapshot struct {
	Endpoint        string `json:"endpoint"`
	Count           int64  `json:"count"`
	ErrorCount      int64  `json:"error_count"`
	AverageDuration int64  `json:"average_duration_ms"`
}

// SuccessRate returns the success rate as a percentage (0-100).
func (s *MetricsSnapshot) SuccessRate() float64 {
	if s.RequestTotal == 0 {
		return 100.0
	}
	return float64(s.RequestTotal-s.RequestFailed) / float64(s.RequestTotal) * 100.0
}
