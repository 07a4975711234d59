package searcher

import (
	"sync/atomic"
	"time"
)

// SearchMetrics describes one completed move search.
type SearchMetrics struct {
	StartTime    time.Time
	Duration     time.Duration
	Workers      int
	Simulations  int64
	FullPlayouts int64
	CacheHits    int64
}

// MetricsCollector gathers counters during a move search. Implementations
// must be safe for concurrent use by the simulation workers.
type MetricsCollector interface {
	Start(workers int)
	AddSimulation()
	AddFullPlayout()
	AddCacheHit()
	Complete() SearchMetrics
}

type metricsCollector struct {
	startTime    time.Time
	workers      int
	simulations  atomic.Int64
	fullPlayouts atomic.Int64
	cacheHits    atomic.Int64
}

func NewMetricsCollector() MetricsCollector {
	return &metricsCollector{}
}

func (m *metricsCollector) Start(workers int) {
	m.startTime = time.Now()
	m.workers = workers
	m.simulations.Store(0)
	m.fullPlayouts.Store(0)
	m.cacheHits.Store(0)
}

func (m *metricsCollector) AddSimulation() {
	m.simulations.Add(1)
}

func (m *metricsCollector) AddFullPlayout() {
	m.fullPlayouts.Add(1)
}

func (m *metricsCollector) AddCacheHit() {
	m.cacheHits.Add(1)
}

func (m *metricsCollector) Complete() SearchMetrics {
	return SearchMetrics{
		StartTime:    m.startTime,
		Duration:     time.Since(m.startTime),
		Workers:      m.workers,
		Simulations:  m.simulations.Load(),
		FullPlayouts: m.fullPlayouts.Load(),
		CacheHits:    m.cacheHits.Load(),
	}
}

type noMetricsCollector struct{}

func NewNoMetricsCollector() MetricsCollector {
	return &noMetricsCollector{}
}

func (m *noMetricsCollector) Start(workers int)        {}
func (m *noMetricsCollector) AddSimulation()           {}
func (m *noMetricsCollector) AddFullPlayout()          {}
func (m *noMetricsCollector) AddCacheHit()             {}
func (m *noMetricsCollector) Complete() SearchMetrics { return SearchMetrics{} }
