package api

import (
	"sync/atomic"
)

// metrics holds the engine's request counters. Plain atomics keep the hot
// path allocation-free; /metrics reports a point-in-time snapshot.
type metrics struct {
	requests         atomic.Int64
	analyses         atomic.Int64
	generations      atomic.Int64
	refinements      atomic.Int64
	cacheHits        atomic.Int64
	cacheMisses      atomic.Int64
	upstreamFailures atomic.Int64
}

func newMetrics() *metrics {
	return &metrics{}
}

func (m *metrics) snapshot() map[string]int64 {
	return map[string]int64{
		"requests":          m.requests.Load(),
		"analyses":          m.analyses.Load(),
		"generations":       m.generations.Load(),
		"refinements":       m.refinements.Load(),
		"cache_hits":        m.cacheHits.Load(),
		"cache_misses":      m.cacheMisses.Load(),
		"upstream_failures": m.upstreamFailures.Load(),
	}
}
