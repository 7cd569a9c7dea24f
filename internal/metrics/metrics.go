package metrics

import (
	"sync"
	"time"
)

// Collector tracks per-route HTTP request counters for Prometheus text exposition.
type Collector struct {
	mu sync.RWMutex

	totalRequests      map[string]int64 // by route
	totalRequestsDur   map[string]int64 // total duration in ms
	requestErrors      map[string]int64 // 5xx responses by route
	requestsInProgress map[string]int64

	startTime time.Time
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		totalRequests:      make(map[string]int64),
		totalRequestsDur:   make(map[string]int64),
		requestErrors:      make(map[string]int64),
		requestsInProgress: make(map[string]int64),
		startTime:          time.Now(),
	}
}

// RecordRequest records a completed request to a route.
func (c *Collector) RecordRequest(route string, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.totalRequests[route]++
	c.totalRequestsDur[route] += duration.Milliseconds()
}

// RecordError records a server error for a route.
func (c *Collector) RecordError(route string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requestErrors[route]++
}

// RecordRequestStart increments in-progress requests.
func (c *Collector) RecordRequestStart(route string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requestsInProgress[route]++
}

// RecordRequestEnd decrements in-progress requests.
func (c *Collector) RecordRequestEnd(route string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requestsInProgress[route]--
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Uptime             int64
	TotalRequests      map[string]int64
	TotalRequestsDur   map[string]int64
	RequestErrors      map[string]int64
	RequestsInProgress map[string]int64
}

// GetSnapshot returns a snapshot of current metrics.
func (c *Collector) GetSnapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		Uptime:             int64(time.Since(c.startTime).Seconds()),
		TotalRequests:      copyMap(c.totalRequests),
		TotalRequestsDur:   copyMap(c.totalRequestsDur),
		RequestErrors:      copyMap(c.requestErrors),
		RequestsInProgress: copyMap(c.requestsInProgress),
	}
}

func copyMap(m map[string]int64) map[string]int64 {
	result := make(map[string]int64, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}
