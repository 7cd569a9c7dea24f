package health

import (
	"context"
	"fmt"
	"time"
)

// Status represents the health status of a component.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Pinger is anything that can report database reachability. catalog.Store satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CheckResult holds the result of a health check.
type CheckResult struct {
	Status    Status    `json:"status"`
	Message   string    `json:"message,omitempty"`
	LatencyMS int64     `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error,omitempty"`
}

// Component represents a system component that can be health-checked.
type Component struct {
	Name string `json:"name"`
	Type string `json:"type"`
	CheckResult
}

// HealthStatus represents the overall health of the service.
type HealthStatus struct {
	Status     Status      `json:"status"`
	InstanceID string      `json:"instance_id,omitempty"`
	Version    string      `json:"version,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
	Components []Component `json:"components"`
}

// Config holds health checker configuration.
type Config struct {
	Database   Pinger
	InstanceID string
	Version    string

	DBTimeout          time.Duration
	MaxDatabaseLatency time.Duration
}

// Checker performs health checks on the catalog database.
type Checker struct {
	db         Pinger
	instanceID string
	version    string

	dbTimeout          time.Duration
	maxDatabaseLatency time.Duration
	now                func() time.Time
}

// New creates a new health checker.
func New(cfg Config) *Checker {
	if cfg.DBTimeout == 0 {
		cfg.DBTimeout = 2 * time.Second
	}
	if cfg.MaxDatabaseLatency == 0 {
		cfg.MaxDatabaseLatency = 100 * time.Millisecond
	}
	return &Checker{
		db:                 cfg.Database,
		instanceID:         cfg.InstanceID,
		version:            cfg.Version,
		dbTimeout:          cfg.DBTimeout,
		maxDatabaseLatency: cfg.MaxDatabaseLatency,
		now:                time.Now,
	}
}

// Check runs all checks and returns the overall status.
func (c *Checker) Check(ctx context.Context) HealthStatus {
	components := make([]Component, 0, 1)
	if c.db != nil {
		components = append(components, c.checkDatabase(ctx, "catalog_db", c.db))
	}
	return c.overall(components)
}

func (c *Checker) checkDatabase(ctx context.Context, name string, db Pinger) Component {
	comp := Component{
		Name:        name,
		Type:        "database",
		CheckResult: CheckResult{Timestamp: c.now()},
	}

	dbCtx, cancel := context.WithTimeout(ctx, c.dbTimeout)
	defer cancel()

	start := time.Now()
	err := db.Ping(dbCtx)
	latency := time.Since(start)
	comp.LatencyMS = latency.Milliseconds()

	switch {
	case err != nil:
		comp.Status = StatusUnhealthy
		comp.Error = err.Error()
		comp.Message = "Database unreachable"
	case latency > c.maxDatabaseLatency:
		comp.Status = StatusDegraded
		comp.Message = fmt.Sprintf("High latency: %v", latency)
	default:
		comp.Status = StatusHealthy
		comp.Message = "Connected"
	}
	return comp
}

func (c *Checker) overall(components []Component) HealthStatus {
	status := StatusHealthy
	for _, comp := range components {
		switch comp.Status {
		case StatusUnhealthy:
			// The catalog database is the only critical dependency.
			status = StatusUnhealthy
		case StatusDegraded:
			if status == StatusHealthy {
				status = StatusDegraded
			}
		}
	}
	return HealthStatus{
		Status:     status,
		InstanceID: c.instanceID,
		Version:    c.version,
		Timestamp:  c.now(),
		Components: components,
	}
}
