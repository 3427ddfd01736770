package server

import (
	"context"
	"time"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health reports liveness and database reachability.
type Health struct {
	DB      Pinger
	Timeout time.Duration
}

type HealthStatus struct {
	OK       bool   `json:"ok"`
	Database string `json:"database"`
}

func (h *Health) Status(ctx context.Context) HealthStatus {
	if h == nil || h.DB == nil {
		return HealthStatus{OK: true, Database: "memory"}
	}
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := h.DB.PingContext(ctx); err != nil {
		return HealthStatus{OK: false, Database: "down"}
	}
	return HealthStatus{OK: true, Database: "up"}
}
