package api

import (
	"time"

	"github.com/ripe-addrlist/ripe-addrlist/src/internal/service"
)

// DataResponse wraps successful responses with a "data" field.
type DataResponse struct {
	Data interface{} `json:"data"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// ProgressInfo describes the synchronizer state of the current or last run.
type ProgressInfo struct {
	State   string `json:"state"`
	Batch   int    `json:"batch,omitempty"`
	Batches int    `json:"batches,omitempty"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	Running    bool               `json:"running"`
	Progress   ProgressInfo       `json:"progress"`
	NextRun    *time.Time         `json:"next_run,omitempty"`
	LastResult *service.RunResult `json:"last_result"`
}

// SyncStartedResponse is returned by POST /sync.
type SyncStartedResponse struct {
	Started bool `json:"started"`
}
