package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/ripe-addrlist/ripe-addrlist/src/internal/addrlist"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/log"
	"github.com/ripe-addrlist/ripe-addrlist/src/internal/service"
)

// SyncRunner is the part of service.SyncService the API controls.
type SyncRunner interface {
	StartAsync(ctx context.Context) (<-chan *service.RunResult, error)
	Running() bool
	Progress() addrlist.Transition
	LastResult() *service.RunResult
}

// Schedule reports when the next scheduled run happens.
type Schedule interface {
	NextRun() time.Time
}

// Handler serves the status API.
type Handler struct {
	runner   SyncRunner
	schedule Schedule
	version  string
	// runCtx is the parent of runs started through the API. It outlives requests.
	runCtx context.Context
}

// NewHandler creates a handler. schedule may be nil when no scheduler runs.
func NewHandler(runCtx context.Context, runner SyncRunner, schedule Schedule, version string) *Handler {
	return &Handler{
		runner:   runner,
		schedule: schedule,
		version:  version,
		runCtx:   runCtx,
	}
}

// CheckHealth reports that the process is alive.
func (h *Handler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	writeJSONData(w, HealthResponse{Status: "ok", Version: h.version})
}

// GetStatus reports the current progress and the last run result.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	progress := h.runner.Progress()
	status := StatusResponse{
		Running: h.runner.Running(),
		Progress: ProgressInfo{
			State:   progress.State.String(),
			Batch:   progress.Batch,
			Batches: progress.Batches,
		},
		LastResult: h.runner.LastResult(),
	}

	if h.schedule != nil {
		if next := h.schedule.NextRun(); !next.IsZero() {
			status.NextRun = &next
		}
	}

	writeJSONData(w, status)
}

// StartSync starts a synchronization in the background.
func (h *Handler) StartSync(w http.ResponseWriter, r *http.Request) {
	if _, err := h.runner.StartAsync(h.runCtx); err != nil {
		if stderrors.Is(err, service.ErrRunInProgress) {
			WriteConflict(w, err.Error())
			return
		}
		log.Errorf("Failed to start synchronization: %v", err)
		WriteInternalError(w, "failed to start synchronization")
		return
	}

	log.Infof("Synchronization started through the API")
	writeJSON(w, http.StatusAccepted, SyncStartedResponse{Started: true})
}

// writeJSON writes a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(DataResponse{Data: data})
}

// writeJSONData writes a successful JSON response with data.
func writeJSONData(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, data)
}
