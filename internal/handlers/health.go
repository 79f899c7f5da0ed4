package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"helpcenter-sync/internal/contextutil"
	"helpcenter-sync/internal/state"
)

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	store              state.Store
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(store state.Store) *HealthHandler {
	return &HealthHandler{
		store:              store,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	// Overall health status: "healthy" or "unhealthy"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`

	// Vector store the state points at, when known
	VectorStoreID string `json:"vector_store_id,omitempty"`

	// Number of articles recorded in the state
	Articles int `json:"articles"`

	// List of issues (only present if status is unhealthy)
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP reports 200 when the delta state can be read and 503 otherwise.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    map[string]string{"state_store": "ok"},
	}
	httpStatus := http.StatusOK

	st, err := h.store.Load(checkCtx)
	if err != nil {
		logger.WarnContext(ctx, "state store health check failed", "error", err)
		response.Status = "unhealthy"
		response.Checks["state_store"] = "error"
		response.Issues = append(response.Issues, "state_store_unavailable")
		httpStatus = http.StatusServiceUnavailable
	} else {
		response.VectorStoreID = st.VectorStoreID
		response.Articles = len(st.Articles)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.ErrorContext(ctx, "failed to encode health response", "error", err)
	}
}
