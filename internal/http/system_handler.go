package http

import (
	"context"
	"net/http"
	"time"

	"github.com/holocommerce/storefront/internal/repository"
)

const readyPingTimeout = 2 * time.Second

// StoreInspector reports document store availability.
type StoreInspector interface {
	State() repository.State
	Ping(ctx context.Context) error
	Diagnose(ctx context.Context) (*repository.Diagnostics, error)
}

// EnvStatus records which store settings were supplied at startup.
type EnvStatus struct {
	DatabaseURLSet  bool
	DatabaseNameSet bool
}

type SystemHandler struct {
	store   StoreInspector
	env     EnvStatus
	timeout time.Duration
}

func NewSystemHandler(store StoreInspector, env EnvStatus, timeout time.Duration) *SystemHandler {
	return &SystemHandler{
		store:   store,
		env:     env,
		timeout: timeout,
	}
}

type MessageResponse struct {
	Message string `json:"message"`
}

type DiagnosticsResponse struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	DatabaseName     string   `json:"database_name"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
	DatabaseURLSet   bool     `json:"database_url_set"`
	DatabaseNameSet  bool     `json:"database_name_set"`
}

func (h *SystemHandler) Root(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, MessageResponse{Message: "Hello from the catalog backend"})
}

func (h *SystemHandler) Hello(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, MessageResponse{Message: "Hello from the backend API"})
}

func (h *SystemHandler) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready fails while the document store is unavailable or does not answer a ping.
func (h *SystemHandler) Ready(w http.ResponseWriter, r *http.Request) {
	state := h.store.State()
	if state == repository.StateReady {
		ctx, cancel := context.WithTimeout(r.Context(), readyPingTimeout)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			state = repository.StateUnavailable
		}
	}

	status := http.StatusOK
	if state != repository.StateReady {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, map[string]string{"status": state.String()})
}

func (h *SystemHandler) Diagnostics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp := DiagnosticsResponse{
		Backend:          "running",
		Database:         "not available",
		ConnectionStatus: "not connected",
		Collections:      []string{},
		DatabaseURLSet:   h.env.DatabaseURLSet,
		DatabaseNameSet:  h.env.DatabaseNameSet,
	}

	d, err := h.store.Diagnose(ctx)
	if d != nil {
		resp.DatabaseName = d.DatabaseName
		if d.DatabaseName != "" {
			resp.ConnectionStatus = "connected"
			resp.Database = "available"
		}
	}
	switch {
	case err != nil:
		resp.Database = "connected but error: " + truncate(err.Error(), 50)
	case d != nil && d.DatabaseName != "":
		resp.Database = "connected and working"
		resp.Collections = d.Collections
	}

	respondJSON(w, http.StatusOK, resp)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
