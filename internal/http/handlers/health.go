package handlers

import (
	"net/http"
	"time"

	"github.com/hongminglow/userhub/internal/http/respond"
)

// HealthHandler reports liveness, uptime and build identity.
type HealthHandler struct {
	project   string
	version   string
	startedAt time.Time
}

type healthResponse struct {
	Status  string `json:"status"`
	Project string `json:"project"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// NewHealthHandler creates a health endpoint handler.
func NewHealthHandler(project, version string, startedAt time.Time) *HealthHandler {
	return &HealthHandler{project: project, version: version, startedAt: startedAt}
}

// Register wires the handler into a ServeMux.
func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handle)
}

func (h *HealthHandler) handle(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Project: h.project,
		Version: h.version,
		Uptime:  time.Since(h.startedAt).Truncate(time.Second).String(),
	})
}
