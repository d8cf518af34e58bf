package handlers

import (
	"context"
	"net/http"

	pkghttp "github.com/rsharma/storeapi/pkg/http"
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler serves the liveness endpoint
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health pings the database and reports service status
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.HealthCheck(r.Context()); err != nil {
		pkghttp.WriteFailure(w, http.StatusServiceUnavailable, "Database unreachable", nil)
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, "Server is working!", nil)
}
