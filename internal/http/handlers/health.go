package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/profissa/profissa/internal/http/respond"
	"github.com/profissa/profissa/internal/storage"
)

const healthTimeout = 2 * time.Second

// HealthHandler reports uptime and whether the directory can be served.
type HealthHandler struct {
	startedAt time.Time
	areas     storage.AreaStore
}

func NewHealthHandler(startedAt time.Time, areas storage.AreaStore) *HealthHandler {
	return &HealthHandler{startedAt: startedAt, areas: areas}
}

func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handle)
}

func (h *HealthHandler) handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	uptime := time.Since(h.startedAt).Truncate(time.Second).String()
	areas, err := h.areas.ListAreas(ctx)
	if err != nil {
		log.Printf("health: list areas: %v", err)
		respond.JSON(w, http.StatusServiceUnavailable, "store unavailable", map[string]any{
			"status": "degraded",
			"uptime": uptime,
		})
		return
	}
	respond.JSON(w, http.StatusOK, "ok", map[string]any{
		"status": "ok",
		"uptime": uptime,
		"areas":  len(areas),
	})
}
