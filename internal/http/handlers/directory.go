package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/profissa/profissa/internal/http/respond"
	"github.com/profissa/profissa/internal/storage"
)

// DirectoryHandler serves the read-only area and professional listings.
type DirectoryHandler struct {
	users storage.UserStore
	areas storage.AreaStore
}

func NewDirectoryHandler(users storage.UserStore, areas storage.AreaStore) *DirectoryHandler {
	return &DirectoryHandler{users: users, areas: areas}
}

func (h *DirectoryHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /areas", h.handleAreas)
	mux.HandleFunc("GET /professionals", h.handleProfessionals)
}

func (h *DirectoryHandler) handleAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := h.areas.ListAreas(r.Context())
	if err != nil {
		log.Printf("list areas: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to list areas")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", areas)
}

func (h *DirectoryHandler) handleProfessionals(w http.ResponseWriter, r *http.Request) {
	var areaID *int64
	if raw := r.URL.Query().Get("area_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "area_id must be an integer")
			return
		}
		areaID = &id
	}
	pros, err := h.users.ListProfessionals(r.Context(), areaID)
	if err != nil {
		log.Printf("list professionals: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to list professionals")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", pros)
}
