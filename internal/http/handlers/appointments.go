package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/profissa/profissa/internal/auth"
	"github.com/profissa/profissa/internal/http/respond"
	"github.com/profissa/profissa/internal/middleware"
	"github.com/profissa/profissa/internal/models"
	"github.com/profissa/profissa/internal/models/dto"
	"github.com/profissa/profissa/internal/notify"
	"github.com/profissa/profissa/internal/storage"
)

// AppointmentHandler owns booking, the agenda listing, status transitions and
// the agenda update stream.
type AppointmentHandler struct {
	appts    storage.AppointmentStore
	users    storage.UserStore
	tokens   *auth.TokenManager
	hub      *notify.Hub
	upgrader websocket.Upgrader
}

func NewAppointmentHandler(appts storage.AppointmentStore, users storage.UserStore, tokens *auth.TokenManager, hub *notify.Hub) *AppointmentHandler {
	return &AppointmentHandler{
		appts:  appts,
		users:  users,
		tokens: tokens,
		hub:    hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// CORS middleware already restricts browser origins.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *AppointmentHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /appointments", middleware.RequireAuth(h.tokens, h.handleCreate))
	mux.HandleFunc("GET /appointments", middleware.RequireAuth(h.tokens, h.handleList))
	mux.HandleFunc("PATCH /appointments/{id}/status", middleware.RequireAuth(h.tokens, h.handleStatus))
	mux.HandleFunc("GET /appointments/stream", middleware.RequireAuth(h.tokens, h.handleStream))
}

func (h *AppointmentHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFrom(r.Context())

	var req dto.CreateAppointmentRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.ProfessionalID) == "" || req.Date.IsZero() {
		respond.Error(w, http.StatusBadRequest, "professional_id and date are required")
		return
	}

	pro, err := h.users.FindByID(r.Context(), req.ProfessionalID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "professional not found")
			return
		}
		log.Printf("fetch professional %s: %v", req.ProfessionalID, err)
		respond.Error(w, http.StatusInternalServerError, "failed to create appointment")
		return
	}
	if !pro.IsProfessional() {
		respond.Error(w, http.StatusBadRequest, "user is not a professional")
		return
	}

	created, err := h.appts.CreateAppointment(r.Context(), models.Appointment{
		ID:             uuid.NewString(),
		ProfessionalID: pro.ID,
		UserID:         claims.Subject,
		Date:           req.Date.UTC(),
		Description:    req.Description,
		Status:         models.StatusPending,
	})
	if err != nil {
		log.Printf("create appointment: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to create appointment")
		return
	}
	respond.JSON(w, http.StatusCreated, "appointment created", created)
}

func (h *AppointmentHandler) handleList(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFrom(r.Context())
	agenda, err := h.appts.ListAgenda(r.Context(), claims.Subject)
	if err != nil {
		log.Printf("list agenda %s: %v", claims.Subject, err)
		respond.Error(w, http.StatusInternalServerError, "failed to list appointments")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", agenda)
}

func (h *AppointmentHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFrom(r.Context())
	if claims.Role != models.RoleProfessional {
		respond.Error(w, http.StatusForbidden, "only professionals can change appointment status")
		return
	}

	var req dto.UpdateStatusRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if !models.ValidStatus(req.Status) {
		respond.Error(w, http.StatusBadRequest, "unknown status")
		return
	}

	updated, err := h.appts.UpdateStatus(r.Context(), r.PathValue("id"), claims.Subject, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			respond.Error(w, http.StatusNotFound, "appointment not found")
		case errors.Is(err, storage.ErrInvalidTransition):
			respond.Error(w, http.StatusConflict, "status transition not allowed")
		default:
			log.Printf("update appointment status: %v", err)
			respond.Error(w, http.StatusInternalServerError, "failed to update appointment")
		}
		return
	}

	h.hub.Publish(updated.UserID, dto.StatusEvent{AppointmentID: updated.ID, Status: updated.Status})
	respond.JSON(w, http.StatusOK, "appointment updated", updated)
}

func (h *AppointmentHandler) handleStream(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFrom(r.Context())
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("stream upgrade: %v", err)
		return
	}
	h.hub.Register(claims.Subject, conn)
	defer h.hub.Unregister(claims.Subject, conn)

	// The stream is server-to-client only; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
