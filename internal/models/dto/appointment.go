package dto

import (
	"time"

	"github.com/profissa/profissa/internal/models"
)

type CreateAppointmentRequest struct {
	ProfessionalID string    `json:"professional_id"`
	Date           time.Time `json:"date"`
	Description    string    `json:"description"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// StatusEvent is pushed to the booking user when an appointment changes status.
type StatusEvent struct {
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
}

// AgendaRow is one GET /appointments row as the client decodes it. Date stays
// as sent so a malformed value spoils only its own row.
type AgendaRow struct {
	ID             string              `json:"id"`
	ProfessionalID string              `json:"professional_id"`
	Date           string              `json:"date"`
	Description    string              `json:"description"`
	Status         string              `json:"status"`
	Professional   models.Professional `json:"professional"`
}
