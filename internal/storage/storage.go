package storage

import (
	"context"
	"errors"

	"github.com/profissa/profissa/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrInvalidTransition indicates an appointment status change that is not allowed.
var ErrInvalidTransition = errors.New("invalid status transition")

// UserStore captures persistence operations on the users table.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	// ListProfessionals returns users with the professional role. A nil areaID
	// returns every professional.
	ListProfessionals(ctx context.Context, areaID *int64) ([]models.User, error)
}

// AreaStore reads the area table.
type AreaStore interface {
	ListAreas(ctx context.Context) ([]models.Area, error)
}

// AppointmentStore captures persistence operations on the appointments table.
type AppointmentStore interface {
	CreateAppointment(ctx context.Context, appt models.Appointment) (models.Appointment, error)
	ListAgenda(ctx context.Context, userID string) ([]models.AgendaEntry, error)
	// UpdateStatus moves an appointment owned by professionalID to status and
	// returns the updated row.
	UpdateStatus(ctx context.Context, id, professionalID, status string) (models.Appointment, error)
}

// Store groups every table the backend serves.
type Store interface {
	UserStore
	AreaStore
	AppointmentStore
	Close()
}
