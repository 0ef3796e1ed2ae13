package models

import "time"

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// Appointment mirrors a row of the appointments table.
type Appointment struct {
	ID             string    `json:"id"`
	ProfessionalID string    `json:"professional_id"`
	UserID         string    `json:"user_id"`
	Date           time.Time `json:"date"`
	Description    string    `json:"description"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// AgendaEntry is an appointment joined with the professional it was booked with.
type AgendaEntry struct {
	Appointment
	Professional Professional `json:"professional"`
}

// Professional is the slice of a professional's user row shown next to an appointment.
type Professional struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Specialty *string  `json:"specialty,omitempty"`
	Price     *float64 `json:"price,omitempty"`
	Image     *string  `json:"image,omitempty"`
}

var transitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled, StatusCompleted},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether an appointment may move from one status to another.
// Cancelled and completed are terminal.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is a known appointment status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}
