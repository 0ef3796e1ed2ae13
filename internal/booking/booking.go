// Package booking submits appointment requests for the signed-in user.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/profissa/profissa/internal/models"
	"github.com/profissa/profissa/internal/models/dto"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrMissingField     = errors.New("missing required field")
	ErrSubmitFailed     = errors.New("booking submit failed")
)

// Messages shown to the user.
const (
	SuccessMessage       = "Agendamento realizado com sucesso!"
	FailureMessage       = "Não foi possível realizar o agendamento"
	MissingFieldsMessage = "Preencha todos os campos"
	SignInMessage        = "Entre na sua conta para agendar"
)

// Creator inserts one appointment row.
type Creator interface {
	CreateAppointment(ctx context.Context, req dto.CreateAppointmentRequest) (models.Appointment, error)
}

// Session answers who is signed in.
type Session interface {
	User() (models.User, bool)
}

// Form is the state of the booking modal.
type Form struct {
	Professional models.User
	Date         time.Time
	Description  string
}

func NewForm(p models.User, now time.Time) Form {
	return Form{Professional: p, Date: now}
}

// Reset clears the inputs and keeps the professional.
func (f Form) Reset(now time.Time) Form {
	return Form{Professional: f.Professional, Date: now}
}

type Result struct {
	Appointment models.Appointment
	// Form is what the modal should show next: cleared on success, untouched otherwise.
	Form    Form
	Close   bool
	Message string
}

type Submitter struct {
	backend Creator
	session Session
	now     func() time.Time
}

func NewSubmitter(backend Creator, session Session) *Submitter {
	return &Submitter{backend: backend, session: session, now: time.Now}
}

// Submit issues a single insert with status pending. There is no
// idempotency key: submitting the same form twice books twice.
func (s *Submitter) Submit(ctx context.Context, f Form) (Result, error) {
	user, ok := s.session.User()
	if !ok || user.ID == "" {
		return Result{Form: f, Message: SignInMessage}, ErrNotAuthenticated
	}
	if strings.TrimSpace(f.Professional.ID) == "" {
		return Result{Form: f, Message: MissingFieldsMessage}, fmt.Errorf("%w: professional", ErrMissingField)
	}
	if f.Date.IsZero() {
		return Result{Form: f, Message: MissingFieldsMessage}, fmt.Errorf("%w: date", ErrMissingField)
	}

	appt, err := s.backend.CreateAppointment(ctx, dto.CreateAppointmentRequest{
		ProfessionalID: f.Professional.ID,
		Date:           f.Date,
		Description:    f.Description,
	})
	if err != nil {
		log.Printf("booking: create appointment for %s with %s: %v", user.ID, f.Professional.ID, err)
		return Result{Form: f, Message: FailureMessage}, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}

	return Result{
		Appointment: appt,
		Form:        f.Reset(s.now()),
		Close:       true,
		Message:     SuccessMessage,
	}, nil
}
