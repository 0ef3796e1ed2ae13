// Package agenda turns the signed-in user's appointments into display rows
// and keeps them current from the status stream.
package agenda

import (
	"context"
	"log"
	"time"

	"github.com/profissa/profissa/internal/format"
	"github.com/profissa/profissa/internal/models"
	"github.com/profissa/profissa/internal/models/dto"
)

type Backend interface {
	Agenda(ctx context.Context) ([]dto.AgendaRow, error)
}

// Entry is one agenda row ready for display.
type Entry struct {
	ID           string
	Professional string
	Specialty    string
	Description  string
	Status       string
	Date         string
	Time         string
	Price        string
	// When is zero for a row whose date could not be read.
	When time.Time
}

// Label returns the badge text for the entry's status.
func (e Entry) Label() string { return StatusLabel(e.Status) }

var labels = map[string]string{
	models.StatusPending:   "Pendente",
	models.StatusConfirmed: "Confirmado",
	models.StatusCancelled: "Cancelado",
	models.StatusCompleted: "Concluído",
}

// StatusLabel translates a status; unknown values are shown as they are.
func StatusLabel(status string) string {
	if l, ok := labels[status]; ok {
		return l
	}
	return status
}

type Service struct {
	backend Backend
	loc     *time.Location
}

func NewService(b Backend, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{backend: b, loc: loc}
}

// Load fetches the agenda. A failure is logged and yields no rows.
func (s *Service) Load(ctx context.Context) []Entry {
	rows, err := s.backend.Agenda(ctx)
	if err != nil {
		log.Printf("agenda: load: %v", err)
		return []Entry{}
	}
	out := make([]Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, s.entry(r))
	}
	return out
}

func (s *Service) entry(r dto.AgendaRow) Entry {
	e := Entry{
		ID:           r.ID,
		Professional: r.Professional.Name,
		Description:  r.Description,
		Status:       r.Status,
		Date:         format.DateIn(r.Date, s.loc),
		Time:         format.TimeIn(r.Date, s.loc),
		Price:        format.Price(r.Professional.Price),
	}
	if when, ok := format.ParseIn(r.Date, s.loc); ok {
		e.When = when
	}
	if r.Professional.Specialty != nil {
		e.Specialty = *r.Professional.Specialty
	}
	return e
}

// Apply returns entries with ev's status applied. The second result
// reports whether any row matched.
func Apply(entries []Entry, ev dto.StatusEvent) ([]Entry, bool) {
	out := make([]Entry, len(entries))
	copy(out, entries)
	for i := range out {
		if out[i].ID == ev.AppointmentID {
			out[i].Status = ev.Status
			return out, true
		}
	}
	return out, false
}
