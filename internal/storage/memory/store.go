// Package memory is an in-process implementation of storage.Store. The server
// uses it when DATABASE_URL is "memory", and tests use it as a fake backend.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/profissa/profissa/internal/models"
	"github.com/profissa/profissa/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// DefaultAreas matches the rows seeded by the Postgres migrations.
var DefaultAreas = []models.Area{
	{ID: 1, Name: "Saúde", Icon: "🩺"},
	{ID: 2, Name: "Casa", Icon: "🏠"},
	{ID: 3, Name: "Beleza", Icon: "💇"},
	{ID: 4, Name: "Educação", Icon: "📚"},
	{ID: 5, Name: "Tecnologia", Icon: "💻"},
}

type Store struct {
	mu    sync.RWMutex
	users map[string]models.User
	areas []models.Area
	appts []models.Appointment

	// err, when set, is returned by every call.
	err error
}

func New() *Store {
	return &Store{
		users: make(map[string]models.User),
		areas: append([]models.Area(nil), DefaultAreas...),
	}
}

func (s *Store) Close() {}

func (s *Store) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return models.User{}, s.err
	}
	for _, u := range s.users {
		if u.Email == user.Email {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	if _, ok := s.users[user.ID]; ok {
		return models.User{}, storage.ErrAlreadyExists
	}
	user.CreatedAt = time.Now().UTC()
	s.users[user.ID] = user
	return user, nil
}

func (s *Store) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return models.User{}, s.err
	}
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (s *Store) FindByID(_ context.Context, id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return models.User{}, s.err
	}
	u, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) ListProfessionals(_ context.Context, areaID *int64) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	out := []models.User{}
	for _, u := range s.users {
		if !u.IsProfessional() {
			continue
		}
		if areaID != nil && (u.AreaID == nil || *u.AreaID != *areaID) {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) ListAreas(context.Context) ([]models.Area, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]models.Area(nil), s.areas...), nil
}

func (s *Store) CreateAppointment(_ context.Context, appt models.Appointment) (models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return models.Appointment{}, s.err
	}
	appt.CreatedAt = time.Now().UTC()
	s.appts = append(s.appts, appt)
	return appt, nil
}

func (s *Store) ListAgenda(_ context.Context, userID string) ([]models.AgendaEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	out := []models.AgendaEntry{}
	for _, a := range s.appts {
		if a.UserID != userID {
			continue
		}
		p := s.users[a.ProfessionalID]
		out = append(out, models.AgendaEntry{
			Appointment: a,
			Professional: models.Professional{
				ID: p.ID, Name: p.Name, Specialty: p.Specialty, Price: p.Price, Image: p.Image,
			},
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *Store) UpdateStatus(_ context.Context, id, professionalID, status string) (models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return models.Appointment{}, s.err
	}
	for i := range s.appts {
		a := &s.appts[i]
		if a.ID != id || a.ProfessionalID != professionalID {
			continue
		}
		if !models.CanTransition(a.Status, status) {
			return models.Appointment{}, storage.ErrInvalidTransition
		}
		a.Status = status
		return *a, nil
	}
	return models.Appointment{}, storage.ErrNotFound
}

// Appointments returns a copy of every stored appointment.
func (s *Store) Appointments() []models.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Appointment(nil), s.appts...)
}

// SetErr makes every following call fail with err until cleared with nil.
func (s *Store) SetErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}
