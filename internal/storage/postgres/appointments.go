package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/profissa/profissa/internal/models"
	"github.com/profissa/profissa/internal/storage"
)

// ListAreas returns every area in insertion order.
func (s *Store) ListAreas(ctx context.Context) ([]models.Area, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, icon FROM area ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list areas: %w", err)
	}
	defer rows.Close()

	out := []models.Area{}
	for rows.Next() {
		var a models.Area
		if err := rows.Scan(&a.ID, &a.Name, &a.Icon); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CreateAppointment inserts one appointment row. No uniqueness is enforced
// across (professional, user, date); repeated inserts produce repeated rows.
func (s *Store) CreateAppointment(ctx context.Context, appt models.Appointment) (models.Appointment, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, professional_id, user_id, date, description, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, professional_id, user_id, date, description, status, created_at`,
		appt.ID, appt.ProfessionalID, appt.UserID, appt.Date, appt.Description, appt.Status)
	return scanAppointment(row)
}

// ListAgenda returns the appointments booked by userID joined with their professional.
func (s *Store) ListAgenda(ctx context.Context, userID string) ([]models.AgendaEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT a.id, a.professional_id, a.user_id, a.date, a.description, a.status, a.created_at,
		       p.id, p.name, p.specialty, p.price, p.image
		FROM appointments a
		JOIN users p ON p.id = a.professional_id
		WHERE a.user_id = $1
		ORDER BY a.date`, userID)
	if err != nil {
		return nil, fmt.Errorf("list agenda: %w", err)
	}
	defer rows.Close()

	out := []models.AgendaEntry{}
	for rows.Next() {
		var e models.AgendaEntry
		if err := rows.Scan(&e.ID, &e.ProfessionalID, &e.UserID, &e.Date, &e.Description, &e.Status, &e.CreatedAt,
			&e.Professional.ID, &e.Professional.Name, &e.Professional.Specialty, &e.Professional.Price, &e.Professional.Image); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// UpdateStatus transitions an appointment owned by professionalID.
func (s *Store) UpdateStatus(ctx context.Context, id, professionalID, status string) (models.Appointment, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return models.Appointment{}, err
	}
	defer tx.Rollback(ctx)

	var current string
	err = tx.QueryRow(ctx,
		`SELECT status FROM appointments WHERE id = $1 AND professional_id = $2 FOR UPDATE`,
		id, professionalID,
	).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Appointment{}, storage.ErrNotFound
		}
		return models.Appointment{}, err
	}
	if !models.CanTransition(current, status) {
		return models.Appointment{}, storage.ErrInvalidTransition
	}

	updated, err := scanAppointment(tx.QueryRow(ctx, `
		UPDATE appointments SET status = $1 WHERE id = $2
		RETURNING id, professional_id, user_id, date, description, status, created_at`,
		status, id))
	if err != nil {
		return models.Appointment{}, err
	}
	return updated, tx.Commit(ctx)
}

func scanAppointment(row pgx.Row) (models.Appointment, error) {
	var a models.Appointment
	if err := row.Scan(&a.ID, &a.ProfessionalID, &a.UserID, &a.Date, &a.Description, &a.Status, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Appointment{}, storage.ErrNotFound
		}
		return models.Appointment{}, err
	}
	return a, nil
}
