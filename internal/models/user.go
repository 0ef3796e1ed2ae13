package models

import "time"

// User mirrors a row of the users table. Professionals carry the optional
// specialty, price and area fields.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	Image        *string   `json:"image,omitempty"`
	Price        *float64  `json:"price,omitempty"`
	Specialty    *string   `json:"specialty,omitempty"`
	AreaID       *int64    `json:"area_id,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsProfessional reports whether the user can be booked.
func (u User) IsProfessional() bool {
	return u.Role == RoleProfessional
}
