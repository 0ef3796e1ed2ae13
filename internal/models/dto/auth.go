package dto

import "github.com/profissa/profissa/internal/models"

type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`

	// Professional profile, ignored for plain users.
	Specialty *string  `json:"specialty,omitempty"`
	Price     *float64 `json:"price,omitempty"`
	AreaID    *int64   `json:"area_id,omitempty"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}
