package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/profissa/profissa/internal/auth"
	"github.com/profissa/profissa/internal/http/respond"
	"github.com/profissa/profissa/internal/middleware"
	"github.com/profissa/profissa/internal/models"
	"github.com/profissa/profissa/internal/models/dto"
	"github.com/profissa/profissa/internal/storage"
)

const minPasswordLen = 6

// AuthHandler owns sign-up, sign-in and the current-user endpoint.
type AuthHandler struct {
	store   storage.UserStore
	tokens  *auth.TokenManager
	limiter *middleware.RateLimiter
}

// NewAuthHandler constructs the handler. limiter may be nil to disable throttling.
func NewAuthHandler(store storage.UserStore, tokens *auth.TokenManager, limiter *middleware.RateLimiter) *AuthHandler {
	return &AuthHandler{store: store, tokens: tokens, limiter: limiter}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/signup", h.throttle(h.handleSignUp))
	mux.HandleFunc("POST /auth/signin", h.throttle(h.handleSignIn))
	mux.HandleFunc("GET /users/me", middleware.RequireAuth(h.tokens, h.handleMe))
}

func (h *AuthHandler) throttle(next http.HandlerFunc) http.HandlerFunc {
	if h.limiter == nil {
		return next
	}
	return h.limiter.Limit(next)
}

func (h *AuthHandler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req dto.SignUpRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := validateSignUp(req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = models.RoleUser
	}
	user := models.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        normalizeEmail(req.Email),
		Role:         role,
		PasswordHash: passwordHash,
	}
	if role == models.RoleProfessional {
		user.Specialty = req.Specialty
		user.Price = req.Price
		user.AreaID = req.AreaID
	}

	created, err := h.store.CreateUser(r.Context(), user)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrAlreadyExists):
			respond.Error(w, http.StatusConflict, "user already exists")
		default:
			log.Printf("create user error: %v", err)
			respond.Error(w, http.StatusInternalServerError, "failed to create user")
		}
		return
	}

	respond.JSON(w, http.StatusCreated, "user created", created)
}

func (h *AuthHandler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req dto.SignInRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}
	user, err := h.store.FindByEmail(r.Context(), normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		log.Printf("sign-in failed: fetch user %s: %v", req.Email, err)
		respond.Error(w, http.StatusInternalServerError, "failed to fetch user")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		respond.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := h.tokens.Generate(user)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respond.JSON(w, http.StatusOK, "sign-in successful", dto.SignInResponse{Token: token, User: user})
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFrom(r.Context())
	user, err := h.store.FindByID(r.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "user not found")
			return
		}
		log.Printf("fetch user %s: %v", claims.Subject, err)
		respond.Error(w, http.StatusInternalServerError, "failed to fetch user")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", user)
}

func validateSignUp(req dto.SignUpRequest) error {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		return errors.New("name and email are required")
	}
	if !strings.Contains(req.Email, "@") {
		return errors.New("email is invalid")
	}
	if len(req.Password) < minPasswordLen || !utf8.ValidString(req.Password) {
		return errors.New("password must be at least 6 characters")
	}
	if role := strings.TrimSpace(req.Role); role != "" && !models.ValidRole(role) {
		return errors.New("role must be user or professional")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
