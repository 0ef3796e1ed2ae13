// Package backend is the thin client SDK for the Profissa REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/profissa/profissa/internal/models"
	"github.com/profissa/profissa/internal/models/dto"
)

// ErrUnauthorized is matched by APIErrors carrying a 401.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend: %d %s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client talks to one backend. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client (10s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken sets the bearer token sent with authenticated calls. An empty token signs the client out.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SignUp(ctx context.Context, req dto.SignUpRequest) (models.User, error) {
	var u models.User
	err := c.do(ctx, http.MethodPost, "/auth/signup", req, &u)
	return u, err
}

// SignIn exchanges credentials for a token and remembers the token on success.
func (c *Client) SignIn(ctx context.Context, email, password string) (dto.SignInResponse, error) {
	var out dto.SignInResponse
	if err := c.do(ctx, http.MethodPost, "/auth/signin", dto.SignInRequest{Email: email, Password: password}, &out); err != nil {
		return dto.SignInResponse{}, err
	}
	c.SetToken(out.Token)
	return out, nil
}

// CurrentUser fetches the signed-in user's row.
func (c *Client) CurrentUser(ctx context.Context) (models.User, error) {
	var u models.User
	err := c.do(ctx, http.MethodGet, "/users/me", nil, &u)
	return u, err
}

func (c *Client) Areas(ctx context.Context) ([]models.Area, error) {
	var out []models.Area
	err := c.do(ctx, http.MethodGet, "/areas", nil, &out)
	return out, err
}

// Professionals lists professionals, filtered by area when areaID is set.
func (c *Client) Professionals(ctx context.Context, areaID *int64) ([]models.User, error) {
	path := "/professionals"
	if areaID != nil {
		path += "?" + url.Values{"area_id": {strconv.FormatInt(*areaID, 10)}}.Encode()
	}
	var out []models.User
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// CreateAppointment inserts one appointment for the signed-in user.
func (c *Client) CreateAppointment(ctx context.Context, req dto.CreateAppointmentRequest) (models.Appointment, error) {
	var out models.Appointment
	err := c.do(ctx, http.MethodPost, "/appointments", req, &out)
	return out, err
}

// Agenda lists the signed-in user's appointments.
func (c *Client) Agenda(ctx context.Context) ([]dto.AgendaRow, error) {
	var out []dto.AgendaRow
	err := c.do(ctx, http.MethodGet, "/appointments", nil, &out)
	return out, err
}

// UpdateStatus moves an appointment the signed-in professional owns.
func (c *Client) UpdateStatus(ctx context.Context, id, status string) (models.Appointment, error) {
	var out models.Appointment
	err := c.do(ctx, http.MethodPatch, "/appointments/"+url.PathEscape(id)+"/status", dto.UpdateStatusRequest{Status: status}, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.bearer(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	if resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s %s data: %w", method, path, err)
	}
	return nil
}
