package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profissa/profissa/internal/auth"
	"github.com/profissa/profissa/internal/models"
	"github.com/profissa/profissa/internal/models/dto"
	"github.com/profissa/profissa/internal/notify"
	"github.com/profissa/profissa/internal/storage/memory"
)

type env struct {
	ts     *httptest.Server
	store  *memory.Store
	tokens *auth.TokenManager
	hub    *notify.Hub
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.New()
	tokens := auth.NewTokenManager("test-secret", "profissa", time.Hour)
	hub := notify.NewHub()

	mux := http.NewServeMux()
	NewHealthHandler(time.Now(), store).Register(mux)
	NewAuthHandler(store, tokens, nil).Register(mux)
	NewDirectoryHandler(store, store).Register(mux)
	NewAppointmentHandler(store, store, tokens, hub).Register(mux)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return &env{ts: ts, store: store, tokens: tokens, hub: hub}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *env) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.ts.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func (e *env) signUp(t *testing.T, req dto.SignUpRequest) models.User {
	t.Helper()
	code, env := e.do(t, http.MethodPost, "/auth/signup", "", req)
	require.Equal(t, http.StatusCreated, code, env.Message)
	var u models.User
	require.NoError(t, json.Unmarshal(env.Data, &u))
	return u
}

func (e *env) signIn(t *testing.T, email, password string) dto.SignInResponse {
	t.Helper()
	code, env := e.do(t, http.MethodPost, "/auth/signin", "", dto.SignInRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, code, env.Message)
	var out dto.SignInResponse
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func ptr[T any](v T) *T { return &v }

func TestHealth(t *testing.T) {
	e := newEnv(t)
	code, env := e.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"status":"ok"`)
	assert.Contains(t, string(env.Data), `"areas":5`)

	e.store.SetErr(errors.New("db down"))
	code, env = e.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, string(env.Data), `"status":"degraded"`)
}

func TestSignUpAndSignIn(t *testing.T) {
	e := newEnv(t)

	u := e.signUp(t, dto.SignUpRequest{Name: "Maria", Email: " Maria@Example.com ", Password: "segredo1"})
	assert.Equal(t, "maria@example.com", u.Email)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.NotEmpty(t, u.ID)

	signed := e.signIn(t, "maria@example.com", "segredo1")
	assert.Equal(t, u.ID, signed.User.ID)
	claims, err := e.tokens.Parse(signed.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.Subject)

	code, env := e.do(t, http.MethodGet, "/users/me", signed.Token, nil)
	require.Equal(t, http.StatusOK, code)
	var me models.User
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "Maria", me.Name)
}

func TestSignUpValidation(t *testing.T) {
	e := newEnv(t)
	tests := []struct {
		name string
		req  dto.SignUpRequest
	}{
		{"empty name", dto.SignUpRequest{Email: "a@b.com", Password: "segredo1"}},
		{"empty email", dto.SignUpRequest{Name: "A", Password: "segredo1"}},
		{"bad email", dto.SignUpRequest{Name: "A", Email: "ab.com", Password: "segredo1"}},
		{"short password", dto.SignUpRequest{Name: "A", Email: "a@b.com", Password: "123"}},
		{"bad role", dto.SignUpRequest{Name: "A", Email: "a@b.com", Password: "segredo1", Role: "admin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := e.do(t, http.MethodPost, "/auth/signup", "", tt.req)
			assert.Equal(t, http.StatusBadRequest, code)
		})
	}
}

func TestSignUpDuplicate(t *testing.T) {
	e := newEnv(t)
	e.signUp(t, dto.SignUpRequest{Name: "A", Email: "a@b.com", Password: "segredo1"})
	code, env := e.do(t, http.MethodPost, "/auth/signup", "", dto.SignUpRequest{Name: "B", Email: "a@b.com", Password: "segredo2"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "user already exists", env.Message)
}

func TestSignInWrongPassword(t *testing.T) {
	e := newEnv(t)
	e.signUp(t, dto.SignUpRequest{Name: "A", Email: "a@b.com", Password: "segredo1"})

	code, _ := e.do(t, http.MethodPost, "/auth/signin", "", dto.SignInRequest{Email: "a@b.com", Password: "errada00"})
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = e.do(t, http.MethodPost, "/auth/signin", "", dto.SignInRequest{Email: "nobody@b.com", Password: "segredo1"})
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = e.do(t, http.MethodPost, "/auth/signin", "", dto.SignInRequest{})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestProfessionalsFilter(t *testing.T) {
	e := newEnv(t)
	e.signUp(t, dto.SignUpRequest{Name: "Dra. Ana", Email: "ana@b.com", Password: "segredo1", Role: models.RoleProfessional, Specialty: ptr("Dentista"), Price: ptr(150.0), AreaID: ptr(int64(1))})
	e.signUp(t, dto.SignUpRequest{Name: "João", Email: "joao@b.com", Password: "segredo1", Role: models.RoleProfessional, Specialty: ptr("Eletricista"), Price: ptr(90.0), AreaID: ptr(int64(2))})
	e.signUp(t, dto.SignUpRequest{Name: "Cliente", Email: "c@b.com", Password: "segredo1"})

	code, env := e.do(t, http.MethodGet, "/professionals", "", nil)
	require.Equal(t, http.StatusOK, code)
	var all []models.User
	require.NoError(t, json.Unmarshal(env.Data, &all))
	assert.Len(t, all, 2)

	code, env = e.do(t, http.MethodGet, "/professionals?area_id=2", "", nil)
	require.Equal(t, http.StatusOK, code)
	var casa []models.User
	require.NoError(t, json.Unmarshal(env.Data, &casa))
	require.Len(t, casa, 1)
	assert.Equal(t, "João", casa[0].Name)

	code, _ = e.do(t, http.MethodGet, "/professionals?area_id=x", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = e.do(t, http.MethodGet, "/areas", "", nil)
	require.Equal(t, http.StatusOK, code)
	var areas []models.Area
	require.NoError(t, json.Unmarshal(env.Data, &areas))
	assert.Equal(t, memory.DefaultAreas, areas)
}

func TestBookingFlow(t *testing.T) {
	e := newEnv(t)
	pro := e.signUp(t, dto.SignUpRequest{Name: "Dra. Ana", Email: "ana@b.com", Password: "segredo1", Role: models.RoleProfessional, Price: ptr(150.0)})
	e.signUp(t, dto.SignUpRequest{Name: "Cliente", Email: "c@b.com", Password: "segredo1"})
	client := e.signIn(t, "c@b.com", "segredo1")
	proSession := e.signIn(t, "ana@b.com", "segredo1")

	when := time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)
	code, env := e.do(t, http.MethodPost, "/appointments", "", dto.CreateAppointmentRequest{ProfessionalID: pro.ID, Date: when})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = e.do(t, http.MethodPost, "/appointments", client.Token, dto.CreateAppointmentRequest{ProfessionalID: pro.ID, Date: when, Description: "Limpeza"})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var appt models.Appointment
	require.NoError(t, json.Unmarshal(env.Data, &appt))
	assert.Equal(t, models.StatusPending, appt.Status)
	assert.Equal(t, client.User.ID, appt.UserID)
	assert.Equal(t, pro.ID, appt.ProfessionalID)
	assert.True(t, when.Equal(appt.Date))

	code, env = e.do(t, http.MethodGet, "/appointments", client.Token, nil)
	require.Equal(t, http.StatusOK, code)
	var agenda []models.AgendaEntry
	require.NoError(t, json.Unmarshal(env.Data, &agenda))
	require.Len(t, agenda, 1)
	assert.Equal(t, "Dra. Ana", agenda[0].Professional.Name)
	assert.Equal(t, "Limpeza", agenda[0].Description)

	// clients cannot move status
	code, _ = e.do(t, http.MethodPatch, "/appointments/"+appt.ID+"/status", client.Token, dto.UpdateStatusRequest{Status: models.StatusConfirmed})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = e.do(t, http.MethodPatch, "/appointments/"+appt.ID+"/status", proSession.Token, dto.UpdateStatusRequest{Status: models.StatusConfirmed})
	require.Equal(t, http.StatusOK, code, env.Message)

	code, _ = e.do(t, http.MethodPatch, "/appointments/"+appt.ID+"/status", proSession.Token, dto.UpdateStatusRequest{Status: models.StatusPending})
	assert.Equal(t, http.StatusConflict, code)
	code, _ = e.do(t, http.MethodPatch, "/appointments/"+appt.ID+"/status", proSession.Token, dto.UpdateStatusRequest{Status: "done"})
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = e.do(t, http.MethodPatch, "/appointments/missing/status", proSession.Token, dto.UpdateStatusRequest{Status: models.StatusCompleted})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCreateAppointmentValidation(t *testing.T) {
	e := newEnv(t)
	plain := e.signUp(t, dto.SignUpRequest{Name: "Outro", Email: "o@b.com", Password: "segredo1"})
	e.signUp(t, dto.SignUpRequest{Name: "Cliente", Email: "c@b.com", Password: "segredo1"})
	client := e.signIn(t, "c@b.com", "segredo1")
	when := time.Now().Add(24 * time.Hour)

	code, _ := e.do(t, http.MethodPost, "/appointments", client.Token, dto.CreateAppointmentRequest{Date: when})
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = e.do(t, http.MethodPost, "/appointments", client.Token, dto.CreateAppointmentRequest{ProfessionalID: plain.ID})
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = e.do(t, http.MethodPost, "/appointments", client.Token, dto.CreateAppointmentRequest{ProfessionalID: "nope", Date: when})
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = e.do(t, http.MethodPost, "/appointments", client.Token, dto.CreateAppointmentRequest{ProfessionalID: plain.ID, Date: when})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestBackendFailureIsGeneric(t *testing.T) {
	e := newEnv(t)
	e.store.SetErr(errors.New("connection refused to 10.0.0.5"))

	code, env := e.do(t, http.MethodGet, "/areas", "", nil)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.NotContains(t, env.Message, "10.0.0.5")
}

func TestStatusStream(t *testing.T) {
	e := newEnv(t)
	pro := e.signUp(t, dto.SignUpRequest{Name: "Dra. Ana", Email: "ana@b.com", Password: "segredo1", Role: models.RoleProfessional})
	e.signUp(t, dto.SignUpRequest{Name: "Cliente", Email: "c@b.com", Password: "segredo1"})
	client := e.signIn(t, "c@b.com", "segredo1")
	proSession := e.signIn(t, "ana@b.com", "segredo1")

	_, env := e.do(t, http.MethodPost, "/appointments", client.Token, dto.CreateAppointmentRequest{ProfessionalID: pro.ID, Date: time.Now().Add(time.Hour)})
	var appt models.Appointment
	require.NoError(t, json.Unmarshal(env.Data, &appt))

	wsURL := "ws" + strings.TrimPrefix(e.ts.URL, "http") + "/appointments/stream?token=" + client.Token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return e.hub.Connected(client.User.ID) == 1 }, time.Second, 10*time.Millisecond)

	code, _ := e.do(t, http.MethodPatch, "/appointments/"+appt.ID+"/status", proSession.Token, dto.UpdateStatusRequest{Status: models.StatusCancelled})
	require.Equal(t, http.StatusOK, code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev dto.StatusEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, dto.StatusEvent{AppointmentID: appt.ID, Status: models.StatusCancelled}, ev)
}
