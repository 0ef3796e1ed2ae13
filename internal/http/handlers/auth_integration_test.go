package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profissa/profissa/internal/auth"
	"github.com/profissa/profissa/internal/models"
	"github.com/profissa/profissa/internal/models/dto"
	"github.com/profissa/profissa/internal/notify"
	"github.com/profissa/profissa/internal/storage/postgres"
)

// TestPostgresIntegration exercises sign-up, sign-in and booking against a live database.
func TestPostgresIntegration(t *testing.T) {
	if os.Getenv("RUN_DB_INTEGRATION") != "true" {
		t.Skip("set RUN_DB_INTEGRATION=true to run this integration test")
	}

	loadDotEnv()
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		t.Fatal("DATABASE_URL is required")
	}

	store, err := postgres.NewStore(context.Background(), dbURL)
	require.NoError(t, err)
	defer store.Close()

	tokens := auth.NewTokenManager("integration-secret", "profissa", time.Hour)
	mux := http.NewServeMux()
	NewAuthHandler(store, tokens, nil).Register(mux)
	NewDirectoryHandler(store, store).Register(mux)
	NewAppointmentHandler(store, store, tokens, notify.NewHub()).Register(mux)
	ts := httptest.NewServer(mux)
	defer ts.Close()
	e := &env{ts: ts, tokens: tokens}

	suffix := time.Now().UnixNano()
	pro := e.signUp(t, dto.SignUpRequest{
		Name:     fmt.Sprintf("Pro %d", suffix),
		Email:    fmt.Sprintf("pro_%d@example.com", suffix),
		Password: "segredo1",
		Role:     models.RoleProfessional,
		Price:    ptr(120.0),
		AreaID:   ptr(int64(1)),
	})
	clientEmail := fmt.Sprintf("client_%d@example.com", suffix)
	e.signUp(t, dto.SignUpRequest{Name: "Cliente", Email: clientEmail, Password: "segredo1"})
	client := e.signIn(t, clientEmail, "segredo1")

	when := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	code, env := e.do(t, http.MethodPost, "/appointments", client.Token, dto.CreateAppointmentRequest{
		ProfessionalID: pro.ID, Date: when, Description: "integração",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)

	code, _ = e.do(t, http.MethodGet, "/professionals?area_id=1", "", nil)
	assert.Equal(t, http.StatusOK, code)

	t.Logf("created professional %s and booked as %s", pro.ID, client.User.ID)
}

func loadDotEnv() {
	paths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}
	for _, path := range paths {
		_ = godotenv.Overload(path)
	}
}
