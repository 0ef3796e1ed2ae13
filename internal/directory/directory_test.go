package directory

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profissa/profissa/internal/backend"
	"github.com/profissa/profissa/internal/config"
	"github.com/profissa/profissa/internal/models"
	"github.com/profissa/profissa/internal/models/dto"
	"github.com/profissa/profissa/internal/server"
	"github.com/profissa/profissa/internal/storage/memory"
)

type fakeBackend struct {
	areas    []models.Area
	pros     []models.User
	areasErr error
	prosErr  error
}

func (f *fakeBackend) Areas(context.Context) ([]models.Area, error) {
	return f.areas, f.areasErr
}

// Professionals ignores the filter, like a backend that drops the predicate.
func (f *fakeBackend) Professionals(context.Context, *int64) ([]models.User, error) {
	return f.pros, f.prosErr
}

func ptr[T any](v T) *T { return &v }

func TestLoadFailuresDegradeToEmpty(t *testing.T) {
	svc := NewService(&fakeBackend{areasErr: errors.New("timeout"), prosErr: errors.New("timeout")})
	d := svc.Load(context.Background(), Filter{})
	assert.NotNil(t, d.Areas)
	assert.NotNil(t, d.Professionals)
	assert.Empty(t, d.Areas)
	assert.Empty(t, d.Professionals)
}

func TestLoadHalvesAreIndependent(t *testing.T) {
	svc := NewService(&fakeBackend{
		areas:   memory.DefaultAreas,
		prosErr: errors.New("boom"),
	})
	d := svc.Load(context.Background(), Filter{})
	assert.Len(t, d.Areas, len(memory.DefaultAreas))
	assert.Empty(t, d.Professionals)
}

func TestFilterIsEnforcedClientSide(t *testing.T) {
	svc := NewService(&fakeBackend{pros: []models.User{
		{ID: "1", Role: models.RoleProfessional, AreaID: ptr(int64(1))},
		{ID: "2", Role: models.RoleProfessional, AreaID: ptr(int64(2))},
		{ID: "3", Role: models.RoleProfessional},
		{ID: "4", Role: models.RoleUser, AreaID: ptr(int64(1))},
	}})
	ctx := context.Background()

	got := svc.Professionals(ctx, Filter{AreaID: ptr(int64(1))})
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)

	assert.Len(t, svc.Professionals(ctx, Filter{}), 3)
	assert.Len(t, svc.Professionals(ctx, Filter{Query: "dentista"}), 3, "query is not applied")
}

func TestFilterSubsetAgainstBackend(t *testing.T) {
	store := memory.New()
	cfg := config.Config{JWTSecret: "test", JWTIssuer: "profissa", JWTTTL: time.Hour, CORSOrigins: []string{"*"}}
	ts := httptest.NewServer(server.Routes(cfg, store, nil))
	defer ts.Close()

	ctx := context.Background()
	client := backend.New(ts.URL)
	seed := []struct {
		email string
		area  *int64
	}{
		{"a@b.com", ptr(int64(1))},
		{"b@b.com", ptr(int64(1))},
		{"c@b.com", ptr(int64(2))},
		{"d@b.com", ptr(int64(5))},
		{"e@b.com", nil},
	}
	for _, s := range seed {
		_, err := client.SignUp(ctx, dto.SignUpRequest{Name: s.email, Email: s.email, Password: "segredo1", Role: models.RoleProfessional, AreaID: s.area})
		require.NoError(t, err)
	}
	_, err := client.SignUp(ctx, dto.SignUpRequest{Name: "cliente", Email: "x@b.com", Password: "segredo1"})
	require.NoError(t, err)

	svc := NewService(client)
	all := svc.Load(ctx, Filter{})
	assert.Len(t, all.Areas, len(memory.DefaultAreas))
	assert.Len(t, all.Professionals, len(seed))

	ids := map[string]bool{}
	for _, p := range all.Professionals {
		ids[p.ID] = true
	}
	for _, area := range all.Areas {
		got := svc.Load(ctx, Filter{AreaID: ptr(area.ID)}).Professionals
		for _, p := range got {
			assert.True(t, ids[p.ID])
			require.NotNil(t, p.AreaID)
			assert.Equal(t, area.ID, *p.AreaID)
		}
	}
	assert.Len(t, svc.Load(ctx, Filter{AreaID: ptr(int64(1))}).Professionals, 2)
}
