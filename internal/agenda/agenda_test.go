package agenda

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profissa/profissa/internal/backend"
	"github.com/profissa/profissa/internal/format"
	"github.com/profissa/profissa/internal/models"
	"github.com/profissa/profissa/internal/models/dto"
)

type fakeBackend struct {
	rows []dto.AgendaRow
	err  error
}

func (f fakeBackend) Agenda(context.Context) ([]dto.AgendaRow, error) { return f.rows, f.err }

func TestLoad(t *testing.T) {
	specialty := "Dentista"
	price := 200.0
	rows := []dto.AgendaRow{
		{
			ID: "a1", Date: "2026-03-15T17:30:00Z", Description: "limpeza", Status: models.StatusPending,
			Professional: models.Professional{Name: "Dra. Ana", Specialty: &specialty, Price: &price},
		},
		{
			ID: "a2", Status: models.StatusCompleted,
			Professional: models.Professional{Name: "Zé"},
		},
	}
	brt := time.FixedZone("BRT", -3*60*60)
	got := NewService(fakeBackend{rows: rows}, brt).Load(context.Background())
	require.Len(t, got, 2)

	assert.Equal(t, Entry{
		ID:           "a1",
		Professional: "Dra. Ana",
		Specialty:    "Dentista",
		Description:  "limpeza",
		Status:       models.StatusPending,
		Date:         "15 mar",
		Time:         "14:30",
		Price:        "R$ 200,00",
		When:         time.Date(2026, 3, 15, 17, 30, 0, 0, time.UTC),
	}, got[0])
	assert.Equal(t, "Pendente", got[0].Label())

	assert.Equal(t, format.InvalidDate, got[1].Date)
	assert.Equal(t, format.InvalidTime, got[1].Time)
	assert.Equal(t, format.MissingPrice, got[1].Price)
	assert.Equal(t, "Concluído", got[1].Label())
	assert.True(t, got[1].When.IsZero())
}

func TestMalformedDateSpoilsOnlyItsRow(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":200,"message":"ok","data":[
			{"id":"a1","date":"2026-03-15T17:30:00Z","status":"pending","professional":{"name":"Dra. Ana"}},
			{"id":"a2","date":"not-a-date","status":"confirmed","professional":{"name":"Zé"}}
		]}`))
	}))
	defer ts.Close()

	c := backend.New(ts.URL)
	c.SetToken("tok")
	got := NewService(c, time.UTC).Load(context.Background())
	require.Len(t, got, 2)

	assert.Equal(t, "15 mar", got[0].Date)
	assert.Equal(t, "17:30", got[0].Time)

	assert.Equal(t, "a2", got[1].ID)
	assert.Equal(t, format.InvalidDate, got[1].Date)
	assert.Equal(t, format.InvalidTime, got[1].Time)
	assert.Equal(t, "Confirmado", got[1].Label())
}

func TestLoadFailureIsEmpty(t *testing.T) {
	got := NewService(fakeBackend{err: errors.New("offline")}, nil).Load(context.Background())
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestApply(t *testing.T) {
	entries := []Entry{{ID: "a1", Status: models.StatusPending}, {ID: "a2", Status: models.StatusPending}}

	next, ok := Apply(entries, dto.StatusEvent{AppointmentID: "a2", Status: models.StatusConfirmed})
	require.True(t, ok)
	assert.Equal(t, "Confirmado", next[1].Label())
	assert.Equal(t, models.StatusPending, entries[1].Status, "input is not modified")

	_, ok = Apply(entries, dto.StatusEvent{AppointmentID: "zz", Status: models.StatusCancelled})
	assert.False(t, ok)
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Pendente", StatusLabel(models.StatusPending))
	assert.Equal(t, "Confirmado", StatusLabel(models.StatusConfirmed))
	assert.Equal(t, "Cancelado", StatusLabel(models.StatusCancelled))
	assert.Equal(t, "Concluído", StatusLabel(models.StatusCompleted))
	assert.Equal(t, "arquivado", StatusLabel("arquivado"))
}
