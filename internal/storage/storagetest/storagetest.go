// Package storagetest holds behaviour every storage.Store must share.
package storagetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profissa/profissa/internal/models"
	"github.com/profissa/profissa/internal/storage"
)

// Run exercises store. Rows are created with unique ids and emails so the
// suite can run against a shared database.
func Run(t *testing.T, store storage.Store) {
	ctx := context.Background()
	suffix := uuid.NewString()[:8]
	area := int64(1)

	newUser := func(name, role string, areaID *int64) models.User {
		u, err := store.CreateUser(ctx, models.User{
			ID:           uuid.NewString(),
			Name:         name,
			Email:        fmt.Sprintf("%s_%s@example.com", name, suffix),
			Role:         role,
			AreaID:       areaID,
			PasswordHash: "hash",
		})
		require.NoError(t, err)
		return u
	}

	pro := newUser("pro", models.RoleProfessional, &area)
	other := newUser("other", models.RoleProfessional, nil)
	client := newUser("client", models.RoleUser, nil)

	t.Run("users", func(t *testing.T) {
		_, err := store.CreateUser(ctx, models.User{ID: uuid.NewString(), Name: "dup", Email: pro.Email, Role: models.RoleUser, PasswordHash: "hash"})
		assert.ErrorIs(t, err, storage.ErrAlreadyExists)

		got, err := store.FindByEmail(ctx, client.Email)
		require.NoError(t, err)
		assert.Equal(t, client.ID, got.ID)
		assert.Equal(t, "hash", got.PasswordHash)

		_, err = store.FindByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, err = store.FindByEmail(ctx, "missing_"+suffix+"@example.com")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("directory", func(t *testing.T) {
		areas, err := store.ListAreas(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(areas), 5)

		all, err := store.ListProfessionals(ctx, nil)
		require.NoError(t, err)
		ids := map[string]bool{}
		for _, p := range all {
			assert.Equal(t, models.RoleProfessional, p.Role)
			ids[p.ID] = true
		}
		assert.True(t, ids[pro.ID])
		assert.True(t, ids[other.ID])
		assert.False(t, ids[client.ID])

		filtered, err := store.ListProfessionals(ctx, &area)
		require.NoError(t, err)
		for _, p := range filtered {
			require.NotNil(t, p.AreaID)
			assert.Equal(t, area, *p.AreaID)
			assert.True(t, ids[p.ID])
		}
	})

	t.Run("appointments", func(t *testing.T) {
		when := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
		appt, err := store.CreateAppointment(ctx, models.Appointment{
			ID:             uuid.NewString(),
			ProfessionalID: pro.ID,
			UserID:         client.ID,
			Date:           when,
			Description:    "revisão",
			Status:         models.StatusPending,
		})
		require.NoError(t, err)

		agenda, err := store.ListAgenda(ctx, client.ID)
		require.NoError(t, err)
		require.Len(t, agenda, 1)
		assert.Equal(t, appt.ID, agenda[0].ID)
		assert.Equal(t, pro.Name, agenda[0].Professional.Name)
		assert.True(t, when.Equal(agenda[0].Date))

		_, err = store.UpdateStatus(ctx, appt.ID, other.ID, models.StatusConfirmed)
		assert.ErrorIs(t, err, storage.ErrNotFound, "only the booked professional may move it")

		updated, err := store.UpdateStatus(ctx, appt.ID, pro.ID, models.StatusConfirmed)
		require.NoError(t, err)
		assert.Equal(t, models.StatusConfirmed, updated.Status)

		_, err = store.UpdateStatus(ctx, appt.ID, pro.ID, models.StatusPending)
		assert.ErrorIs(t, err, storage.ErrInvalidTransition)

		_, err = store.UpdateStatus(ctx, appt.ID, pro.ID, models.StatusCompleted)
		require.NoError(t, err)
		_, err = store.UpdateStatus(ctx, appt.ID, pro.ID, models.StatusCancelled)
		assert.ErrorIs(t, err, storage.ErrInvalidTransition)
	})
}
