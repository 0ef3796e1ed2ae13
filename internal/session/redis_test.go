package session

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRedisSlot runs against a live Redis when PROFISSA_TEST_REDIS_URL is set.
func TestRedisSlot(t *testing.T) {
	url := os.Getenv("PROFISSA_TEST_REDIS_URL")
	if url == "" {
		t.Skip("set PROFISSA_TEST_REDIS_URL to run this integration test")
	}
	ctx := context.Background()
	key := fmt.Sprintf("profissa:test:%d", time.Now().UnixNano())

	slot, err := NewRedisSlot(ctx, url, key)
	require.NoError(t, err)
	defer slot.Close()
	defer slot.Clear(ctx)

	_, err = slot.Load(ctx)
	assert.ErrorIs(t, err, ErrEmpty)

	store := NewStore(slot, &fakeAuth{})
	raw, err := encode(ana, "tok")
	require.NoError(t, err)
	require.NoError(t, slot.Save(ctx, raw))
	assert.Equal(t, SignedIn, store.Restore(ctx).State)

	require.NoError(t, store.SignOut(ctx))
	_, err = slot.Load(ctx)
	assert.ErrorIs(t, err, ErrEmpty)
}
