package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxwallet-hq/voxwallet/pkg/models"
)

func pendingSession() models.Session {
	return models.Session{
		State: models.StateAwaitingConfirmation,
		PendingIntent: &models.Intent{
			Action:           models.ActionTransfer,
			RecipientName:    "Kate",
			RecipientAddress: "0xabc",
			Amount:           "0.5 ETH",
			Network:          models.NetworkEthereum,
		},
		PromptMessageID: 12,
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore(5 * time.Minute)
	ctx := context.Background()

	// Unknown users start idle.
	sess, err := store.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, models.IdleSession(), sess)

	require.NoError(t, store.Set(ctx, 7, pendingSession()))

	sess, err = store.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, models.StateAwaitingConfirmation, sess.State)
	require.NotNil(t, sess.PendingIntent)
	assert.Equal(t, "0.5 ETH", sess.PendingIntent.Amount)
	assert.Equal(t, 12, sess.PromptMessageID)

	require.NoError(t, store.Clear(ctx, 7))
	sess, err = store.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, models.IdleSession(), sess)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(5 * time.Minute)
	ctx := context.Background()

	now := time.Now()
	store.SetClock(func() time.Time { return now })

	require.NoError(t, store.Set(ctx, 7, pendingSession()))

	// Just inside the TTL the session survives.
	now = now.Add(4 * time.Minute)
	sess, err := store.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, models.StateAwaitingConfirmation, sess.State)

	// Past the TTL the user silently reverts to idle.
	now = now.Add(2 * time.Minute)
	sess, err = store.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, models.IdleSession(), sess)
}

func TestMemoryStoreSetRearmsTTL(t *testing.T) {
	store := NewMemoryStore(5 * time.Minute)
	ctx := context.Background()

	now := time.Now()
	store.SetClock(func() time.Time { return now })

	require.NoError(t, store.Set(ctx, 7, pendingSession()))
	now = now.Add(4 * time.Minute)
	require.NoError(t, store.Set(ctx, 7, pendingSession()))

	// The second Set restarted the clock.
	now = now.Add(4 * time.Minute)
	sess, err := store.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, models.StateAwaitingConfirmation, sess.State)
}
