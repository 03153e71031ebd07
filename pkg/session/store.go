// Package session persists per-user conversational state with a TTL.
package session

import (
	"context"
	"time"

	"github.com/voxwallet-hq/voxwallet/pkg/models"
)

// Store is the durable mapping from user identity to conversational state.
// Get returns the idle session when no entry exists or the TTL has elapsed;
// expiry is silent. Set always (re)arms the store's TTL for that user.
type Store interface {
	Get(ctx context.Context, userID int64) (models.Session, error)
	Set(ctx context.Context, userID int64, session models.Session) error
	Clear(ctx context.Context, userID int64) error
	TTL() time.Duration
}
