package conversation

import (
	"sync"
	"time"

	"github.com/voxwallet-hq/voxwallet/pkg/metrics"
)

// pendingTracker mirrors the set of confirmations currently awaiting a reply
// and keeps the gauge in step with it. Entries carry the session TTL so a
// prompt that expires silently in the store drops out of the count too.
type pendingTracker struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	deadline map[int64]time.Time
}

func newPendingTracker(ttl time.Duration) *pendingTracker {
	return &pendingTracker{
		ttl:      ttl,
		now:      time.Now,
		deadline: make(map[int64]time.Time),
	}
}

// promptShown records a confirmation prompt for the user. A new prompt while
// one is still pending replaces it rather than counting twice.
func (t *pendingTracker) promptShown(userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.deadline[userID] = t.now().Add(t.ttl)
	t.publish()
}

// resolved drops the user's pending prompt. Unknown users are ignored, so a
// stale or duplicate reply cannot drive the gauge negative.
func (t *pendingTracker) resolved(userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.deadline, userID)
	t.publish()
}

// active returns the number of live pending prompts.
func (t *pendingTracker) active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.publish()
}

// publish sweeps expired entries and pushes the count to the gauge. The
// caller holds the mutex.
func (t *pendingTracker) publish() int {
	cutoff := t.now()
	for userID, deadline := range t.deadline {
		if cutoff.After(deadline) {
			delete(t.deadline, userID)
		}
	}
	metrics.PendingConfirmations.Set(float64(len(t.deadline)))
	return len(t.deadline)
}

// setClock overrides the time source; tests use it to force expiry.
func (t *pendingTracker) setClock(now func() time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = now
}
