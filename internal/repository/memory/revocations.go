package memory

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/hotel-room-reservation/internal/repository"
)

// Revocations is a process-local token denylist. Expired entries are
// pruned lazily on lookup.
type Revocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

var _ repository.Revocations = (*Revocations)(nil)

// NewRevocations returns an empty denylist; now may be nil for time.Now.
func NewRevocations(now func() time.Time) *Revocations {
	if now == nil {
		now = time.Now
	}
	return &Revocations{revoked: make(map[string]time.Time), now: now}
}

// Revoke remembers tokenID until expiresAt.
func (r *Revocations) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.now().Before(expiresAt) {
		return nil
	}
	r.revoked[tokenID] = expiresAt
	return nil
}

// IsRevoked reports whether tokenID was revoked and has not yet expired.
func (r *Revocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	exp, ok := r.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !r.now().Before(exp) {
		delete(r.revoked, tokenID)
		return false, nil
	}
	return true, nil
}
