package session

import (
	"context"
	"errors"
	"log"
	"time"
)

// DefaultPollInterval is how often Watch re-reads the slot.
const DefaultPollInterval = 500 * time.Millisecond

// Watch re-reads the slot every interval until ctx is done, so writes made
// by another process (or by hand) reach subscribers. Sign-in and sign-out
// in this process publish directly and do not wait for a tick.
func (s *Store) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.reconcile(ctx)
		}
	}
}

// reconcile adopts the slot contents. A missing or corrupt slot signs the
// store out. A read failure of the slot itself leaves the state untouched,
// and so does a read overtaken by a local transition.
func (s *Store) reconcile(ctx context.Context) {
	s.mu.Lock()
	seen := s.version
	s.mu.Unlock()

	raw, c, err := s.read(ctx)
	if err != nil && ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.version != seen || s.snap.State == SigningIn {
		return
	}

	switch {
	case err == nil:
		s.setLocked(Snapshot{State: SignedIn, User: c.User, Token: c.AccessToken}, raw)
	case errors.Is(err, ErrEmpty), errors.Is(err, errCorrupt):
		s.setLocked(Snapshot{State: SignedOut}, nil)
	default:
		log.Printf("session: poll: %v", err)
	}
}
