// Package session holds the process-wide authentication state of the client
// and persists the signed-in user to a Slot.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/profissa/profissa/internal/models"
	"github.com/profissa/profissa/internal/models/dto"
)

type State int

const (
	SignedOut State = iota
	SigningIn
	SignedIn
)

func (s State) String() string {
	switch s {
	case SignedOut:
		return "signed out"
	case SigningIn:
		return "signing in"
	case SignedIn:
		return "signed in"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ErrTransition is returned when an operation is not allowed from the current state.
var ErrTransition = errors.New("invalid session transition")

var errCorrupt = errors.New("corrupt session")

// Snapshot is the state published to subscribers.
type Snapshot struct {
	State State
	User  models.User
	Token string
}

// Authenticator exchanges credentials for a token and the user's row.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (dto.SignInResponse, error)
}

// cached is the slot payload: the user row plus the token it was issued.
type cached struct {
	models.User
	AccessToken string `json:"access_token,omitempty"`
}

type Store struct {
	slot Slot
	auth Authenticator

	mu   sync.Mutex
	snap Snapshot
	raw  []byte
	// version counts local transitions. A poll that read the slot under an
	// older version is stale and is dropped.
	version uint64
	subs    map[int]chan Snapshot
	nextID  int
}

func NewStore(slot Slot, auth Authenticator) *Store {
	return &Store{
		slot: slot,
		auth: auth,
		subs: make(map[int]chan Snapshot),
	}
}

// Current returns the latest snapshot.
func (s *Store) Current() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// User returns the signed-in user, if any.
func (s *Store) User() (models.User, bool) {
	snap := s.Current()
	return snap.User, snap.State == SignedIn
}

func (s *Store) Token() string {
	return s.Current().Token
}

// Subscribe returns a channel that receives every transition. The channel
// holds one pending snapshot; a slow reader sees only the latest one.
// Calling cancel closes the channel.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan Snapshot, 1)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

// Restore reads the slot once and adopts what it holds. A missing or
// unreadable slot leaves the store signed out.
func (s *Store) Restore(ctx context.Context) Snapshot {
	raw, c, err := s.read(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version++
	if err != nil {
		if !errors.Is(err, ErrEmpty) {
			log.Printf("session: restore: %v", err)
		}
		s.setLocked(Snapshot{State: SignedOut}, nil)
		return s.snap
	}
	s.setLocked(Snapshot{State: SignedIn, User: c.User, Token: c.AccessToken}, raw)
	return s.snap
}

// SignIn moves SignedOut to SigningIn, asks the Authenticator, and ends in
// SignedIn on success or back in SignedOut on failure.
func (s *Store) SignIn(ctx context.Context, email, password string) (models.User, error) {
	s.mu.Lock()
	if s.snap.State != SignedOut {
		state := s.snap.State
		s.mu.Unlock()
		return models.User{}, fmt.Errorf("%w: sign in while %s", ErrTransition, state)
	}
	s.version++
	s.setLocked(Snapshot{State: SigningIn}, nil)
	s.mu.Unlock()

	resp, err := s.auth.SignIn(ctx, email, password)
	if err != nil {
		s.mu.Lock()
		s.version++
		s.setLocked(Snapshot{State: SignedOut}, nil)
		s.mu.Unlock()
		return models.User{}, err
	}

	raw := s.persist(ctx, resp.User, resp.Token)

	s.mu.Lock()
	s.version++
	s.setLocked(Snapshot{State: SignedIn, User: resp.User, Token: resp.Token}, raw)
	s.mu.Unlock()
	return resp.User, nil
}

// SignOut clears the slot and moves to SignedOut. Signing out while signed
// out is a no-op. If the slot cannot be cleared the store stays signed in.
func (s *Store) SignOut(ctx context.Context) error {
	s.mu.Lock()
	state := s.snap.State
	s.mu.Unlock()
	switch state {
	case SignedOut:
		return nil
	case SigningIn:
		return fmt.Errorf("%w: sign out while %s", ErrTransition, state)
	}

	if err := s.slot.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.version++
	s.setLocked(Snapshot{State: SignedOut}, nil)
	return nil
}

// SetUser re-caches a freshly fetched copy of the signed-in user.
func (s *Store) SetUser(ctx context.Context, u models.User) error {
	s.mu.Lock()
	if s.snap.State != SignedIn {
		s.mu.Unlock()
		return fmt.Errorf("%w: refresh while %s", ErrTransition, s.snap.State)
	}
	token := s.snap.Token
	s.mu.Unlock()

	raw, err := encode(u, token)
	if err != nil {
		return err
	}
	if err := s.slot.Save(ctx, raw); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.State == SignedIn {
		s.version++
		s.setLocked(Snapshot{State: SignedIn, User: u, Token: token}, raw)
	}
	return nil
}

// persist writes the user to the slot. A failed write is logged; the
// in-memory session stays valid for this process.
func (s *Store) persist(ctx context.Context, u models.User, token string) []byte {
	raw, err := encode(u, token)
	if err != nil {
		log.Printf("session: %v", err)
		return nil
	}
	if err := s.slot.Save(ctx, raw); err != nil {
		log.Printf("session: save: %v", err)
		return nil
	}
	return raw
}

func (s *Store) read(ctx context.Context) ([]byte, cached, error) {
	raw, err := s.slot.Load(ctx)
	if err != nil {
		return nil, cached{}, err
	}
	c, err := decode(raw)
	if err != nil {
		return nil, cached{}, err
	}
	return raw, c, nil
}

// setLocked stores snap and notifies subscribers. s.mu must be held.
func (s *Store) setLocked(next Snapshot, raw []byte) {
	if next.State == s.snap.State && next.State == SignedOut {
		return
	}
	if next.State == SignedIn && s.snap.State == SignedIn && raw != nil && bytes.Equal(raw, s.raw) {
		return
	}
	s.snap = next
	s.raw = raw
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- next
	}
}

func encode(u models.User, token string) ([]byte, error) {
	raw, err := json.Marshal(cached{User: u, AccessToken: token})
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return raw, nil
}

func decode(raw []byte) (cached, error) {
	var c cached
	if err := json.Unmarshal(raw, &c); err != nil {
		return cached{}, fmt.Errorf("%w: %w", errCorrupt, err)
	}
	if c.ID == "" {
		return cached{}, fmt.Errorf("%w: missing user id", errCorrupt)
	}
	return c, nil
}
