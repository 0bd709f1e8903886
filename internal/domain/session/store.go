package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/recyclify/recyclify-client/internal/domain/shared"
	"github.com/recyclify/recyclify-client/pkg/logger"
)

// Keys used in persisted client storage.
const (
	KeyToken          = "jwt"
	KeyTokenRefreshed = "tokenRefreshed"
)

// Storage is the persisted key-value storage that survives restarts.
type Storage interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// ProfileFetcher loads the profile of the user owning token.
type ProfileFetcher interface {
	GetUserDetails(ctx context.Context, token string) (*UserProfile, error)
}

// Session is a point-in-time view of the authentication state.
type Session struct {
	AuthToken string // "" means no token
	User      *UserProfile
	Loaded    bool
	Err       error
}

// IsAuthenticated reports whether routing may treat the user as signed in.
func (s Session) IsAuthenticated() bool {
	return s.Loaded && s.Err == nil && s.User != nil
}

// Role returns the user's role, or "" when no user is loaded.
func (s Session) Role() shared.Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

// Listener is called with a snapshot after every state change.
type Listener func(Session)

// Store is the single owner of the session state. It is safe for concurrent use.
type Store struct {
	storage Storage
	fetcher ProfileFetcher
	log     *logger.Logger
	events  shared.EventPublisher

	mu       sync.RWMutex
	state    Session
	gen      uint64 // bumped by every fetch and logout
	inflight bool

	lmu       sync.Mutex
	listeners map[int]Listener
	nextID    int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithEventPublisher publishes session events.
func WithEventPublisher(p shared.EventPublisher) Option {
	return func(s *Store) {
		if p != nil {
			s.events = p
		}
	}
}

// NewStore creates a store initialized from the persisted token.
func NewStore(ctx context.Context, storage Storage, fetcher ProfileFetcher, opts ...Option) (*Store, error) {
	s := &Store{
		storage:   storage,
		fetcher:   fetcher,
		log:       logger.Nop(),
		events:    shared.NopPublisher{},
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("session"))

	token, _, err := storage.Get(ctx, KeyToken)
	if err != nil {
		return nil, fmt.Errorf("read persisted token: %w", err)
	}
	s.state.AuthToken = token

	return s, nil
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Session {
	out := s.state
	out.User = s.state.User.clone()
	return out
}

// Subscribe registers fn to run after every state change. The returned func
// removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.lmu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.lmu.Unlock()

	return func() {
		s.lmu.Lock()
		delete(s.listeners, id)
		s.lmu.Unlock()
	}
}

func (s *Store) notify(snap Session) {
	s.lmu.Lock()
	fns := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.lmu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// update applies fn under the write lock and notifies listeners.
// fn returns false to skip the change.
func (s *Store) update(fn func(st *Session) bool) (Session, bool) {
	s.mu.Lock()
	if !fn(&s.state) {
		s.mu.Unlock()
		return Session{}, false
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return snap, true
}

func (s *Store) publish(ev shared.Event) {
	if err := s.events.Publish(ev); err != nil {
		s.log.Warn("publish session event", logger.String("event", string(ev.EventType())), logger.Err(err))
	}
}

// FetchUser loads the profile for the persisted token with a single request.
// Loaded becomes true when the attempt completes, whether it succeeded or not;
// a failure also clears the previous user.
// A result that arrives after Logout, after a newer fetch, or after ctx is
// cancelled is discarded and ErrSessionStale or the context error is returned.
func (s *Store) FetchUser(ctx context.Context) error {
	var (
		gen       uint64
		wasLoaded bool
	)
	s.update(func(st *Session) bool {
		s.gen++
		gen = s.gen
		wasLoaded = st.Loaded
		s.inflight = true
		st.Loaded = false
		return true
	})

	profile, err := s.fetch(ctx)

	if ctxErr := ctx.Err(); ctxErr != nil {
		// A cancelled refresh puts back the state it started from.
		s.update(func(st *Session) bool {
			if s.gen != gen {
				return false
			}
			s.inflight = false
			st.Loaded = wasLoaded
			return wasLoaded
		})
		s.log.Debug("discarding profile fetch", logger.Err(ctxErr))
		return ctxErr
	}

	applied := false
	snap, _ := s.update(func(st *Session) bool {
		if s.gen != gen {
			return false
		}
		applied = true
		s.inflight = false
		st.Loaded = true
		if err != nil {
			st.User = nil
			st.Err = err
			return true
		}
		st.User = profile
		st.Err = nil
		return true
	})
	if !applied {
		s.log.Debug("discarding superseded profile fetch")
		return shared.ErrSessionStale
	}

	if err != nil {
		s.log.Warn("fetch user failed", logger.Err(err))
		s.publish(shared.NewEvent(shared.EventSessionFailed, "", map[string]any{"error": err.Error()}))
		return err
	}

	s.log.Debug("user fetched", logger.UserID(snap.User.ID.String()), logger.Role(string(snap.User.Role)))
	s.publish(shared.NewEvent(shared.EventSessionLoaded, snap.User.ID.String(), map[string]any{"role": string(snap.User.Role)}))
	return nil
}

func (s *Store) fetch(ctx context.Context) (*UserProfile, error) {
	token, ok, err := s.storage.Get(ctx, KeyToken)
	if err != nil {
		return nil, fmt.Errorf("read persisted token: %w", err)
	}
	if !ok || token == "" {
		return nil, shared.ErrNoToken
	}

	profile, err := s.fetcher.GetUserDetails(ctx, token)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, shared.ErrInvalidProfile
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return profile, nil
}

// ReloadAuthToken reconciles the in-memory token with persisted storage.
// If the refreshed flag is set, the persisted token (or none) is adopted and
// the flag cleared. Otherwise, if token is set but nothing is persisted, the
// session is logged out.
func (s *Store) ReloadAuthToken(ctx context.Context, token string) error {
	flag, _, err := s.storage.Get(ctx, KeyTokenRefreshed)
	if err != nil {
		return fmt.Errorf("read refreshed flag: %w", err)
	}

	if flag == "true" {
		persisted, _, err := s.storage.Get(ctx, KeyToken)
		if err != nil {
			return fmt.Errorf("read persisted token: %w", err)
		}
		s.update(func(st *Session) bool {
			st.AuthToken = persisted
			return true
		})
		if err := s.storage.Delete(ctx, KeyTokenRefreshed); err != nil {
			return fmt.Errorf("clear refreshed flag: %w", err)
		}
		s.publish(shared.NewEvent(shared.EventTokenRefreshed, "", nil))
		return nil
	}

	if token == "" {
		return nil
	}

	persisted, ok, err := s.storage.Get(ctx, KeyToken)
	if err != nil {
		return fmt.Errorf("read persisted token: %w", err)
	}
	if !ok || persisted == "" {
		s.Logout()
	}
	return nil
}

// SetToken persists a new token, flags it as refreshed and adopts it. The
// profile is not loaded; call FetchUser for that.
func (s *Store) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("%w: token", shared.ErrEmptyValue)
	}
	if err := s.storage.Set(ctx, KeyToken, token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	if err := s.storage.Set(ctx, KeyTokenRefreshed, "true"); err != nil {
		return fmt.Errorf("persist refreshed flag: %w", err)
	}
	return s.ReloadAuthToken(ctx, s.Snapshot().AuthToken)
}

// Logout clears the token, user and error. Persisted storage is left to the
// caller; see SignOut. A fetch in flight is abandoned and its result ignored.
func (s *Store) Logout() {
	s.update(func(st *Session) bool {
		s.gen++
		if s.inflight {
			s.inflight = false
			st.Loaded = true
		}
		st.AuthToken = ""
		st.User = nil
		st.Err = nil
		return true
	})
	s.log.Debug("logged out")
	s.publish(shared.NewEvent(shared.EventLoggedOut, "", nil))
}

// SignOut logs out and removes the persisted token and flag.
func (s *Store) SignOut(ctx context.Context) error {
	s.Logout()
	if err := s.storage.Delete(ctx, KeyToken, KeyTokenRefreshed); err != nil {
		return fmt.Errorf("clear persisted token: %w", err)
	}
	return nil
}

// IsStale reports whether err is the result of a discarded fetch.
func IsStale(err error) bool {
	return errors.Is(err, shared.ErrSessionStale) || errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
