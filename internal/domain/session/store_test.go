package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recyclify/recyclify-client/internal/domain/shared"
)

type mapStorage struct {
	mu   sync.Mutex
	data map[string]string
}

func newMapStorage(kv ...string) *mapStorage {
	m := &mapStorage{data: map[string]string{}}
	for i := 0; i+1 < len(kv); i += 2 {
		m.data[kv[i]] = kv[i+1]
	}
	return m
}

func (m *mapStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mapStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mapStorage) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

type fetcherFunc func(ctx context.Context, token string) (*UserProfile, error)

func (f fetcherFunc) GetUserDetails(ctx context.Context, token string) (*UserProfile, error) {
	return f(ctx, token)
}

func profileFor(token string) fetcherFunc {
	return func(_ context.Context, got string) (*UserProfile, error) {
		if got != token {
			return nil, shared.ErrUnauthorized
		}
		return &UserProfile{ID: "1", Name: "Jo", Role: shared.RoleStudent}, nil
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.EventType
}

func (r *recordingPublisher) Publish(ev shared.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev.EventType())
	return nil
}

func newStore(t *testing.T, storage Storage, fetcher ProfileFetcher, opts ...Option) *Store {
	t.Helper()
	s, err := NewStore(context.Background(), storage, fetcher, opts...)
	require.NoError(t, err)
	return s
}

func TestStore_InitializedFromPersistedToken(t *testing.T) {
	s := newStore(t, newMapStorage(KeyToken, "abc"), profileFor("abc"))

	snap := s.Snapshot()
	assert.Equal(t, "abc", snap.AuthToken)
	assert.False(t, snap.Loaded)
	assert.Nil(t, snap.User)
}

func TestFetchUser_Success(t *testing.T) {
	pub := &recordingPublisher{}
	s := newStore(t, newMapStorage(KeyToken, "abc"), profileFor("abc"), WithEventPublisher(pub))

	require.NoError(t, s.FetchUser(context.Background()))

	snap := s.Snapshot()
	assert.Equal(t, "abc", snap.AuthToken)
	assert.True(t, snap.Loaded)
	assert.NoError(t, snap.Err)
	require.NotNil(t, snap.User)
	assert.Equal(t, UserProfile{ID: "1", Name: "Jo", Role: shared.RoleStudent}, *snap.User)
	assert.True(t, snap.IsAuthenticated())
	assert.Equal(t, []shared.EventType{shared.EventSessionLoaded}, pub.events)
}

func TestFetchUser_FailureStillMarksLoaded(t *testing.T) {
	boom := errors.New("connection refused")
	s := newStore(t, newMapStorage(KeyToken, "abc"), fetcherFunc(func(context.Context, string) (*UserProfile, error) {
		return nil, boom
	}))

	err := s.FetchUser(context.Background())
	assert.ErrorIs(t, err, boom)

	snap := s.Snapshot()
	assert.True(t, snap.Loaded)
	assert.ErrorIs(t, snap.Err, boom)
	assert.Nil(t, snap.User)
	assert.False(t, snap.IsAuthenticated())
}

func TestFetchUser_NoPersistedToken(t *testing.T) {
	called := false
	s := newStore(t, newMapStorage(), fetcherFunc(func(context.Context, string) (*UserProfile, error) {
		called = true
		return nil, nil
	}))

	err := s.FetchUser(context.Background())
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
	assert.False(t, called)
	assert.True(t, s.Snapshot().Loaded)
}

func TestFetchUser_RejectsProfileWithoutID(t *testing.T) {
	s := newStore(t, newMapStorage(KeyToken, "abc"), fetcherFunc(func(context.Context, string) (*UserProfile, error) {
		return &UserProfile{Name: "ghost"}, nil
	}))

	assert.ErrorIs(t, s.FetchUser(context.Background()), shared.ErrInvalidProfile)
}

func TestFetchUser_SuccessClearsPreviousError(t *testing.T) {
	fail := true
	s := newStore(t, newMapStorage(KeyToken, "abc"), fetcherFunc(func(ctx context.Context, tok string) (*UserProfile, error) {
		if fail {
			return nil, shared.ErrServiceUnavailable
		}
		return profileFor("abc")(ctx, tok)
	}))

	require.Error(t, s.FetchUser(context.Background()))
	fail = false
	require.NoError(t, s.FetchUser(context.Background()))
	assert.NoError(t, s.Snapshot().Err)
}

func TestLogout_ClearsState(t *testing.T) {
	s := newStore(t, newMapStorage(KeyToken, "abc"), profileFor("abc"))
	require.NoError(t, s.FetchUser(context.Background()))

	s.Logout()

	snap := s.Snapshot()
	assert.Empty(t, snap.AuthToken)
	assert.Nil(t, snap.User)
	assert.NoError(t, snap.Err)
}

func TestLogout_DiscardsInflightFetch(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	s := newStore(t, newMapStorage(KeyToken, "abc"), fetcherFunc(func(ctx context.Context, tok string) (*UserProfile, error) {
		close(started)
		<-release
		return profileFor("abc")(ctx, tok)
	}))

	errc := make(chan error, 1)
	go func() { errc <- s.FetchUser(context.Background()) }()

	<-started
	s.Logout()
	close(release)

	err := <-errc
	assert.ErrorIs(t, err, shared.ErrSessionStale)
	assert.True(t, IsStale(err))

	snap := s.Snapshot()
	assert.Nil(t, snap.User)
	assert.True(t, snap.Loaded)
	assert.False(t, snap.IsAuthenticated())
}

func TestFetchUser_CancelledContextDiscardsResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newStore(t, newMapStorage(KeyToken, "abc"), fetcherFunc(func(ctx context.Context, tok string) (*UserProfile, error) {
		cancel()
		return profileFor("abc")(ctx, tok)
	}))

	err := s.FetchUser(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, s.Snapshot().User)
	assert.False(t, s.Snapshot().Loaded)
}

func TestFetchUser_CancelledRefreshKeepsLoadedSession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancelNext := false
	s := newStore(t, newMapStorage(KeyToken, "abc"), fetcherFunc(func(ctx context.Context, tok string) (*UserProfile, error) {
		if cancelNext {
			cancel()
		}
		return profileFor("abc")(ctx, tok)
	}))
	require.NoError(t, s.FetchUser(context.Background()))

	cancelNext = true
	assert.ErrorIs(t, s.FetchUser(ctx), context.Canceled)

	snap := s.Snapshot()
	assert.True(t, snap.Loaded)
	require.NotNil(t, snap.User)
	assert.Equal(t, "Jo", snap.User.Name)
	assert.True(t, snap.IsAuthenticated())
}

func TestFetchUser_FailedRefreshClearsUser(t *testing.T) {
	fail := false
	s := newStore(t, newMapStorage(KeyToken, "abc"), fetcherFunc(func(ctx context.Context, tok string) (*UserProfile, error) {
		if fail {
			return nil, shared.ErrServiceUnavailable
		}
		return profileFor("abc")(ctx, tok)
	}))
	require.NoError(t, s.FetchUser(context.Background()))

	fail = true
	assert.ErrorIs(t, s.FetchUser(context.Background()), shared.ErrServiceUnavailable)

	snap := s.Snapshot()
	assert.True(t, snap.Loaded)
	assert.ErrorIs(t, snap.Err, shared.ErrServiceUnavailable)
	assert.Nil(t, snap.User)
}

func TestReloadAuthToken(t *testing.T) {
	t.Run("refreshed flag adopts persisted token", func(t *testing.T) {
		storage := newMapStorage(KeyToken, "new", KeyTokenRefreshed, "true")
		s := newStore(t, storage, profileFor("new"))
		s.Logout()

		require.NoError(t, s.ReloadAuthToken(context.Background(), ""))

		assert.Equal(t, "new", s.Snapshot().AuthToken)
		_, ok, _ := storage.Get(context.Background(), KeyTokenRefreshed)
		assert.False(t, ok)
	})

	t.Run("refreshed flag without token adopts none", func(t *testing.T) {
		storage := newMapStorage(KeyToken, "abc")
		s := newStore(t, storage, profileFor("abc"))
		require.NoError(t, storage.Delete(context.Background(), KeyToken))
		require.NoError(t, storage.Set(context.Background(), KeyTokenRefreshed, "true"))

		require.NoError(t, s.ReloadAuthToken(context.Background(), "abc"))
		assert.Empty(t, s.Snapshot().AuthToken)
	})

	t.Run("token without persisted copy logs out", func(t *testing.T) {
		storage := newMapStorage(KeyToken, "abc")
		s := newStore(t, storage, profileFor("abc"))
		require.NoError(t, s.FetchUser(context.Background()))
		require.NoError(t, storage.Delete(context.Background(), KeyToken))

		require.NoError(t, s.ReloadAuthToken(context.Background(), "abc"))

		snap := s.Snapshot()
		assert.Empty(t, snap.AuthToken)
		assert.Nil(t, snap.User)
	})

	t.Run("empty persisted token logs out", func(t *testing.T) {
		storage := newMapStorage(KeyToken, "abc")
		s := newStore(t, storage, profileFor("abc"))
		require.NoError(t, s.FetchUser(context.Background()))
		require.NoError(t, storage.Set(context.Background(), KeyToken, ""))

		require.NoError(t, s.ReloadAuthToken(context.Background(), "abc"))

		snap := s.Snapshot()
		assert.Empty(t, snap.AuthToken)
		assert.Nil(t, snap.User)
	})

	t.Run("persisted token present is a no-op", func(t *testing.T) {
		s := newStore(t, newMapStorage(KeyToken, "abc"), profileFor("abc"))
		require.NoError(t, s.FetchUser(context.Background()))

		require.NoError(t, s.ReloadAuthToken(context.Background(), "abc"))
		assert.NotNil(t, s.Snapshot().User)
	})
}

func TestSetTokenAndSignOut(t *testing.T) {
	storage := newMapStorage()
	s := newStore(t, storage, profileFor("jwt-1"))

	require.NoError(t, s.SetToken(context.Background(), "jwt-1"))
	assert.Equal(t, "jwt-1", s.Snapshot().AuthToken)
	require.NoError(t, s.FetchUser(context.Background()))
	assert.True(t, s.Snapshot().IsAuthenticated())

	require.NoError(t, s.SignOut(context.Background()))
	_, ok, _ := storage.Get(context.Background(), KeyToken)
	assert.False(t, ok)
	assert.False(t, s.Snapshot().IsAuthenticated())

	assert.ErrorIs(t, s.SetToken(context.Background(), ""), shared.ErrEmptyValue)
}

func TestSetToken_FirstSignIn(t *testing.T) {
	s := newStore(t, newMapStorage(), profileFor("abc"))
	assert.ErrorIs(t, s.FetchUser(context.Background()), shared.ErrNoToken)

	require.NoError(t, s.SetToken(context.Background(), "abc"))
	require.NoError(t, s.FetchUser(context.Background()))

	snap := s.Snapshot()
	assert.NoError(t, snap.Err)
	assert.True(t, snap.Loaded)
	assert.True(t, snap.IsAuthenticated())
	assert.Equal(t, "abc", snap.AuthToken)
}

func TestSubscribe_ReceivesChanges(t *testing.T) {
	s := newStore(t, newMapStorage(KeyToken, "abc"), profileFor("abc"))

	var seen []bool
	unsubscribe := s.Subscribe(func(snap Session) { seen = append(seen, snap.Loaded) })

	require.NoError(t, s.FetchUser(context.Background()))
	assert.Equal(t, []bool{false, true}, seen)

	unsubscribe()
	s.Logout()
	assert.Len(t, seen, 2)
}

func TestSnapshot_IsACopy(t *testing.T) {
	s := newStore(t, newMapStorage(KeyToken, "abc"), profileFor("abc"))
	require.NoError(t, s.FetchUser(context.Background()))

	snap := s.Snapshot()
	snap.User.Name = "changed"
	assert.Equal(t, "Jo", s.Snapshot().User.Name)
}
