package sessions

import (
	"context"
	"fmt"
	"sync"

	"github.com/jrsteele09/go-adcampaign-dashboard/internal/errors"
	"github.com/jrsteele09/go-adcampaign-dashboard/internal/utils"
	"github.com/jrsteele09/go-adcampaign-dashboard/sessions/store"
	"github.com/rs/zerolog/log"
)

// LogoutNotifier tells the API that the session is ending
type LogoutNotifier interface {
	NotifyLogout(ctx context.Context) error
}

// NotifierFunc adapts a function to LogoutNotifier
type NotifierFunc func(ctx context.Context) error

func (f NotifierFunc) NotifyLogout(ctx context.Context) error {
	return f(ctx)
}

// Option configures a State
type Option func(*State)

// WithLogoutNotifier sets the API call made at the start of Logout
func WithLogoutNotifier(n LogoutNotifier) Option {
	return func(s *State) {
		s.notifier = n
	}
}

// State owns the process-wide Session. Hydrate, Login, Logout, UpdateProfile and
// ApplyRefresh are the only mutators; every mutation is published to subscribers
// and persisted to the store by the syncer started with Run.
type State struct {
	mu       sync.RWMutex
	session  Session
	version  uint64
	// logins counts Login and Logout calls so hydration can tell whether
	// its store reads are still current.
	logins   uint64
	subs     map[int]chan Change
	nextSub  int
	ready    chan struct{}
	hydrated sync.Once

	repo     store.Repo
	notifier LogoutNotifier
	persist  *syncer
}

// New creates an empty, not yet ready, State backed by repo
func New(repo store.Repo, opts ...Option) *State {
	s := &State{
		subs:  make(map[int]chan Change),
		ready: make(chan struct{}),
		repo:  repo,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.persist = newSyncer(s, repo)
	return s
}

// Snapshot returns a copy of the current session
func (s *State) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.clone()
}

// AccessToken returns the current access token, empty when there is none
func (s *State) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.AccessToken
}

// RefreshToken returns the current refresh token, empty when there is none
func (s *State) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.RefreshToken
}

// Version returns the number of mutations applied so far
func (s *State) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Ready is closed once hydration has completed
func (s *State) Ready() <-chan struct{} {
	return s.ready
}

// WaitReady blocks until hydration completes or ctx ends
func (s *State) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe returns a channel receiving the latest Change after every mutation.
// The current state is delivered immediately. A slow reader only misses
// intermediate states, the newest one is always waiting in the channel.
func (s *State) Subscribe() (<-chan Change, func()) {
	ch := make(chan Change, 1)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- Change{Version: s.version, Session: s.session.clone()}
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
	return ch, cancel
}

// Hydrate loads the persisted token and profile. It runs once, later calls are
// no-ops. It always finishes with the session marked ready.
func (s *State) Hydrate(ctx context.Context) {
	s.hydrated.Do(func() {
		s.hydrate(ctx)
	})
}

func (s *State) hydrate(ctx context.Context) {
	s.mu.RLock()
	logins := s.logins
	s.mu.RUnlock()

	token := s.readStored(ctx, store.KeyAccessToken)
	rawUser := s.readStored(ctx, store.KeyUser)

	var user *User
	if rawUser != "" {
		u, err := DecodeUser(rawUser)
		if err != nil {
			log.Warn().Err(err).Msg("Corrupted or invalid user data in session store, clearing")
			if err := s.repo.Delete(ctx, store.KeyUser); err != nil {
				log.Err(err).Msg("Failed to remove invalid user from session store")
			}
		} else {
			user = u
		}
	}

	s.mu.Lock()
	// A login or logout that landed during the store reads wins over stored values.
	if token != "" && s.logins == logins && s.session.AccessToken == "" {
		s.session.AccessToken = token
		s.session.IsAuthenticated = true
		s.session.User = user
	}
	s.session.IsReady = true
	authenticated := s.session.IsAuthenticated
	s.publishLocked()
	s.mu.Unlock()

	close(s.ready)
	log.Info().Bool("authenticated", authenticated).Bool("user", user != nil).Msg("Session hydrated")
}

// readStored returns the stored value for key, or "" when it is absent or unreadable.
// Values that can no longer be opened are removed.
func (s *State) readStored(ctx context.Context, key string) string {
	v, err := s.repo.Get(ctx, key)
	switch {
	case err == nil:
		return v
	case errors.Is(err, errors.ErrKeyNotFound):
		return ""
	case errors.Is(err, errors.ErrSealedValue):
		log.Warn().Err(err).Str("key", key).Msg("Discarding unreadable session value")
		if err := s.repo.Delete(ctx, key); err != nil {
			log.Err(err).Str("key", key).Msg("Failed to remove unreadable session value")
		}
		return ""
	default:
		log.Err(err).Str("key", key).Msg("Failed to read session store")
		return ""
	}
}

// Login establishes a session from a successful login or register response
func (s *State) Login(p LoginPayload) error {
	if p.AccessToken == "" {
		return errors.ErrMissingAccessToken
	}

	var user *User
	if p.User != nil {
		u := *p.User
		user = &u
	}

	s.mu.Lock()
	s.logins++
	s.session = Session{
		AccessToken:     p.AccessToken,
		RefreshToken:    p.RefreshToken,
		IsAuthenticated: true,
		User:            user,
		IsReady:         true,
	}
	s.publishLocked()
	s.mu.Unlock()
	return nil
}

// Logout notifies the API (best effort) and then always clears the local session.
// It never fails; notification errors are logged.
func (s *State) Logout(ctx context.Context) {
	s.notifyLogout(ctx)

	s.mu.Lock()
	s.logins++
	s.session = Session{IsReady: true}
	s.publishLocked()
	s.mu.Unlock()

	// Clearing must not depend on the caller still waiting.
	clearCtx := context.WithoutCancel(ctx)
	for _, key := range []string{store.KeyAccessToken, store.KeyUser} {
		if err := s.repo.Delete(clearCtx, key); err != nil {
			log.Err(err).Str("key", key).Msg("Failed to clear session store on logout")
		}
	}
}

func (s *State) notifyLogout(ctx context.Context) {
	if s.notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Logout notification panicked")
		}
	}()
	if err := s.notifier.NotifyLogout(ctx); err != nil {
		log.Warn().Err(err).Msg("Logout failed")
	}
}

// UpdateProfile merges the given fields into the profile. Authentication is untouched.
// It is a no-op when signed out, and without a current profile only an update
// carrying an ID creates one.
func (s *State) UpdateProfile(u ProfileUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.session.IsAuthenticated {
		return
	}
	var prev User
	if s.session.User != nil {
		prev = *s.session.User
	} else if u.ID == nil {
		return
	}

	next := User{
		ID:    UserID(utils.Coalesce(u.ID, string(prev.ID))),
		Name:  utils.Coalesce(u.Name, prev.Name),
		Email: utils.Coalesce(u.Email, prev.Email),
	}
	s.session.User = &next
	s.publishLocked()
}

// ApplyRefresh swaps in tokens from a successful refresh. The refresh token is
// only replaced when the API rotated it.
func (s *State) ApplyRefresh(accessToken, refreshToken string) error {
	if accessToken == "" {
		return errors.ErrMissingAccessToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.session.IsAuthenticated {
		return fmt.Errorf("apply refresh: %w", errors.ErrNotAuthenticated)
	}
	s.session.AccessToken = accessToken
	if refreshToken != "" {
		s.session.RefreshToken = refreshToken
	}
	s.publishLocked()
	return nil
}

// publishLocked bumps the version and hands the new state to every subscriber.
// Must be called with mu held for writing.
func (s *State) publishLocked() {
	s.version++
	change := Change{Version: s.version, Session: s.session.clone()}
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- change
	}
}

// Run keeps the store in step with the session until ctx ends
func (s *State) Run(ctx context.Context) error {
	return s.persist.run(ctx)
}

// Flush waits until every mutation made so far has been written to the store
func (s *State) Flush(ctx context.Context) error {
	return s.persist.flush(ctx, s.Version())
}
