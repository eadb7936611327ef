package sessions

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-adcampaign-dashboard/sessions/store"
	"github.com/rs/zerolog/log"
)

// syncer mirrors the session into the store: non-empty values are written,
// empty ones deleted. It works from a coalescing subscription, so bursts of
// mutations may collapse into a single write of the newest state.
type syncer struct {
	state *State
	repo  store.Repo

	mu        sync.Mutex
	persisted uint64
	changed   chan struct{}
}

func newSyncer(state *State, repo store.Repo) *syncer {
	return &syncer{
		state:   state,
		repo:    repo,
		changed: make(chan struct{}),
	}
}

func (s *syncer) run(ctx context.Context) error {
	changes, cancel := s.state.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c := <-changes:
			s.persist(ctx, c)
		}
	}
}

func (s *syncer) persist(ctx context.Context, c Change) {
	// Before hydration the in-memory session is empty by construction and must
	// not overwrite what is on disk.
	if c.Session.IsReady {
		s.write(ctx, store.KeyAccessToken, c.Session.AccessToken)
		s.writeUser(ctx, c.Session.User)
	}

	s.mu.Lock()
	if c.Version > s.persisted {
		s.persisted = c.Version
	}
	close(s.changed)
	s.changed = make(chan struct{})
	s.mu.Unlock()
}

func (s *syncer) write(ctx context.Context, key, value string) {
	var err error
	if value == "" {
		err = s.repo.Delete(ctx, key)
	} else {
		err = s.repo.Set(ctx, key, value)
	}
	if err != nil {
		log.Err(err).Str("key", key).Msg("Failed to sync session store")
	}
}

func (s *syncer) writeUser(ctx context.Context, u *User) {
	if u == nil {
		s.write(ctx, store.KeyUser, "")
		return
	}
	encoded, err := EncodeUser(u)
	if err != nil {
		log.Err(err).Msg("Failed to encode user, removing it from session store")
		encoded = ""
	}
	s.write(ctx, store.KeyUser, encoded)
}

// flush blocks until the version has been persisted
func (s *syncer) flush(ctx context.Context, version uint64) error {
	for {
		s.mu.Lock()
		if s.persisted >= version {
			s.mu.Unlock()
			return nil
		}
		wait := s.changed
		s.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
