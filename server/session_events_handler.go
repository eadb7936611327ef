package server

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/jrsteele09/go-adcampaign-dashboard/guards"
	"github.com/jrsteele09/go-adcampaign-dashboard/sessions"
	"github.com/rs/zerolog/log"
)

const (
	eventsPingInterval = 25 * time.Second
	eventsWriteTimeout = 5 * time.Second
)

// SessionEvent is pushed to open pages after every session change
type SessionEvent struct {
	Version       uint64 `json:"version"`
	Ready         bool   `json:"ready"`
	Authenticated bool   `json:"authenticated"`
	UserName      string `json:"userName,omitempty"`
	Home          string `json:"home"`
}

func newSessionEvent(c sessions.Change) SessionEvent {
	return SessionEvent{
		Version:       c.Version,
		Ready:         c.Session.IsReady,
		Authenticated: c.Session.IsAuthenticated,
		UserName:      c.Session.DisplayName(),
		Home:          guards.Home(c.Session),
	}
}

// SessionEventsHandler streams session changes over a WebSocket so open pages
// re-route as soon as the session ends (GET /session/events). The current
// state is sent first.
func (s *Server) SessionEventsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			log.Err(err).Msg("Session events accept failed")
			return
		}
		defer conn.CloseNow()

		// The page never sends anything, CloseRead handles control frames and
		// cancels ctx when the peer goes away.
		ctx := conn.CloseRead(r.Context())

		changes, cancel := s.state.Subscribe()
		defer cancel()

		ticker := time.NewTicker(eventsPingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				conn.Close(websocket.StatusNormalClosure, "")
				return
			case c := <-changes:
				if err := writeSessionEvent(ctx, conn, newSessionEvent(c)); err != nil {
					log.Debug().Err(err).Msg("Session events write failed")
					return
				}
			case <-ticker.C:
				pingCtx, cancelPing := context.WithTimeout(ctx, eventsWriteTimeout)
				err := conn.Ping(pingCtx)
				cancelPing()
				if err != nil {
					log.Debug().Err(err).Msg("Session events heartbeat failed")
					return
				}
			}
		}
	}
}

func writeSessionEvent(ctx context.Context, conn *websocket.Conn, ev SessionEvent) error {
	ctx, cancel := context.WithTimeout(ctx, eventsWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, ev)
}
