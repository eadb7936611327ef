package guards

import (
	"github.com/jrsteele09/go-adcampaign-dashboard/sessions"
)

// Kind is the access rule of a group of routes
type Kind int

const (
	// Guest routes are for visitors without a session (login, register, ...)
	Guest Kind = iota
	// Protected routes need an authenticated session
	Protected
)

func (k Kind) String() string {
	switch k {
	case Guest:
		return "guest"
	case Protected:
		return "protected"
	default:
		return "unknown"
	}
}

// Action is what the router should do with a navigation
type Action int

const (
	Allow Action = iota
	Redirect
	Wait
)

// Entry points the guards redirect to
const (
	LoginPath     = "/login"
	CampaignsPath = "/adcampaigns"
)

// Decision is the outcome of a guard
type Decision struct {
	Action Action
	Target string
}

// Evaluate decides a navigation against the session snapshot. Nothing is
// decided before hydration, so a returning user is never bounced to the
// login page on startup.
func Evaluate(kind Kind, s sessions.Session) Decision {
	if !s.IsReady {
		return Decision{Action: Wait}
	}

	switch kind {
	case Guest:
		if s.IsAuthenticated {
			return Decision{Action: Redirect, Target: CampaignsPath}
		}
	case Protected:
		if !s.IsAuthenticated {
			return Decision{Action: Redirect, Target: LoginPath}
		}
	}
	return Decision{Action: Allow}
}

// Home is where a session of this state belongs
func Home(s sessions.Session) string {
	if s.IsAuthenticated {
		return CampaignsPath
	}
	return LoginPath
}
