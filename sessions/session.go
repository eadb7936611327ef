package sessions

// Session is a point-in-time copy of the process-wide authentication state.
// Values handed out by State are copies, mutating them has no effect on State.
type Session struct {
	AccessToken     string
	RefreshToken    string // only used by the refresh coordinator, never persisted
	IsAuthenticated bool
	User            *User
	IsReady         bool // false only until the first hydration completes
}

// Change is delivered to subscribers after every mutation. Version increases
// by one per mutation.
type Change struct {
	Version uint64
	Session Session
}

// LoginPayload is the data block of a successful login or register response
type LoginPayload struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	User         *User  `json:"user,omitempty"`
}

// ProfileUpdate carries the profile fields to merge. Nil fields keep their current value.
type ProfileUpdate struct {
	ID    *string
	Name  *string
	Email *string
}

func (s Session) clone() Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// HasUser reports whether a profile snapshot is present
func (s Session) HasUser() bool {
	return s.User != nil
}

// DisplayName is the name shown in the header, falling back to the email
func (s Session) DisplayName() string {
	if s.User == nil {
		return ""
	}
	if s.User.Name != "" {
		return s.User.Name
	}
	return s.User.Email
}
