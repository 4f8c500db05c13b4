// Package session holds the single current login identity. It is an explicit
// value passed into every scheduler call rather than process-global state,
// and it is never persisted: a restart always starts logged out.
package session

import "vaccine-scheduler/internal/model"

// Identity is a logged-in patient or caregiver.
type Identity struct {
	Username string
	Role     model.Role
}

// Session holds at most one identity at a time. Patient and caregiver logins
// are mutually exclusive by construction.
type Session struct {
	current *Identity
}

func New() *Session {
	return &Session{}
}

// Current returns the logged-in identity, if any.
func (s *Session) Current() (Identity, bool) {
	if s.current == nil {
		return Identity{}, false
	}
	return *s.current, true
}

// Login sets the session identity. It fails if anyone is already logged in,
// regardless of role.
func (s *Session) Login(username string, role model.Role) error {
	if s.current != nil {
		return model.ErrAlreadyLoggedIn
	}
	s.current = &Identity{Username: username, Role: role}
	return nil
}

// Logout clears the session identity.
func (s *Session) Logout() error {
	if s.current == nil {
		return model.ErrNotLoggedIn
	}
	s.current = nil
	return nil
}
