package session_test

import (
	"errors"
	"testing"

	"vaccine-scheduler/internal/model"
	"vaccine-scheduler/internal/session"
)

func TestLoginLogout(t *testing.T) {
	s := session.New()

	if _, ok := s.Current(); ok {
		t.Fatal("fresh session should be empty")
	}
	if err := s.Logout(); !errors.Is(err, model.ErrNotLoggedIn) {
		t.Errorf("logout on empty session: got %v", err)
	}

	if err := s.Login("p1", model.RolePatient); err != nil {
		t.Fatalf("login: %v", err)
	}
	ident, ok := s.Current()
	if !ok || ident.Username != "p1" || ident.Role != model.RolePatient {
		t.Errorf("current = %+v, %v", ident, ok)
	}

	// second login fails regardless of role
	if err := s.Login("cg1", model.RoleCaregiver); !errors.Is(err, model.ErrAlreadyLoggedIn) {
		t.Errorf("expected ErrAlreadyLoggedIn, got %v", err)
	}
	if err := s.Login("p2", model.RolePatient); !errors.Is(err, model.ErrAlreadyLoggedIn) {
		t.Errorf("expected ErrAlreadyLoggedIn, got %v", err)
	}

	if err := s.Logout(); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok := s.Current(); ok {
		t.Error("session should be empty after logout")
	}
	if err := s.Login("cg1", model.RoleCaregiver); err != nil {
		t.Errorf("login after logout: %v", err)
	}
}
