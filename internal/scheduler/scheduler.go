// Package scheduler is the booking coordinator: it orchestrates the account,
// inventory, availability and appointment ledgers and enforces the rules that
// span them. Every operation takes the session explicitly; there is no
// process-wide login state.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vaccine-scheduler/internal/auth"
	"vaccine-scheduler/internal/model"
	"vaccine-scheduler/internal/session"
)

// DateLayout is the wire format for calendar dates (MM-DD-YYYY).
const DateLayout = "01-02-2006"

// Store is everything the coordinator needs from persistent storage. The pgx
// store implements it; tests substitute in-memory ledgers.
type Store interface {
	// identity store
	CreatePatient(ctx context.Context, a *model.Account) error
	CreateCaregiver(ctx context.Context, a *model.Account) error
	Patient(ctx context.Context, username string) (*model.Account, error)
	Caregiver(ctx context.Context, username string) (*model.Account, error)

	// inventory ledger
	Vaccine(ctx context.Context, name string) (*model.Vaccine, error)
	Vaccines(ctx context.Context) ([]model.Vaccine, error)
	AddDoses(ctx context.Context, name string, n int) error
	TakeDose(ctx context.Context, name string) error
	ReturnDose(ctx context.Context, name string) error

	// availability board
	Publish(ctx context.Context, slot model.Slot) error
	Withdraw(ctx context.Context, slot model.Slot) error
	Consume(ctx context.Context, slot model.Slot) error
	Caregivers(ctx context.Context, day time.Time) ([]string, error)

	// appointment ledger
	CreateAppointment(ctx context.Context, a *model.Appointment) error
	AppointmentIDInUse(ctx context.Context, id int) (bool, error)
	FindForPatient(ctx context.Context, patient string, id int) (*model.Appointment, error)
	FindForCaregiver(ctx context.Context, caregiver string, id int) (*model.Appointment, error)
	PatientHasOnDay(ctx context.Context, patient string, day time.Time) (bool, error)
	CaregiverBusyOn(ctx context.Context, caregiver string, day time.Time) (bool, error)
	ListForPatient(ctx context.Context, patient string) ([]model.Appointment, error)
	ListForCaregiver(ctx context.Context, caregiver string) ([]model.Appointment, error)
	DeleteAppointment(ctx context.Context, id int) error
}

type Scheduler struct {
	store Store
	log   *zap.Logger
}

func New(st Store, log *zap.Logger) *Scheduler {
	return &Scheduler{store: st, log: log}
}

// ParseDate parses an MM-DD-YYYY date string.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, model.ErrInvalidInput
	}
	return d, nil
}

// Register creates a patient or caregiver account.
func (s *Scheduler) Register(ctx context.Context, role model.Role, username, password string) error {
	if username == "" || password == "" {
		return model.ErrInvalidInput
	}
	salt, err := auth.GenerateSalt()
	if err != nil {
		return err
	}
	a := &model.Account{
		ID:       uuid.New().String(),
		Username: username,
		Salt:     salt,
		Hash:     auth.HashPassword(password, salt),
		Role:     role,
	}
	switch role {
	case model.RolePatient:
		err = s.store.CreatePatient(ctx, a)
	case model.RoleCaregiver:
		err = s.store.CreateCaregiver(ctx, a)
	default:
		return model.ErrInvalidInput
	}
	if err != nil {
		return err
	}
	s.log.Info("account created", zap.String("username", username), zap.String("role", string(role)))
	return nil
}

// Login verifies credentials and binds the identity to the session. A login
// while anyone is logged in fails regardless of role.
func (s *Scheduler) Login(ctx context.Context, sess *session.Session, role model.Role, username, password string) error {
	if _, ok := sess.Current(); ok {
		return model.ErrAlreadyLoggedIn
	}

	var a *model.Account
	var err error
	switch role {
	case model.RolePatient:
		a, err = s.store.Patient(ctx, username)
	case model.RoleCaregiver:
		a, err = s.store.Caregiver(ctx, username)
	default:
		return model.ErrInvalidInput
	}
	if errors.Is(err, model.ErrNotFound) {
		return model.ErrBadCredentials
	}
	if err != nil {
		return err
	}
	if !auth.Verify(password, a.Salt, a.Hash) {
		return model.ErrBadCredentials
	}

	if err := sess.Login(username, role); err != nil {
		return err
	}
	s.log.Info("login", zap.String("username", username), zap.String("role", string(role)))
	return nil
}

// Logout clears the session identity.
func (s *Scheduler) Logout(sess *session.Session) error {
	ident, ok := sess.Current()
	if err := sess.Logout(); err != nil {
		return err
	}
	if ok {
		s.log.Info("logout", zap.String("username", ident.Username))
	}
	return nil
}

// Search returns the caregivers with an open slot on the given day together
// with the full vaccine inventory. Any logged-in identity may search.
func (s *Scheduler) Search(ctx context.Context, sess *session.Session, dateStr string) ([]string, []model.Vaccine, error) {
	if _, ok := sess.Current(); !ok {
		return nil, nil, model.ErrNotLoggedIn
	}
	day, err := ParseDate(dateStr)
	if err != nil {
		return nil, nil, err
	}

	caregivers, err := s.store.Caregivers(ctx, day)
	if err != nil {
		return nil, nil, err
	}
	if len(caregivers) == 0 {
		return nil, nil, model.ErrNoAvailability
	}
	vaccines, err := s.store.Vaccines(ctx)
	if err != nil {
		return nil, nil, err
	}
	return caregivers, vaccines, nil
}

// UploadAvailability opens the calling caregiver's slot on a day. It is
// rejected if the caregiver already has an appointment that day, and it is a
// no-op if the slot is already open.
func (s *Scheduler) UploadAvailability(ctx context.Context, sess *session.Session, dateStr string) error {
	ident, ok := sess.Current()
	if !ok || ident.Role != model.RoleCaregiver {
		return model.ErrNotAuthorized
	}
	day, err := ParseDate(dateStr)
	if err != nil {
		return err
	}

	busy, err := s.store.CaregiverBusyOn(ctx, ident.Username, day)
	if err != nil {
		return err
	}
	if busy {
		return model.ErrDuplicateBooking
	}
	if err := s.store.Publish(ctx, model.Slot{Day: day, Caregiver: ident.Username}); err != nil {
		return err
	}
	s.log.Info("availability published",
		zap.String("caregiver", ident.Username), zap.Time("day", day))
	return nil
}

// AddDoses restocks a vaccine, creating it on first sight.
func (s *Scheduler) AddDoses(ctx context.Context, sess *session.Session, name string, n int) error {
	ident, ok := sess.Current()
	if !ok || ident.Role != model.RoleCaregiver {
		return model.ErrNotAuthorized
	}
	if name == "" || n < 1 {
		return model.ErrInvalidInput
	}
	if err := s.store.AddDoses(ctx, name, n); err != nil {
		return err
	}
	s.log.Info("doses added", zap.String("vaccine", name), zap.Int("count", n))
	return nil
}

// Appointments lists the caller's bookings.
func (s *Scheduler) Appointments(ctx context.Context, sess *session.Session) ([]model.Appointment, error) {
	ident, ok := sess.Current()
	if !ok {
		return nil, model.ErrNotLoggedIn
	}
	if ident.Role == model.RoleCaregiver {
		return s.store.ListForCaregiver(ctx, ident.Username)
	}
	return s.store.ListForPatient(ctx, ident.Username)
}
