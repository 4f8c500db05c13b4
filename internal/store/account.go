package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"vaccine-scheduler/internal/model"
)

// Patients and caregivers live in separate tables; the schema is an external
// contract shared with other tooling, so the split is kept as-is.

func (s *Store) CreatePatient(ctx context.Context, a *model.Account) error {
	return s.createAccount(ctx, "patients", a)
}

func (s *Store) CreateCaregiver(ctx context.Context, a *model.Account) error {
	return s.createAccount(ctx, "caregivers", a)
}

func (s *Store) createAccount(ctx context.Context, table string, a *model.Account) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO `+table+` (id, username, salt, hash) VALUES ($1,$2,$3,$4)`,
		a.ID, a.Username, a.Salt, a.Hash,
	)
	if uniqueViolation(err, "") {
		return model.ErrUsernameTaken
	}
	return err
}

func (s *Store) Patient(ctx context.Context, username string) (*model.Account, error) {
	return s.account(ctx, "patients", model.RolePatient, username)
}

func (s *Store) Caregiver(ctx context.Context, username string) (*model.Account, error) {
	return s.account(ctx, "caregivers", model.RoleCaregiver, username)
}

func (s *Store) account(ctx context.Context, table string, role model.Role, username string) (*model.Account, error) {
	a := &model.Account{Role: role}
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, salt, hash, created_at FROM `+table+` WHERE username = $1`,
		username,
	).Scan(&a.ID, &a.Username, &a.Salt, &a.Hash, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}
