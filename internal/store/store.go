// Package store persists the scheduler's ledgers in Postgres. Writes that
// enforce a cross-entity invariant are guarded at the statement level
// (conditional UPDATE / DELETE, unique constraints) so a lost race surfaces
// as a typed error instead of corrupting a count.
package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"vaccine-scheduler/internal/scheduler"
)

type Store struct {
	pool *pgxpool.Pool
}

var _ scheduler.Store = (*Store)(nil)

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// uniqueViolation reports whether err is a Postgres unique-constraint error,
// optionally on one named constraint.
func uniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
