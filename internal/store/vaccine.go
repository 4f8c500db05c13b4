package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"vaccine-scheduler/internal/model"
)

func (s *Store) Vaccine(ctx context.Context, name string) (*model.Vaccine, error) {
	v := &model.Vaccine{}
	err := s.pool.QueryRow(ctx,
		`SELECT name, doses FROM vaccines WHERE name = $1`, name,
	).Scan(&v.Name, &v.Doses)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrUnknownVaccine
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Store) Vaccines(ctx context.Context) ([]model.Vaccine, error) {
	rows, err := s.pool.Query(ctx, `SELECT name, doses FROM vaccines ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Vaccine
	for rows.Next() {
		var v model.Vaccine
		if err := rows.Scan(&v.Name, &v.Doses); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// AddDoses restocks a vaccine, creating the record on first sight. A single
// upsert keeps create-or-increment atomic.
func (s *Store) AddDoses(ctx context.Context, name string, n int) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO vaccines (name, doses) VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET doses = vaccines.doses + EXCLUDED.doses`,
		name, n,
	)
	return err
}

// TakeDose consumes one dose. The doses >= 1 predicate makes the decrement a
// compare-and-swap: two concurrent takes of the last dose cannot both
// succeed, and the count never goes negative.
func (s *Store) TakeDose(ctx context.Context, name string) error {
	ct, err := s.pool.Exec(ctx,
		`UPDATE vaccines SET doses = doses - 1 WHERE name = $1 AND doses >= 1`, name,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() > 0 {
		return nil
	}
	// distinguish an empty shelf from a name we have never seen
	if _, err := s.Vaccine(ctx, name); err != nil {
		return err
	}
	return model.ErrOutOfStock
}

// ReturnDose puts one dose back after a cancellation.
func (s *Store) ReturnDose(ctx context.Context, name string) error {
	ct, err := s.pool.Exec(ctx,
		`UPDATE vaccines SET doses = doses + 1 WHERE name = $1`, name,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return model.ErrUnknownVaccine
	}
	return nil
}
