package store

import (
	"context"
	"time"

	"vaccine-scheduler/internal/model"
)

// Publish opens a caregiver's slot. Publishing an already-open slot is a
// no-op: a caregiver is bookable at most once per day, so a repeat publish
// must not double their weight in caregiver selection.
func (s *Store) Publish(ctx context.Context, slot model.Slot) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO availabilities (day, caregiver_username) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		slot.Day, slot.Caregiver,
	)
	return err
}

// Withdraw removes a caregiver's open slot, if present.
func (s *Store) Withdraw(ctx context.Context, slot model.Slot) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM availabilities WHERE day = $1 AND caregiver_username = $2`,
		slot.Day, slot.Caregiver,
	)
	return err
}

// Consume claims a slot for a booking. Deleting and checking the row count
// in one statement means exactly one of two racing bookings wins; the loser
// sees ErrSlotTaken and can pick another caregiver.
func (s *Store) Consume(ctx context.Context, slot model.Slot) error {
	ct, err := s.pool.Exec(ctx,
		`DELETE FROM availabilities WHERE day = $1 AND caregiver_username = $2`,
		slot.Day, slot.Caregiver,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return model.ErrSlotTaken
	}
	return nil
}

// Caregivers lists the usernames with an open slot on a day.
func (s *Store) Caregivers(ctx context.Context, day time.Time) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT caregiver_username FROM availabilities WHERE day = $1 ORDER BY caregiver_username`,
		day,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}
