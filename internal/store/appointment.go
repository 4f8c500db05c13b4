package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"vaccine-scheduler/internal/model"
)

// CreateAppointment inserts a confirmed booking. An id collision maps to
// ErrIDTaken so the coordinator can redraw; a second booking for the same
// patient and day trips the table constraint and maps to ErrDuplicateBooking.
func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO appointments (id, caregiver_username, patient_username, vaccine_name, day)
		 VALUES ($1,$2,$3,$4,$5)`,
		a.ID, a.Caregiver, a.Patient, a.Vaccine, a.Day,
	)
	switch {
	case uniqueViolation(err, "appointments_pkey"):
		return model.ErrIDTaken
	case uniqueViolation(err, "appointments_patient_day_key"):
		return model.ErrDuplicateBooking
	}
	return err
}

func (s *Store) AppointmentIDInUse(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM appointments WHERE id = $1)`, id,
	).Scan(&exists)
	return exists, err
}

// FindForPatient returns the appointment only if it belongs to this patient.
// A wrong id and someone else's id are indistinguishable to the caller.
func (s *Store) FindForPatient(ctx context.Context, patient string, id int) (*model.Appointment, error) {
	return s.findAppointment(ctx, "patient_username", patient, id)
}

// FindForCaregiver is the caregiver-side counterpart of FindForPatient.
func (s *Store) FindForCaregiver(ctx context.Context, caregiver string, id int) (*model.Appointment, error) {
	return s.findAppointment(ctx, "caregiver_username", caregiver, id)
}

func (s *Store) findAppointment(ctx context.Context, ownerCol, owner string, id int) (*model.Appointment, error) {
	a := &model.Appointment{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, caregiver_username, patient_username, vaccine_name, day, created_at
		 FROM appointments WHERE `+ownerCol+` = $1 AND id = $2`,
		owner, id,
	).Scan(&a.ID, &a.Caregiver, &a.Patient, &a.Vaccine, &a.Day, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Store) PatientHasOnDay(ctx context.Context, patient string, day time.Time) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM appointments WHERE patient_username = $1 AND day = $2)`,
		patient, day,
	).Scan(&exists)
	return exists, err
}

func (s *Store) CaregiverBusyOn(ctx context.Context, caregiver string, day time.Time) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM appointments WHERE caregiver_username = $1 AND day = $2)`,
		caregiver, day,
	).Scan(&exists)
	return exists, err
}

func (s *Store) ListForPatient(ctx context.Context, patient string) ([]model.Appointment, error) {
	return s.listAppointments(ctx, "patient_username", patient)
}

func (s *Store) ListForCaregiver(ctx context.Context, caregiver string) ([]model.Appointment, error) {
	return s.listAppointments(ctx, "caregiver_username", caregiver)
}

func (s *Store) listAppointments(ctx context.Context, ownerCol, owner string) ([]model.Appointment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, caregiver_username, patient_username, vaccine_name, day, created_at
		 FROM appointments WHERE `+ownerCol+` = $1`,
		owner,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Appointment
	for rows.Next() {
		var a model.Appointment
		if err := rows.Scan(&a.ID, &a.Caregiver, &a.Patient, &a.Vaccine, &a.Day, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) DeleteAppointment(ctx context.Context, id int) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	return err
}
