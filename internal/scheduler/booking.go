package scheduler

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"vaccine-scheduler/internal/model"
	"vaccine-scheduler/internal/session"
)

const (
	idMin = 1000
	idMax = 9999

	// draws before giving up on a free appointment id; only reachable when
	// the 9000-value space is nearly saturated
	maxIDDraws = 100
)

// Reserve books one vaccine dose for the logged-in patient on the given day
// with a uniformly random available caregiver. The three writes (claim slot,
// take dose, insert appointment) are not one transaction; each is guarded at
// the statement level and an earlier write is compensated when a later one
// fails. A crash between writes can still leave a claimed slot or a taken
// dose behind — that window is a documented limitation, not handled here.
func (s *Scheduler) Reserve(ctx context.Context, sess *session.Session, dateStr, vaccineName string) (*model.Appointment, error) {
	ident, ok := sess.Current()
	if !ok || ident.Role != model.RolePatient {
		return nil, model.ErrNotAuthorized
	}
	day, err := ParseDate(dateStr)
	if err != nil {
		return nil, err
	}

	vac, err := s.store.Vaccine(ctx, vaccineName)
	if err != nil {
		return nil, err
	}
	if vac.Doses == 0 {
		return nil, model.ErrOutOfStock
	}

	candidates, err := s.store.Caregivers(ctx, day)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, model.ErrNoAvailability
	}

	booked, err := s.store.PatientHasOnDay(ctx, ident.Username, day)
	if err != nil {
		return nil, err
	}
	if booked {
		return nil, model.ErrDuplicateBooking
	}

	slot, err := s.claimSlot(ctx, day, candidates)
	if err != nil {
		return nil, err
	}

	if err := s.store.TakeDose(ctx, vaccineName); err != nil {
		s.compensate(ctx, "republish slot", func(ctx context.Context) error {
			return s.store.Publish(ctx, slot)
		})
		return nil, err
	}

	appt := &model.Appointment{
		Caregiver: slot.Caregiver,
		Patient:   ident.Username,
		Vaccine:   vaccineName,
		Day:       day,
	}
	if err := s.createWithFreshID(ctx, appt); err != nil {
		s.compensate(ctx, "return dose", func(ctx context.Context) error {
			return s.store.ReturnDose(ctx, vaccineName)
		})
		s.compensate(ctx, "republish slot", func(ctx context.Context) error {
			return s.store.Publish(ctx, slot)
		})
		return nil, err
	}

	s.log.Info("reservation created",
		zap.Int("id", appt.ID),
		zap.String("patient", ident.Username),
		zap.String("caregiver", slot.Caregiver),
		zap.String("vaccine", vaccineName),
		zap.Time("day", day))
	return appt, nil
}

// Cancel deletes an appointment owned by the caller (as patient or as the
// assigned caregiver), restoring the caregiver's slot and the vaccine dose.
func (s *Scheduler) Cancel(ctx context.Context, sess *session.Session, id int) error {
	ident, ok := sess.Current()
	if !ok {
		return model.ErrNotLoggedIn
	}

	var appt *model.Appointment
	var err error
	if ident.Role == model.RoleCaregiver {
		appt, err = s.store.FindForCaregiver(ctx, ident.Username, id)
	} else {
		appt, err = s.store.FindForPatient(ctx, ident.Username, id)
	}
	if err != nil {
		return err
	}

	slot := model.Slot{Day: appt.Day, Caregiver: appt.Caregiver}
	if err := s.store.Publish(ctx, slot); err != nil {
		return err
	}
	if err := s.store.ReturnDose(ctx, appt.Vaccine); err != nil {
		s.compensate(ctx, "withdraw slot", func(ctx context.Context) error {
			return s.store.Withdraw(ctx, slot)
		})
		return err
	}
	if err := s.store.DeleteAppointment(ctx, appt.ID); err != nil {
		s.compensate(ctx, "take dose back", func(ctx context.Context) error {
			return s.store.TakeDose(ctx, appt.Vaccine)
		})
		s.compensate(ctx, "withdraw slot", func(ctx context.Context) error {
			return s.store.Withdraw(ctx, slot)
		})
		return err
	}

	s.log.Info("appointment canceled",
		zap.Int("id", appt.ID),
		zap.String("by", ident.Username),
		zap.String("role", string(ident.Role)))
	return nil
}

// claimSlot picks a caregiver uniformly at random from candidates and claims
// their slot. Losing the claim race for one caregiver falls through to the
// remaining candidates.
func (s *Scheduler) claimSlot(ctx context.Context, day time.Time, candidates []string) (model.Slot, error) {
	for len(candidates) > 0 {
		i := rand.IntN(len(candidates))
		slot := model.Slot{Day: day, Caregiver: candidates[i]}

		err := s.store.Consume(ctx, slot)
		if err == nil {
			return slot, nil
		}
		if !errors.Is(err, model.ErrSlotTaken) {
			return model.Slot{}, err
		}
		candidates = append(candidates[:i], candidates[i+1:]...)
	}
	return model.Slot{}, model.ErrNoAvailability
}

// createWithFreshID inserts the appointment under a random 4-digit id,
// redrawing on collision. The in-use pre-check keeps redraws cheap; the
// insert itself is what actually guarantees uniqueness.
func (s *Scheduler) createWithFreshID(ctx context.Context, appt *model.Appointment) error {
	for range maxIDDraws {
		appt.ID = idMin + rand.IntN(idMax-idMin+1)

		inUse, err := s.store.AppointmentIDInUse(ctx, appt.ID)
		if err != nil {
			return err
		}
		if inUse {
			continue
		}

		err = s.store.CreateAppointment(ctx, appt)
		if errors.Is(err, model.ErrIDTaken) {
			continue
		}
		return err
	}
	return model.ErrIDSpaceExhausted
}

// compensate undoes an earlier ledger write after a later one failed. If the
// compensation itself fails the ledgers are inconsistent; all we can do is
// say so loudly.
func (s *Scheduler) compensate(ctx context.Context, action string, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		s.log.Error("compensation failed, ledgers may be inconsistent",
			zap.String("action", action), zap.Error(err))
	}
}
