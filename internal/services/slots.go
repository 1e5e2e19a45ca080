package services

import (
	"time"

	"github.com/Somnath16/MyHomeoHealth-sub000/internal/storage"
)

// SlotFinder computes the next bookable appointment slot for a doctor.
//
// The search is a greedy scan over the next 7 calendar days (today included):
// for each day with an available schedule entry, the candidate is that day's
// start hour with minutes truncated to zero. The first candidate that is
// strictly in the future and not already booked wins. The flow only ever asks
// for "the next" slot, so nothing fancier than this is needed.
type SlotFinder struct {
	store storage.Store
}

// SlotLookAheadDays is the search window, in calendar days including today.
const SlotLookAheadDays = 7

// NewSlotFinder creates a new slot finder
func NewSlotFinder(store storage.Store) *SlotFinder {
	return &SlotFinder{store: store}
}

// FindNextSlot returns the next free whole-hour slot for the doctor, or nil
// when no day in the look-ahead window yields one.
func (f *SlotFinder) FindNextSlot(doctorID string, now time.Time) (*time.Time, error) {
	for offset := 0; offset < SlotLookAheadDays; offset++ {
		day := now.AddDate(0, 0, offset)

		avail, err := f.store.GetAvailabilityForDay(doctorID, int(day.Weekday()))
		if err != nil || !avail.IsAvailable {
			continue
		}

		startHour, err := avail.StartHour()
		if err != nil {
			continue
		}

		candidate := time.Date(day.Year(), day.Month(), day.Day(), startHour, 0, 0, 0, now.Location())
		if !candidate.After(now) {
			continue
		}

		taken, err := f.slotTaken(doctorID, candidate)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}

		return &candidate, nil
	}
	return nil, nil
}

func (f *SlotFinder) slotTaken(doctorID string, candidate time.Time) (bool, error) {
	appts, err := f.store.GetAppointmentsByDoctorOnDate(doctorID, candidate)
	if err != nil {
		return false, err
	}
	for _, appt := range appts {
		if appt.DateTime.Hour() == candidate.Hour() {
			return true, nil
		}
	}
	return false, nil
}
