package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Somnath16/MyHomeoHealth-sub000/internal/models"
	"github.com/Somnath16/MyHomeoHealth-sub000/internal/storage"
)

func newSlotFixture(t *testing.T) (*SlotFinder, *storage.MemoryStore, *models.Doctor) {
	t.Helper()

	store := storage.NewMemoryStore()
	doctor, err := store.CreateDoctor(&models.DoctorRegistration{
		Name:  "Salma Akter",
		Phone: "+8801911111111",
	}, "")
	require.NoError(t, err)

	return NewSlotFinder(store), store, doctor
}

func setDay(t *testing.T, store *storage.MemoryStore, doctorID string, day int, start string, available bool) {
	t.Helper()
	_, err := store.UpsertAvailability(&models.DoctorAvailability{
		DoctorID:    doctorID,
		DayOfWeek:   day,
		StartTime:   start,
		EndTime:     "17:00",
		IsAvailable: available,
	})
	require.NoError(t, err)
}

func TestFindNextSlotPicksFirstAvailableDay(t *testing.T) {
	finder, store, doctor := newSlotFixture(t)
	setDay(t, store, doctor.DoctorID, 4, "09:00", true) // Thursday

	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC) // Tuesday

	slot, err := finder.FindNextSlot(doctor.DoctorID, now)
	require.NoError(t, err)
	require.NotNil(t, slot)
	assert.Equal(t, time.Date(2026, 9, 3, 9, 0, 0, 0, time.UTC), *slot)
}

func TestFindNextSlotTruncatesMinutes(t *testing.T) {
	finder, store, doctor := newSlotFixture(t)
	setDay(t, store, doctor.DoctorID, 4, "09:30", true)

	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

	slot, err := finder.FindNextSlot(doctor.DoctorID, now)
	require.NoError(t, err)
	require.NotNil(t, slot)
	assert.Equal(t, 9, slot.Hour())
	assert.Zero(t, slot.Minute(), "slots are whole-hour only")
}

func TestFindNextSlotSkipsUnavailableDays(t *testing.T) {
	finder, store, doctor := newSlotFixture(t)
	setDay(t, store, doctor.DoctorID, 2, "09:00", false) // Tuesday, switched off
	setDay(t, store, doctor.DoctorID, 5, "11:00", true)  // Friday

	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC) // Tuesday

	slot, err := finder.FindNextSlot(doctor.DoctorID, now)
	require.NoError(t, err)
	require.NotNil(t, slot)
	assert.Equal(t, time.Weekday(5), slot.Weekday())
}

func TestFindNextSlotNeverReturnsPast(t *testing.T) {
	finder, store, doctor := newSlotFixture(t)
	setDay(t, store, doctor.DoctorID, 2, "08:00", true) // Tuesday 08:00

	// It is already past 08:00 on Tuesday; today's slot is gone and the next
	// Tuesday falls outside the 7-day window.
	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	slot, err := finder.FindNextSlot(doctor.DoctorID, now)
	require.NoError(t, err)
	assert.Nil(t, slot)
}

func TestFindNextSlotSkipsOccupiedSlot(t *testing.T) {
	finder, store, doctor := newSlotFixture(t)
	setDay(t, store, doctor.DoctorID, 4, "09:00", true) // Thursday
	setDay(t, store, doctor.DoctorID, 1, "10:00", true) // Monday

	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

	_, err := store.CreateAppointment(&models.Appointment{
		PatientID: "PAT00001",
		DoctorID:  doctor.DoctorID,
		DateTime:  time.Date(2026, 9, 3, 9, 0, 0, 0, time.UTC), // Thursday taken
		Status:    models.AppointmentStatusUpcoming,
	})
	require.NoError(t, err)

	slot, err := finder.FindNextSlot(doctor.DoctorID, now)
	require.NoError(t, err)
	require.NotNil(t, slot)
	assert.Equal(t, time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC), *slot, "occupied Thursday must be skipped for Monday")
}

func TestFindNextSlotEmptySchedule(t *testing.T) {
	finder, _, doctor := newSlotFixture(t)

	slot, err := finder.FindNextSlot(doctor.DoctorID, time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Nil(t, slot)
}

func TestFindNextSlotSameDayStillAhead(t *testing.T) {
	finder, store, doctor := newSlotFixture(t)
	setDay(t, store, doctor.DoctorID, 2, "14:00", true) // Tuesday 14:00

	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC) // Tuesday morning

	slot, err := finder.FindNextSlot(doctor.DoctorID, now)
	require.NoError(t, err)
	require.NotNil(t, slot)
	assert.Equal(t, time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC), *slot, "today's slot counts when still in the future")
}
