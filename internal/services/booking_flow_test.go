package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Somnath16/MyHomeoHealth-sub000/internal/models"
	"github.com/Somnath16/MyHomeoHealth-sub000/internal/storage"
)

const (
	testPatientPhone = "+8801700000000"
	testDoctorPhone  = "+8801900000000"
)

// fixedNow is a Tuesday morning. The test doctor is available Mondays
// 10:00-12:00, so the next bookable slot is Monday the 7th at 10:00.
var fixedNow = time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

func newTestFlow(t *testing.T) (*BookingFlowService, *storage.MemoryStore, *models.Doctor) {
	t.Helper()

	store := storage.NewMemoryStore()
	doctor, err := store.CreateDoctor(&models.DoctorRegistration{
		Name:           "Rahim Chowdhury",
		Phone:          testDoctorPhone,
		WhatsAppPhone:  testDoctorPhone,
		ClinicName:     "Arogya Homeo Clinic",
		ClinicLocation: "Dhanmondi, Dhaka",
	}, "")
	require.NoError(t, err)

	_, err = store.UpsertAvailability(&models.DoctorAvailability{
		DoctorID:    doctor.DoctorID,
		DayOfWeek:   1, // Monday
		StartTime:   "10:00",
		EndTime:     "12:00",
		IsAvailable: true,
	})
	require.NoError(t, err)

	sessions := NewSessionManager(store)
	sessions.now = func() time.Time { return fixedNow }

	flow := NewBookingFlowService(store, sessions, NewSlotFinder(store))
	flow.now = func() time.Time { return fixedNow }

	return flow, store, doctor
}

func sessionStep(t *testing.T, store *storage.MemoryStore, doctorID string) models.SessionStep {
	t.Helper()
	session, err := store.GetSession(testPatientPhone, doctorID)
	require.NoError(t, err)
	return session.Step
}

func TestNonKeywordMessageReturnsClinicInfoWithoutSession(t *testing.T) {
	flow, store, doctor := newTestFlow(t)

	reply := flow.ProcessMessage(doctor, testPatientPhone, "hello there")

	assert.Contains(t, reply, "Arogya Homeo Clinic")
	assert.Contains(t, reply, "Dhanmondi, Dhaka")

	_, err := store.GetSession(testPatientPhone, doctor.DoctorID)
	assert.Error(t, err, "no session should be created for a non-keyword message")
}

func TestBookingKeywordStartsConversation(t *testing.T) {
	keywords := []string{
		"I want to book an appointment",
		"BOOKING please",
		"can I schedule a visit?",
		"consultation",
		"অ্যাপয়েন্টমেন্ট চাই",
		"সিরিয়াল দিতে চাই",
	}

	for _, msg := range keywords {
		t.Run(msg, func(t *testing.T) {
			flow, store, doctor := newTestFlow(t)

			reply := flow.ProcessMessage(doctor, testPatientPhone, msg)

			assert.Contains(t, reply, "name")
			assert.Equal(t, models.StepAwaitingName, sessionStep(t, store, doctor.DoctorID))
		})
	}
}

func TestEmptyNameRepromptsWithoutAdvancing(t *testing.T) {
	flow, store, doctor := newTestFlow(t)

	flow.ProcessMessage(doctor, testPatientPhone, "book")
	reply := flow.ProcessMessage(doctor, testPatientPhone, "   ")

	assert.Contains(t, reply, "name")
	assert.Equal(t, models.StepAwaitingName, sessionStep(t, store, doctor.DoctorID))
}

func TestNameAdvancesToAge(t *testing.T) {
	flow, store, doctor := newTestFlow(t)

	flow.ProcessMessage(doctor, testPatientPhone, "book")
	reply := flow.ProcessMessage(doctor, testPatientPhone, "  Rahim Uddin  ")

	assert.Contains(t, reply, "Rahim Uddin")

	session, err := store.GetSession(testPatientPhone, doctor.DoctorID)
	require.NoError(t, err)
	assert.Equal(t, models.StepAwaitingAge, session.Step)
	assert.Equal(t, "Rahim Uddin", session.SessionData().Name)
}

func TestAgeValidation(t *testing.T) {
	valid := []string{"1", "30", "150", " 42 "}
	invalid := []string{"abc", "", "0", "-5", "151", "12.5", "thirty"}

	for _, msg := range valid {
		t.Run("valid_"+msg, func(t *testing.T) {
			flow, store, doctor := newTestFlow(t)
			flow.ProcessMessage(doctor, testPatientPhone, "book")
			flow.ProcessMessage(doctor, testPatientPhone, "Rahim Uddin")

			flow.ProcessMessage(doctor, testPatientPhone, msg)

			assert.Equal(t, models.StepAwaitingGender, sessionStep(t, store, doctor.DoctorID))
		})
	}

	for _, msg := range invalid {
		t.Run("invalid_"+msg, func(t *testing.T) {
			flow, store, doctor := newTestFlow(t)
			flow.ProcessMessage(doctor, testPatientPhone, "book")
			flow.ProcessMessage(doctor, testPatientPhone, "Rahim Uddin")

			reply := flow.ProcessMessage(doctor, testPatientPhone, msg)

			assert.Contains(t, reply, "between 1 and 150")

			session, err := store.GetSession(testPatientPhone, doctor.DoctorID)
			require.NoError(t, err)
			assert.Equal(t, models.StepAwaitingAge, session.Step)
			assert.Zero(t, session.SessionData().Age, "invalid input must not mutate the collected age")
		})
	}
}

func TestGenderNormalization(t *testing.T) {
	cases := map[string]string{
		"male":     "Male",
		"M":        "Male",
		"MALE":     "Male",
		"পুরুষ":    "Male",
		"female":   "Female",
		"f":        "Female",
		"মহিলা":    "Female",
		"Other":    "Other",
		"o":        "Other",
		"অন্যান্য": "Other",
	}

	for token, want := range cases {
		t.Run(token, func(t *testing.T) {
			flow, store, doctor := newTestFlow(t)
			flow.ProcessMessage(doctor, testPatientPhone, "book")
			flow.ProcessMessage(doctor, testPatientPhone, "Rahim Uddin")
			flow.ProcessMessage(doctor, testPatientPhone, "30")

			flow.ProcessMessage(doctor, testPatientPhone, token)

			session, err := store.GetSession(testPatientPhone, doctor.DoctorID)
			require.NoError(t, err)
			assert.Equal(t, models.StepAwaitingLocation, session.Step)
			assert.Equal(t, want, session.SessionData().Gender)
		})
	}
}

func TestUnrecognizedGenderReprompts(t *testing.T) {
	flow, store, doctor := newTestFlow(t)
	flow.ProcessMessage(doctor, testPatientPhone, "book")
	flow.ProcessMessage(doctor, testPatientPhone, "Rahim Uddin")
	flow.ProcessMessage(doctor, testPatientPhone, "30")

	reply := flow.ProcessMessage(doctor, testPatientPhone, "attack helicopter")

	assert.Contains(t, reply, "male, female or other")
	assert.Equal(t, models.StepAwaitingGender, sessionStep(t, store, doctor.DoctorID))
}

func TestFullBookingConversation(t *testing.T) {
	flow, store, doctor := newTestFlow(t)

	flow.ProcessMessage(doctor, testPatientPhone, "I want to book an appointment")
	flow.ProcessMessage(doctor, testPatientPhone, "Rahim Uddin")
	flow.ProcessMessage(doctor, testPatientPhone, "30")
	flow.ProcessMessage(doctor, testPatientPhone, "male")
	reply := flow.ProcessMessage(doctor, testPatientPhone, "Dhaka")

	// Confirmation carries every collected field plus the booking identity
	assert.Contains(t, reply, "Rahim Uddin")
	assert.Contains(t, reply, "30")
	assert.Contains(t, reply, "Male")
	assert.Contains(t, reply, "Dhaka")
	assert.Contains(t, reply, "RAH-0001")
	assert.Contains(t, reply, "Rahim Chowdhury")
	assert.Contains(t, reply, "Arogya Homeo Clinic")

	// Exactly one appointment at next Monday 10:00
	appts, err := store.GetAppointmentsByDoctor(doctor.DoctorID)
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC), appts[0].DateTime)
	assert.Equal(t, models.AppointmentStatusUpcoming, appts[0].Status)
	assert.Equal(t, models.AppointmentTypeConsultation, appts[0].Type)
	assert.Equal(t, "Booked via WhatsApp conversation", appts[0].Notes)

	// Exactly one patient, seeded from the conversation
	patient, err := store.GetPatientByPhone(testPatientPhone, doctor.DoctorID)
	require.NoError(t, err)
	assert.Equal(t, "Rahim Uddin", patient.Name)
	assert.Equal(t, 30, patient.Age)
	assert.Equal(t, "Male", patient.Gender)
	assert.Equal(t, "Dhaka", patient.Location)

	// Session is gone
	_, err = store.GetSession(testPatientPhone, doctor.DoctorID)
	assert.Error(t, err)
}

func TestExistingPatientIsReused(t *testing.T) {
	flow, store, doctor := newTestFlow(t)

	existing, err := store.CreatePatient(&models.Patient{
		DoctorID: doctor.DoctorID,
		Phone:    testPatientPhone,
		Name:     "Rahim Uddin",
	})
	require.NoError(t, err)

	flow.ProcessMessage(doctor, testPatientPhone, "book")
	flow.ProcessMessage(doctor, testPatientPhone, "Rahim Uddin")
	flow.ProcessMessage(doctor, testPatientPhone, "30")
	flow.ProcessMessage(doctor, testPatientPhone, "male")
	flow.ProcessMessage(doctor, testPatientPhone, "Dhaka")

	patients, err := store.GetPatientsByDoctor(doctor.DoctorID)
	require.NoError(t, err)
	require.Len(t, patients, 1, "completion must not duplicate an existing patient")

	appts, err := store.GetAppointmentsByDoctor(doctor.DoctorID)
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, existing.PatientID, appts[0].PatientID)
}

func TestDuplicateFinalMessageBooksOnce(t *testing.T) {
	flow, store, doctor := newTestFlow(t)

	flow.ProcessMessage(doctor, testPatientPhone, "book")
	flow.ProcessMessage(doctor, testPatientPhone, "Rahim Uddin")
	flow.ProcessMessage(doctor, testPatientPhone, "30")
	flow.ProcessMessage(doctor, testPatientPhone, "male")

	first := flow.ProcessMessage(doctor, testPatientPhone, "Dhaka")
	second := flow.ProcessMessage(doctor, testPatientPhone, "Dhaka")

	assert.Contains(t, first, "Confirmed")
	assert.NotContains(t, second, "Confirmed")

	appts, err := store.GetAppointmentsByDoctor(doctor.DoctorID)
	require.NoError(t, err)
	assert.Len(t, appts, 1, "a duplicate delivery of the final message must not double-book")
}

func TestNoAvailabilityConfiguredStillConsumesSession(t *testing.T) {
	flow, store, doctor := newTestFlow(t)
	require.NoError(t, store.DeleteAvailability(doctor.DoctorID, 1))

	flow.ProcessMessage(doctor, testPatientPhone, "book")
	flow.ProcessMessage(doctor, testPatientPhone, "Rahim Uddin")
	flow.ProcessMessage(doctor, testPatientPhone, "30")
	flow.ProcessMessage(doctor, testPatientPhone, "male")
	reply := flow.ProcessMessage(doctor, testPatientPhone, "Dhaka")

	assert.Contains(t, reply, "no consultation hours")

	appts, err := store.GetAppointmentsByDoctor(doctor.DoctorID)
	require.NoError(t, err)
	assert.Empty(t, appts)

	_, err = store.GetSession(testPatientPhone, doctor.DoctorID)
	assert.Error(t, err, "session must be deleted even when completion fails")
}

func TestNoFreeSlotInWindow(t *testing.T) {
	flow, store, doctor := newTestFlow(t)

	// Occupy the only slot in the window
	_, err := store.CreateAppointment(&models.Appointment{
		PatientID: "PAT99999",
		DoctorID:  doctor.DoctorID,
		DateTime:  time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC),
		Status:    models.AppointmentStatusUpcoming,
	})
	require.NoError(t, err)

	flow.ProcessMessage(doctor, testPatientPhone, "book")
	flow.ProcessMessage(doctor, testPatientPhone, "Rahim Uddin")
	flow.ProcessMessage(doctor, testPatientPhone, "30")
	flow.ProcessMessage(doctor, testPatientPhone, "male")
	reply := flow.ProcessMessage(doctor, testPatientPhone, "Dhaka")

	assert.Contains(t, reply, "next 7 days")

	appts, err := store.GetAppointmentsByDoctor(doctor.DoctorID)
	require.NoError(t, err)
	assert.Len(t, appts, 1, "only the pre-existing appointment should remain")
}

func TestExpiredSessionFallsBackToInitial(t *testing.T) {
	flow, store, doctor := newTestFlow(t)

	flow.ProcessMessage(doctor, testPatientPhone, "book")

	// Jump past the TTL
	later := fixedNow.Add(SessionTTL + time.Minute)
	flow.sessions.now = func() time.Time { return later }
	flow.now = func() time.Time { return later }

	reply := flow.ProcessMessage(doctor, testPatientPhone, "Rahim Uddin")

	// The name is not a booking keyword, so the lost conversation degrades
	// to the clinic info card
	assert.Contains(t, reply, "Arogya Homeo Clinic")

	_, err := store.GetSession(testPatientPhone, doctor.DoctorID)
	assert.Error(t, err)
}

func TestConversationsAreIsolatedPerDoctor(t *testing.T) {
	flow, store, doctor := newTestFlow(t)

	other, err := store.CreateDoctor(&models.DoctorRegistration{
		Name:          "Salma Akter",
		Phone:         "+8801911111111",
		WhatsAppPhone: "+8801911111111",
		ClinicName:    "Shastho Homeo",
	}, "")
	require.NoError(t, err)

	flow.ProcessMessage(doctor, testPatientPhone, "book")
	flow.ProcessMessage(other, testPatientPhone, "book")

	flow.ProcessMessage(doctor, testPatientPhone, "Rahim Uddin")

	assert.Equal(t, models.StepAwaitingAge, sessionStep(t, store, doctor.DoctorID))

	otherSession, err := store.GetSession(testPatientPhone, other.DoctorID)
	require.NoError(t, err)
	assert.Equal(t, models.StepAwaitingName, otherSession.Step)
}

func TestSequentialBookingsGetDistinctAppointmentIDs(t *testing.T) {
	flow, store, doctor := newTestFlow(t)

	// Add a second bookable day so two bookings fit in the window
	_, err := store.UpsertAvailability(&models.DoctorAvailability{
		DoctorID:    doctor.DoctorID,
		DayOfWeek:   3, // Wednesday
		StartTime:   "15:00",
		EndTime:     "17:00",
		IsAvailable: true,
	})
	require.NoError(t, err)

	for i, phone := range []string{"+8801700000001", "+8801700000002"} {
		flow.ProcessMessage(doctor, phone, "book")
		flow.ProcessMessage(doctor, phone, fmt.Sprintf("Patient %d", i+1))
		flow.ProcessMessage(doctor, phone, "25")
		flow.ProcessMessage(doctor, phone, "f")
		reply := flow.ProcessMessage(doctor, phone, "Mirpur")
		require.True(t, strings.Contains(reply, "Confirmed"), "booking %d failed: %s", i+1, reply)
	}

	appts, err := store.GetAppointmentsByDoctor(doctor.DoctorID)
	require.NoError(t, err)
	require.Len(t, appts, 2)
	assert.NotEqual(t, appts[0].AppointmentID, appts[1].AppointmentID)
	assert.NotEqual(t, appts[0].DateTime, appts[1].DateTime)
}

func TestKeywordMatcherIsCaseInsensitiveSubstring(t *testing.T) {
	m := NewKeywordMatcher("book", "সিরিয়াল")

	assert.True(t, m.Match("I want to BOOK now"))
	assert.True(t, m.Match("booking"))
	assert.True(t, m.Match("আমি সিরিয়াল চাই"))
	assert.False(t, m.Match("hello"))
}
