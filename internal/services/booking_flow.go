package services

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/Somnath16/MyHomeoHealth-sub000/internal/models"
	"github.com/Somnath16/MyHomeoHealth-sub000/internal/storage"
)

// IntentMatcher decides whether a free-text message starts a booking
// conversation. Kept as an interface so tests can swap the keyword list.
type IntentMatcher interface {
	Match(message string) bool
}

// KeywordMatcher matches by case-insensitive substring against a keyword list
type KeywordMatcher struct {
	keywords []string
}

// NewKeywordMatcher creates a matcher over the given keywords
func NewKeywordMatcher(keywords ...string) *KeywordMatcher {
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}
	return &KeywordMatcher{keywords: lowered}
}

// Match reports whether the message contains any booking keyword
func (m *KeywordMatcher) Match(message string) bool {
	msg := strings.ToLower(message)
	for _, kw := range m.keywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}

// DefaultBookingIntent recognizes English and Bengali booking keywords.
// "সিরিয়াল" is the common Bangladeshi term for taking a doctor's appointment.
func DefaultBookingIntent() *KeywordMatcher {
	return NewKeywordMatcher(
		"appointment", "booking", "book", "schedule", "visit", "consultation",
		"অ্যাপয়েন্টমেন্ট", "বুকিং", "সিরিয়াল", "ডাক্তার দেখাবো",
	)
}

// Gender token sets. Tokens are matched against the lowercased, trimmed
// message; matches are stored canonically as "Male"/"Female"/"Other".
var genderTokens = map[string][]string{
	"Male":   {"male", "m", "পুরুষ"},
	"Female": {"female", "f", "মহিলা"},
	"Other":  {"other", "o", "অন্যান্য"},
}

// AgeMin and AgeMax bound the accepted patient age, inclusive.
const (
	AgeMin = 1
	AgeMax = 150
)

// BookingFlowService turns a sequence of inbound WhatsApp messages into an
// appointment booking, one field at a time. Invalid input re-prompts without
// advancing; the terminal step books at most once per conversation.
type BookingFlowService struct {
	store    storage.Store
	sessions *SessionManager
	slots    *SlotFinder
	intent   IntentMatcher
	now      func() time.Time
}

// NewBookingFlowService creates a new booking flow service
func NewBookingFlowService(store storage.Store, sessions *SessionManager, slots *SlotFinder) *BookingFlowService {
	return &BookingFlowService{
		store:    store,
		sessions: sessions,
		slots:    slots,
		intent:   DefaultBookingIntent(),
		now:      time.Now,
	}
}

// ProcessMessage handles one inbound message for a resolved doctor and always
// returns a reply string. Errors never escape to the transport layer.
func (b *BookingFlowService) ProcessMessage(doctor *models.Doctor, patientPhone, message string) string {
	b.sessions.Sweep()

	session, err := b.sessions.Get(patientPhone, doctor.DoctorID)
	if err != nil {
		// No active conversation; an expired one counts as silently lost
		return b.handleInitial(doctor, patientPhone, message)
	}

	switch session.Step {
	case models.StepAwaitingName:
		return b.handleName(doctor, session, message)
	case models.StepAwaitingAge:
		return b.handleAge(session, message)
	case models.StepAwaitingGender:
		return b.handleGender(session, message)
	case models.StepAwaitingLocation:
		return b.handleLocation(doctor, session, message)
	default:
		// A row stuck at an unexpected step cannot make progress; drop it
		// and treat the message as the start of a new conversation.
		if _, err := b.sessions.Claim(session); err != nil {
			log.Printf("Failed to drop stale session %s: %v", session.ID, err)
		}
		return b.handleInitial(doctor, patientPhone, message)
	}
}

// handleInitial runs when no session exists. A booking keyword starts the
// dialogue; anything else gets the clinic info card and creates no state.
func (b *BookingFlowService) handleInitial(doctor *models.Doctor, patientPhone, message string) string {
	if !b.intent.Match(message) {
		return b.clinicInfoReply(doctor)
	}

	_, err := b.sessions.Create(patientPhone, doctor.DoctorID, models.StepAwaitingName, models.SessionData{})
	if err != nil {
		log.Printf("Failed to create booking session for %s: %v", patientPhone, err)
		return replyTryAgain
	}

	return fmt.Sprintf("👋 Welcome to *%s*!\n\nLet's book your appointment with %s.\n\nWhat is your full name?",
		doctor.ClinicName, doctor.Name)
}

func (b *BookingFlowService) handleName(doctor *models.Doctor, session *models.WhatsAppSession, message string) string {
	name := strings.TrimSpace(message)
	if name == "" {
		if err := b.sessions.Touch(session); err != nil {
			log.Printf("Failed to touch session %s: %v", session.ID, err)
		}
		return "Please tell us your full name to continue."
	}

	data := session.SessionData()
	data.Name = name
	if err := b.sessions.Advance(session, models.StepAwaitingAge, data); err != nil {
		log.Printf("Failed to advance session %s: %v", session.ID, err)
		return replyTryAgain
	}

	return fmt.Sprintf("Thanks, %s! 🙏\n\nHow old are you? (enter a number)", name)
}

func (b *BookingFlowService) handleAge(session *models.WhatsAppSession, message string) string {
	age, err := strconv.Atoi(strings.TrimSpace(message))
	if err != nil || age < AgeMin || age > AgeMax {
		if err := b.sessions.Touch(session); err != nil {
			log.Printf("Failed to touch session %s: %v", session.ID, err)
		}
		return fmt.Sprintf("Please enter a valid age between %d and %d.", AgeMin, AgeMax)
	}

	data := session.SessionData()
	data.Age = age
	if err := b.sessions.Advance(session, models.StepAwaitingGender, data); err != nil {
		log.Printf("Failed to advance session %s: %v", session.ID, err)
		return replyTryAgain
	}

	return "What is your gender?\n\nReply with: male / female / other (or m / f / o)"
}

func (b *BookingFlowService) handleGender(session *models.WhatsAppSession, message string) string {
	token := strings.ToLower(strings.TrimSpace(message))

	var canonical string
	for value, tokens := range genderTokens {
		for _, t := range tokens {
			if token == t {
				canonical = value
				break
			}
		}
	}
	if canonical == "" {
		if err := b.sessions.Touch(session); err != nil {
			log.Printf("Failed to touch session %s: %v", session.ID, err)
		}
		return "Sorry, I didn't catch that. Please reply with male, female or other (m / f / o)."
	}

	data := session.SessionData()
	data.Gender = canonical
	if err := b.sessions.Advance(session, models.StepAwaitingLocation, data); err != nil {
		log.Printf("Failed to advance session %s: %v", session.ID, err)
		return replyTryAgain
	}

	return "Where are you located? (your area or town)"
}

// handleLocation is the terminal transition. The session is claimed (deleted)
// before any booking write, so completion runs at most once even if the same
// final message is delivered twice.
func (b *BookingFlowService) handleLocation(doctor *models.Doctor, session *models.WhatsAppSession, message string) string {
	data := session.SessionData()
	data.Location = strings.TrimSpace(message)

	claimed, err := b.sessions.Claim(session)
	if err != nil {
		log.Printf("Failed to claim session %s: %v", session.ID, err)
		return replyTryAgain
	}
	if !claimed {
		// Another delivery of this message got here first
		return b.handleInitial(doctor, session.PatientPhone, message)
	}

	return b.completeBooking(doctor, session.PatientPhone, data)
}

// completeBooking creates the patient (if new) and the appointment, and
// formats the confirmation. Every failure is converted into a reply string.
func (b *BookingFlowService) completeBooking(doctor *models.Doctor, patientPhone string, data models.SessionData) string {
	avail, err := b.store.GetAvailability(doctor.DoctorID)
	if err != nil {
		log.Printf("Failed to load availability for %s: %v", doctor.DoctorID, err)
		return replyTryAgain
	}
	if len(avail) == 0 {
		return fmt.Sprintf("😔 Sorry, %s has no consultation hours set up yet. Please contact the clinic directly.", doctor.Name)
	}

	slot, err := b.slots.FindNextSlot(doctor.DoctorID, b.now())
	if err != nil {
		log.Printf("Slot search failed for %s: %v", doctor.DoctorID, err)
		return replyTryAgain
	}
	if slot == nil {
		return "😔 Sorry, no appointment slots are free in the next 7 days. Please try again later."
	}

	patient, err := b.store.GetPatientByPhone(patientPhone, doctor.DoctorID)
	if err != nil {
		patient, err = b.store.CreatePatient(&models.Patient{
			DoctorID: doctor.DoctorID,
			Phone:    patientPhone,
			Name:     data.Name,
			Age:      data.Age,
			Gender:   data.Gender,
			Location: data.Location,
		})
		if err != nil {
			log.Printf("Failed to create patient %s: %v", patientPhone, err)
			return replyTryAgain
		}
	}

	appt, err := b.store.CreateAppointment(&models.Appointment{
		PatientID: patient.PatientID,
		DoctorID:  doctor.DoctorID,
		DateTime:  *slot,
		Type:      models.AppointmentTypeConsultation,
		Status:    models.AppointmentStatusUpcoming,
		Notes:     "Booked via WhatsApp conversation",
	})
	if err != nil {
		log.Printf("Failed to create appointment for %s: %v", patientPhone, err)
		return replyTryAgain
	}

	return fmt.Sprintf(`✅ *Appointment Confirmed!*

🆔 Appointment: *%s*
👤 Name: %s
🎂 Age: %d
⚧ Gender: %s
📍 Location: %s

🗓 %s
👨‍⚕️ %s, %s

See you at the clinic!`,
		appt.AppointmentID,
		data.Name,
		data.Age,
		data.Gender,
		data.Location,
		slot.Format("Monday, 2 Jan 2006 at 3:04 PM"),
		doctor.Name,
		doctor.ClinicName,
	)
}

func (b *BookingFlowService) clinicInfoReply(doctor *models.Doctor) string {
	return fmt.Sprintf(`🏥 *%s*
📍 %s

To book an appointment with %s, reply with "book" or "সিরিয়াল".`,
		doctor.ClinicName, doctor.ClinicLocation, doctor.Name)
}

const replyTryAgain = "❌ Sorry, something went wrong. Please try again later."
