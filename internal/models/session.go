package models

import (
	"encoding/json"
	"time"
)

// SessionStep is the current position in the booking dialogue. Using a
// dedicated type keeps the step set closed; free-form strings never reach
// the state machine.
type SessionStep string

const (
	StepInitial          SessionStep = "initial"
	StepAwaitingName     SessionStep = "awaiting_name"
	StepAwaitingAge      SessionStep = "awaiting_age"
	StepAwaitingGender   SessionStep = "awaiting_gender"
	StepAwaitingLocation SessionStep = "awaiting_location"
	StepCompleted        SessionStep = "completed"
)

// SessionData holds the patient fields collected so far. Zero values mean
// "not collected yet"; the step guarantees which fields are filled.
type SessionData struct {
	Name     string `json:"name,omitempty"`
	Age      int    `json:"age,omitempty"`
	Gender   string `json:"gender,omitempty"`
	Location string `json:"location,omitempty"`
}

// WhatsAppSession stores transient conversation state for one
// (patient phone, doctor) pair. Rows expire 30 minutes after creation and
// are swept lazily at the start of each inbound message cycle.
type WhatsAppSession struct {
	ID           string `json:"id" gorm:"primaryKey"`
	PatientPhone string `json:"patient_phone" gorm:"uniqueIndex:idx_session_pair"`
	DoctorID     string `json:"doctor_id" gorm:"uniqueIndex:idx_session_pair"`

	Step          SessionStep `json:"step"`
	Data          string      `json:"data" gorm:"type:text"` // JSON-encoded SessionData
	ExpiresAt     time.Time   `json:"expires_at"`
	LastMessageAt time.Time   `json:"last_message_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for WhatsAppSession
func (WhatsAppSession) TableName() string {
	return "whatsapp_sessions"
}

// Expired reports whether the session's TTL has passed at the given instant.
func (s *WhatsAppSession) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// SessionData decodes the collected fields. A missing or corrupt payload
// decodes to the zero value so a half-written row cannot wedge the flow.
func (s *WhatsAppSession) SessionData() SessionData {
	var data SessionData
	if s.Data != "" {
		_ = json.Unmarshal([]byte(s.Data), &data)
	}
	return data
}

// SetSessionData encodes the collected fields back into the row.
func (s *WhatsAppSession) SetSessionData(data SessionData) {
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	s.Data = string(raw)
}
