package services

import (
	"fmt"
	"log"
	"time"

	"github.com/Somnath16/MyHomeoHealth-sub000/internal/models"
	"github.com/Somnath16/MyHomeoHealth-sub000/internal/storage"
)

// SessionTTL is how long a booking conversation stays alive without completing.
const SessionTTL = 30 * time.Minute

// SessionManager handles the lifecycle of WhatsApp booking sessions. There is
// no background cleanup routine: Sweep runs at the start of every inbound
// message cycle, and Get re-checks expiry so a stale row is never handed out
// between sweeps.
type SessionManager struct {
	store storage.Store
	ttl   time.Duration
	now   func() time.Time
}

// NewSessionManager creates a new session manager
func NewSessionManager(store storage.Store) *SessionManager {
	return &SessionManager{
		store: store,
		ttl:   SessionTTL,
		now:   time.Now,
	}
}

// Sweep removes all sessions whose TTL has passed. Called before the first
// Get of each request.
func (sm *SessionManager) Sweep() {
	if err := sm.store.DeleteExpiredSessions(sm.now()); err != nil {
		log.Printf("Failed to sweep expired sessions: %v", err)
	}
}

// Get returns the active session for a (patient phone, doctor) pair. An
// expired row that the sweep has not yet removed is deleted here and reported
// as absent.
func (sm *SessionManager) Get(patientPhone, doctorID string) (*models.WhatsAppSession, error) {
	session, err := sm.store.GetSession(patientPhone, doctorID)
	if err != nil {
		return nil, err
	}
	if session.Expired(sm.now()) {
		if _, err := sm.store.DeleteSession(session.ID); err != nil {
			log.Printf("Failed to delete expired session %s: %v", session.ID, err)
		}
		return nil, fmt.Errorf("session expired")
	}
	return session, nil
}

// Create starts a new conversation at the given step with a fresh TTL.
func (sm *SessionManager) Create(patientPhone, doctorID string, step models.SessionStep, data models.SessionData) (*models.WhatsAppSession, error) {
	now := sm.now()
	session := &models.WhatsAppSession{
		PatientPhone:  patientPhone,
		DoctorID:      doctorID,
		Step:          step,
		ExpiresAt:     now.Add(sm.ttl),
		LastMessageAt: now,
	}
	session.SetSessionData(data)
	return sm.store.CreateSession(session)
}

// Advance stores the updated step and collected fields, refreshing
// LastMessageAt. The TTL is fixed at creation and is not extended.
func (sm *SessionManager) Advance(session *models.WhatsAppSession, step models.SessionStep, data models.SessionData) error {
	session.Step = step
	session.SetSessionData(data)
	session.LastMessageAt = sm.now()
	return sm.store.UpdateSession(session)
}

// Touch refreshes LastMessageAt without changing step or data. Used when a
// step re-prompts on invalid input.
func (sm *SessionManager) Touch(session *models.WhatsAppSession) error {
	session.LastMessageAt = sm.now()
	return sm.store.UpdateSession(session)
}

// Claim deletes the session and reports whether this caller actually removed
// it. The terminal booking step claims its session before writing anything,
// so a duplicate webhook delivery of the final message finds no session and
// cannot double-book.
func (sm *SessionManager) Claim(session *models.WhatsAppSession) (bool, error) {
	return sm.store.DeleteSession(session.ID)
}
