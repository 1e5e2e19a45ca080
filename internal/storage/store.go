package storage

import (
	"sync"
	"time"

	"github.com/Somnath16/MyHomeoHealth-sub000/internal/models"
)

var (
	storeInstance Store
	storeMu       sync.RWMutex
)

// SetStore sets the global store instance (call from main.go)
func SetStore(s Store) {
	storeMu.Lock()
	defer storeMu.Unlock()
	storeInstance = s
}

// GetStore returns the global store instance
func GetStore() Store {
	storeMu.RLock()
	defer storeMu.RUnlock()
	return storeInstance
}

// Store defines the interface for storage operations
type Store interface {
	// Doctor operations
	CreateDoctor(reg *models.DoctorRegistration, passwordHash string) (*models.Doctor, error)
	GetDoctorByID(doctorID string) (*models.Doctor, error)
	GetDoctorByPhone(phone string) (*models.Doctor, error)
	GetDoctorByWhatsAppPhone(phone string) (*models.Doctor, error)
	GetAllDoctors() ([]*models.Doctor, error)
	UpdateDoctor(doctor *models.Doctor) error

	// Patient operations
	CreatePatient(patient *models.Patient) (*models.Patient, error)
	GetPatient(patientID string) (*models.Patient, error)
	GetPatientByPhone(phone, doctorID string) (*models.Patient, error)
	GetPatientsByDoctor(doctorID string) ([]*models.Patient, error)

	// Availability operations
	UpsertAvailability(avail *models.DoctorAvailability) (*models.DoctorAvailability, error)
	GetAvailability(doctorID string) ([]*models.DoctorAvailability, error)
	GetAvailabilityForDay(doctorID string, dayOfWeek int) (*models.DoctorAvailability, error)
	DeleteAvailability(doctorID string, dayOfWeek int) error

	// Appointment operations
	CreateAppointment(appt *models.Appointment) (*models.Appointment, error)
	GetAppointment(appointmentID string) (*models.Appointment, error)
	GetAppointmentsByDoctor(doctorID string) ([]*models.Appointment, error)
	GetAppointmentsByDoctorOnDate(doctorID string, date time.Time) ([]*models.Appointment, error)
	GetUpcomingAppointmentsBetween(from, to time.Time) ([]*models.Appointment, error)
	UpdateAppointmentStatus(appointmentID, status string) error

	// WhatsApp session operations
	GetSession(patientPhone, doctorID string) (*models.WhatsAppSession, error)
	CreateSession(session *models.WhatsAppSession) (*models.WhatsAppSession, error)
	UpdateSession(session *models.WhatsAppSession) error
	DeleteSession(id string) (bool, error)
	DeleteExpiredSessions(now time.Time) error
}
