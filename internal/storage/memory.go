package storage

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Somnath16/MyHomeoHealth-sub000/internal/models"
)

// MemoryStore holds all data in memory for tests and local development
type MemoryStore struct {
	doctors      map[string]*models.Doctor
	patients     map[string]*models.Patient
	availability map[string]*models.DoctorAvailability // key: doctorID:dayOfWeek
	appointments map[string]*models.Appointment
	sessions     map[string]*models.WhatsAppSession // key: patientPhone:doctorID

	// Mutexes for thread safety
	doctorMu       sync.RWMutex
	patientMu      sync.RWMutex
	availabilityMu sync.RWMutex
	appointmentMu  sync.RWMutex
	sessionMu      sync.RWMutex

	// Counters for ID generation
	doctorCounter      int
	patientCounter     int
	appointmentCounter map[string]int // per doctor
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		doctors:            make(map[string]*models.Doctor),
		patients:           make(map[string]*models.Patient),
		availability:       make(map[string]*models.DoctorAvailability),
		appointments:       make(map[string]*models.Appointment),
		sessions:           make(map[string]*models.WhatsAppSession),
		appointmentCounter: make(map[string]int),
	}
}

func availabilityKey(doctorID string, dayOfWeek int) string {
	return fmt.Sprintf("%s:%d", doctorID, dayOfWeek)
}

func sessionKey(patientPhone, doctorID string) string {
	return patientPhone + ":" + doctorID
}

// Doctor operations

func (m *MemoryStore) CreateDoctor(reg *models.DoctorRegistration, passwordHash string) (*models.Doctor, error) {
	m.doctorMu.Lock()
	defer m.doctorMu.Unlock()

	for _, d := range m.doctors {
		if d.Phone == reg.Phone {
			return nil, fmt.Errorf("phone already registered")
		}
		if reg.WhatsAppPhone != "" && d.WhatsAppPhone == reg.WhatsAppPhone {
			return nil, fmt.Errorf("whatsapp phone already registered")
		}
	}

	m.doctorCounter++
	doctor := &models.Doctor{
		DoctorID:       fmt.Sprintf("DOC%05d", m.doctorCounter),
		Name:           reg.Name,
		Phone:          reg.Phone,
		WhatsAppPhone:  reg.WhatsAppPhone,
		PasswordHash:   passwordHash,
		ClinicName:     reg.ClinicName,
		ClinicLocation: reg.ClinicLocation,
		BookingEnabled: true,
		IsActive:       true,
	}

	m.doctors[doctor.DoctorID] = doctor
	return doctor, nil
}

func (m *MemoryStore) GetDoctorByID(doctorID string) (*models.Doctor, error) {
	m.doctorMu.RLock()
	defer m.doctorMu.RUnlock()

	doctor, exists := m.doctors[doctorID]
	if !exists {
		return nil, fmt.Errorf("doctor not found")
	}
	return doctor, nil
}

func (m *MemoryStore) GetDoctorByPhone(phone string) (*models.Doctor, error) {
	m.doctorMu.RLock()
	defer m.doctorMu.RUnlock()

	for _, doctor := range m.doctors {
		if doctor.Phone == phone {
			return doctor, nil
		}
	}
	return nil, fmt.Errorf("doctor not found")
}

func (m *MemoryStore) GetDoctorByWhatsAppPhone(phone string) (*models.Doctor, error) {
	m.doctorMu.RLock()
	defer m.doctorMu.RUnlock()

	for _, doctor := range m.doctors {
		if doctor.WhatsAppPhone == phone {
			return doctor, nil
		}
	}
	return nil, fmt.Errorf("doctor not found")
}

func (m *MemoryStore) GetAllDoctors() ([]*models.Doctor, error) {
	m.doctorMu.RLock()
	defer m.doctorMu.RUnlock()

	doctors := make([]*models.Doctor, 0, len(m.doctors))
	for _, doctor := range m.doctors {
		doctors = append(doctors, doctor)
	}
	return doctors, nil
}

func (m *MemoryStore) UpdateDoctor(doctor *models.Doctor) error {
	m.doctorMu.Lock()
	defer m.doctorMu.Unlock()

	if _, exists := m.doctors[doctor.DoctorID]; !exists {
		return fmt.Errorf("doctor not found")
	}
	m.doctors[doctor.DoctorID] = doctor
	return nil
}

// Patient operations

func (m *MemoryStore) CreatePatient(patient *models.Patient) (*models.Patient, error) {
	m.patientMu.Lock()
	defer m.patientMu.Unlock()

	for _, p := range m.patients {
		if p.Phone == patient.Phone && p.DoctorID == patient.DoctorID {
			return nil, fmt.Errorf("patient already registered for this doctor")
		}
	}

	m.patientCounter++
	patient.PatientID = fmt.Sprintf("PAT%05d", m.patientCounter)

	m.patients[patient.PatientID] = patient
	return patient, nil
}

func (m *MemoryStore) GetPatient(patientID string) (*models.Patient, error) {
	m.patientMu.RLock()
	defer m.patientMu.RUnlock()

	patient, exists := m.patients[patientID]
	if !exists {
		return nil, fmt.Errorf("patient not found")
	}
	return patient, nil
}

func (m *MemoryStore) GetPatientByPhone(phone, doctorID string) (*models.Patient, error) {
	m.patientMu.RLock()
	defer m.patientMu.RUnlock()

	for _, patient := range m.patients {
		if patient.Phone == phone && patient.DoctorID == doctorID {
			return patient, nil
		}
	}
	return nil, fmt.Errorf("patient not found")
}

func (m *MemoryStore) GetPatientsByDoctor(doctorID string) ([]*models.Patient, error) {
	m.patientMu.RLock()
	defer m.patientMu.RUnlock()

	var patients []*models.Patient
	for _, patient := range m.patients {
		if patient.DoctorID == doctorID {
			patients = append(patients, patient)
		}
	}
	return patients, nil
}

// Availability operations

func (m *MemoryStore) UpsertAvailability(avail *models.DoctorAvailability) (*models.DoctorAvailability, error) {
	if avail.DayOfWeek < 0 || avail.DayOfWeek > 6 {
		return nil, fmt.Errorf("day of week must be between 0 and 6")
	}

	m.availabilityMu.Lock()
	defer m.availabilityMu.Unlock()

	// Replaces any prior record for that day
	m.availability[availabilityKey(avail.DoctorID, avail.DayOfWeek)] = avail
	return avail, nil
}

func (m *MemoryStore) GetAvailability(doctorID string) ([]*models.DoctorAvailability, error) {
	m.availabilityMu.RLock()
	defer m.availabilityMu.RUnlock()

	var result []*models.DoctorAvailability
	for _, avail := range m.availability {
		if avail.DoctorID == doctorID {
			result = append(result, avail)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DayOfWeek < result[j].DayOfWeek
	})
	return result, nil
}

func (m *MemoryStore) GetAvailabilityForDay(doctorID string, dayOfWeek int) (*models.DoctorAvailability, error) {
	m.availabilityMu.RLock()
	defer m.availabilityMu.RUnlock()

	avail, exists := m.availability[availabilityKey(doctorID, dayOfWeek)]
	if !exists {
		return nil, fmt.Errorf("availability not found")
	}
	return avail, nil
}

func (m *MemoryStore) DeleteAvailability(doctorID string, dayOfWeek int) error {
	m.availabilityMu.Lock()
	defer m.availabilityMu.Unlock()

	key := availabilityKey(doctorID, dayOfWeek)
	if _, exists := m.availability[key]; !exists {
		return fmt.Errorf("availability not found")
	}
	delete(m.availability, key)
	return nil
}

// Appointment operations

func (m *MemoryStore) CreateAppointment(appt *models.Appointment) (*models.Appointment, error) {
	doctor, err := m.GetDoctorByID(appt.DoctorID)
	if err != nil {
		return nil, err
	}

	m.appointmentMu.Lock()
	defer m.appointmentMu.Unlock()

	// Reject double-booking of the same slot
	for _, existing := range m.appointments {
		if existing.DoctorID == appt.DoctorID && existing.DateTime.Equal(appt.DateTime) {
			return nil, fmt.Errorf("slot already booked")
		}
	}

	m.appointmentCounter[appt.DoctorID]++
	appt.AppointmentID = fmt.Sprintf("%s-%04d", doctor.AppointmentPrefix(), m.appointmentCounter[appt.DoctorID])
	appt.CreatedAt = time.Now()
	appt.UpdatedAt = time.Now()

	m.appointments[appt.AppointmentID] = appt
	return appt, nil
}

func (m *MemoryStore) GetAppointment(appointmentID string) (*models.Appointment, error) {
	m.appointmentMu.RLock()
	defer m.appointmentMu.RUnlock()

	appt, exists := m.appointments[appointmentID]
	if !exists {
		return nil, fmt.Errorf("appointment not found")
	}
	return appt, nil
}

func (m *MemoryStore) GetAppointmentsByDoctor(doctorID string) ([]*models.Appointment, error) {
	m.appointmentMu.RLock()
	defer m.appointmentMu.RUnlock()

	var appts []*models.Appointment
	for _, appt := range m.appointments {
		if appt.DoctorID == doctorID {
			appts = append(appts, appt)
		}
	}
	sort.Slice(appts, func(i, j int) bool {
		return appts[i].DateTime.Before(appts[j].DateTime)
	})
	return appts, nil
}

func (m *MemoryStore) GetAppointmentsByDoctorOnDate(doctorID string, date time.Time) ([]*models.Appointment, error) {
	m.appointmentMu.RLock()
	defer m.appointmentMu.RUnlock()

	y, mo, d := date.Date()
	var appts []*models.Appointment
	for _, appt := range m.appointments {
		ay, amo, ad := appt.DateTime.Date()
		if appt.DoctorID == doctorID && ay == y && amo == mo && ad == d {
			appts = append(appts, appt)
		}
	}
	return appts, nil
}

func (m *MemoryStore) GetUpcomingAppointmentsBetween(from, to time.Time) ([]*models.Appointment, error) {
	m.appointmentMu.RLock()
	defer m.appointmentMu.RUnlock()

	var appts []*models.Appointment
	for _, appt := range m.appointments {
		if appt.Status != models.AppointmentStatusUpcoming {
			continue
		}
		if appt.DateTime.Before(from) || appt.DateTime.After(to) {
			continue
		}
		appts = append(appts, appt)
	}
	return appts, nil
}

func (m *MemoryStore) UpdateAppointmentStatus(appointmentID, status string) error {
	m.appointmentMu.Lock()
	defer m.appointmentMu.Unlock()

	appt, exists := m.appointments[appointmentID]
	if !exists {
		return fmt.Errorf("appointment not found")
	}
	appt.Status = status
	appt.UpdatedAt = time.Now()
	return nil
}

// WhatsApp session operations

func (m *MemoryStore) GetSession(patientPhone, doctorID string) (*models.WhatsAppSession, error) {
	m.sessionMu.RLock()
	defer m.sessionMu.RUnlock()

	session, exists := m.sessions[sessionKey(patientPhone, doctorID)]
	if !exists {
		return nil, fmt.Errorf("session not found")
	}
	return session, nil
}

func (m *MemoryStore) CreateSession(session *models.WhatsAppSession) (*models.WhatsAppSession, error) {
	m.sessionMu.Lock()
	defer m.sessionMu.Unlock()

	key := sessionKey(session.PatientPhone, session.DoctorID)
	if _, exists := m.sessions[key]; exists {
		return nil, fmt.Errorf("session already exists")
	}

	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	session.CreatedAt = time.Now()
	session.UpdatedAt = time.Now()

	m.sessions[key] = session
	return session, nil
}

func (m *MemoryStore) UpdateSession(session *models.WhatsAppSession) error {
	m.sessionMu.Lock()
	defer m.sessionMu.Unlock()

	key := sessionKey(session.PatientPhone, session.DoctorID)
	existing, exists := m.sessions[key]
	if !exists || existing.ID != session.ID {
		return fmt.Errorf("session not found")
	}
	session.UpdatedAt = time.Now()
	m.sessions[key] = session
	return nil
}

func (m *MemoryStore) DeleteSession(id string) (bool, error) {
	m.sessionMu.Lock()
	defer m.sessionMu.Unlock()

	for key, session := range m.sessions {
		if session.ID == id {
			delete(m.sessions, key)
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) DeleteExpiredSessions(now time.Time) error {
	m.sessionMu.Lock()
	defer m.sessionMu.Unlock()

	for key, session := range m.sessions {
		if session.Expired(now) {
			delete(m.sessions, key)
		}
	}
	return nil
}
