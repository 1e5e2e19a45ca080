package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Somnath16/MyHomeoHealth-sub000/internal/models"
)

// DatabaseStore implements Store on top of GORM/PostgreSQL
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a new database-backed storage
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// Doctor operations

func (s *DatabaseStore) CreateDoctor(reg *models.DoctorRegistration, passwordHash string) (*models.Doctor, error) {
	var count int64
	if err := s.db.Model(&models.Doctor{}).Count(&count).Error; err != nil {
		return nil, err
	}

	doctor := &models.Doctor{
		DoctorID:       fmt.Sprintf("DOC%05d", count+1),
		Name:           reg.Name,
		Phone:          reg.Phone,
		WhatsAppPhone:  reg.WhatsAppPhone,
		PasswordHash:   passwordHash,
		ClinicName:     reg.ClinicName,
		ClinicLocation: reg.ClinicLocation,
		BookingEnabled: true,
		IsActive:       true,
	}

	if err := s.db.Create(doctor).Error; err != nil {
		return nil, err
	}
	return doctor, nil
}

func (s *DatabaseStore) GetDoctorByID(doctorID string) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := s.db.Where("doctor_id = ?", doctorID).First(&doctor).Error; err != nil {
		return nil, fmt.Errorf("doctor not found")
	}
	return &doctor, nil
}

func (s *DatabaseStore) GetDoctorByPhone(phone string) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := s.db.Where("phone = ?", phone).First(&doctor).Error; err != nil {
		return nil, fmt.Errorf("doctor not found")
	}
	return &doctor, nil
}

func (s *DatabaseStore) GetDoctorByWhatsAppPhone(phone string) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := s.db.Where("whats_app_phone = ?", phone).First(&doctor).Error; err != nil {
		return nil, fmt.Errorf("doctor not found")
	}
	return &doctor, nil
}

func (s *DatabaseStore) GetAllDoctors() ([]*models.Doctor, error) {
	var doctors []*models.Doctor
	if err := s.db.Find(&doctors).Error; err != nil {
		return nil, err
	}
	return doctors, nil
}

func (s *DatabaseStore) UpdateDoctor(doctor *models.Doctor) error {
	return s.db.Save(doctor).Error
}

// Patient operations

func (s *DatabaseStore) CreatePatient(patient *models.Patient) (*models.Patient, error) {
	var count int64
	if err := s.db.Model(&models.Patient{}).Count(&count).Error; err != nil {
		return nil, err
	}
	patient.PatientID = fmt.Sprintf("PAT%05d", count+1)

	if err := s.db.Create(patient).Error; err != nil {
		return nil, err
	}
	return patient, nil
}

func (s *DatabaseStore) GetPatient(patientID string) (*models.Patient, error) {
	var patient models.Patient
	if err := s.db.Where("patient_id = ?", patientID).First(&patient).Error; err != nil {
		return nil, fmt.Errorf("patient not found")
	}
	return &patient, nil
}

func (s *DatabaseStore) GetPatientByPhone(phone, doctorID string) (*models.Patient, error) {
	var patient models.Patient
	if err := s.db.Where("phone = ? AND doctor_id = ?", phone, doctorID).First(&patient).Error; err != nil {
		return nil, fmt.Errorf("patient not found")
	}
	return &patient, nil
}

func (s *DatabaseStore) GetPatientsByDoctor(doctorID string) ([]*models.Patient, error) {
	var patients []*models.Patient
	if err := s.db.Where("doctor_id = ?", doctorID).Find(&patients).Error; err != nil {
		return nil, err
	}
	return patients, nil
}

// Availability operations

func (s *DatabaseStore) UpsertAvailability(avail *models.DoctorAvailability) (*models.DoctorAvailability, error) {
	if avail.DayOfWeek < 0 || avail.DayOfWeek > 6 {
		return nil, fmt.Errorf("day of week must be between 0 and 6")
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "doctor_id"}, {Name: "day_of_week"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"start_time", "end_time", "is_available", "updated_at",
		}),
	}).Create(avail).Error
	if err != nil {
		return nil, err
	}
	return avail, nil
}

func (s *DatabaseStore) GetAvailability(doctorID string) ([]*models.DoctorAvailability, error) {
	var avail []*models.DoctorAvailability
	if err := s.db.Where("doctor_id = ?", doctorID).Order("day_of_week").Find(&avail).Error; err != nil {
		return nil, err
	}
	return avail, nil
}

func (s *DatabaseStore) GetAvailabilityForDay(doctorID string, dayOfWeek int) (*models.DoctorAvailability, error) {
	var avail models.DoctorAvailability
	err := s.db.Where("doctor_id = ? AND day_of_week = ?", doctorID, dayOfWeek).First(&avail).Error
	if err != nil {
		return nil, fmt.Errorf("availability not found")
	}
	return &avail, nil
}

func (s *DatabaseStore) DeleteAvailability(doctorID string, dayOfWeek int) error {
	res := s.db.Where("doctor_id = ? AND day_of_week = ?", doctorID, dayOfWeek).
		Delete(&models.DoctorAvailability{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("availability not found")
	}
	return nil
}

// Appointment operations

func (s *DatabaseStore) CreateAppointment(appt *models.Appointment) (*models.Appointment, error) {
	doctor, err := s.GetDoctorByID(appt.DoctorID)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.Appointment{}).
		Where("doctor_id = ?", appt.DoctorID).Count(&count).Error; err != nil {
		return nil, err
	}
	appt.AppointmentID = fmt.Sprintf("%s-%04d", doctor.AppointmentPrefix(), count+1)

	// The unique (doctor_id, date_time) index rejects a concurrently booked slot
	if err := s.db.Create(appt).Error; err != nil {
		return nil, fmt.Errorf("slot already booked")
	}
	return appt, nil
}

func (s *DatabaseStore) GetAppointment(appointmentID string) (*models.Appointment, error) {
	var appt models.Appointment
	if err := s.db.Where("appointment_id = ?", appointmentID).First(&appt).Error; err != nil {
		return nil, fmt.Errorf("appointment not found")
	}
	return &appt, nil
}

func (s *DatabaseStore) GetAppointmentsByDoctor(doctorID string) ([]*models.Appointment, error) {
	var appts []*models.Appointment
	if err := s.db.Where("doctor_id = ?", doctorID).Order("date_time").Find(&appts).Error; err != nil {
		return nil, err
	}
	return appts, nil
}

func (s *DatabaseStore) GetAppointmentsByDoctorOnDate(doctorID string, date time.Time) ([]*models.Appointment, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var appts []*models.Appointment
	err := s.db.Where("doctor_id = ? AND date_time >= ? AND date_time < ?", doctorID, dayStart, dayEnd).
		Find(&appts).Error
	if err != nil {
		return nil, err
	}
	return appts, nil
}

func (s *DatabaseStore) GetUpcomingAppointmentsBetween(from, to time.Time) ([]*models.Appointment, error) {
	var appts []*models.Appointment
	err := s.db.Where("status = ? AND date_time >= ? AND date_time <= ?",
		models.AppointmentStatusUpcoming, from, to).Find(&appts).Error
	if err != nil {
		return nil, err
	}
	return appts, nil
}

func (s *DatabaseStore) UpdateAppointmentStatus(appointmentID, status string) error {
	res := s.db.Model(&models.Appointment{}).
		Where("appointment_id = ?", appointmentID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("appointment not found")
	}
	return nil
}

// WhatsApp session operations

func (s *DatabaseStore) GetSession(patientPhone, doctorID string) (*models.WhatsAppSession, error) {
	var session models.WhatsAppSession
	err := s.db.Where("patient_phone = ? AND doctor_id = ?", patientPhone, doctorID).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("session not found")
		}
		return nil, err
	}
	return &session, nil
}

func (s *DatabaseStore) CreateSession(session *models.WhatsAppSession) (*models.WhatsAppSession, error) {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if err := s.db.Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

func (s *DatabaseStore) UpdateSession(session *models.WhatsAppSession) error {
	return s.db.Save(session).Error
}

func (s *DatabaseStore) DeleteSession(id string) (bool, error) {
	res := s.db.Where("id = ?", id).Delete(&models.WhatsAppSession{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *DatabaseStore) DeleteExpiredSessions(now time.Time) error {
	return s.db.Where("expires_at < ?", now).Delete(&models.WhatsAppSession{}).Error
}
