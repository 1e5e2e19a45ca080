package models

import (
	"time"

	"gorm.io/gorm"
)

// Appointment represents a booked visit. DateTime is whole-hour granularity;
// the unique (doctor_id, date_time) index keeps a slot from being booked twice
// even under concurrent webhook deliveries.
type Appointment struct {
	gorm.Model

	// AppointmentID is the human-readable identifier shown to patients,
	// e.g. "RAH-0003": doctor-name prefix plus a per-doctor running count.
	AppointmentID string `json:"appointment_id" gorm:"uniqueIndex"`

	PatientID string    `json:"patient_id" gorm:"index"`
	DoctorID  string    `json:"doctor_id" gorm:"uniqueIndex:idx_doctor_slot"`
	DateTime  time.Time `json:"date_time" gorm:"uniqueIndex:idx_doctor_slot"`

	Type   string `json:"type"`   // e.g. "consultation"
	Status string `json:"status"` // "upcoming", "completed", "cancelled", "pending"
	Notes  string `json:"notes"`
}

// Appointment status constants
const (
	AppointmentStatusUpcoming  = "upcoming"
	AppointmentStatusCompleted = "completed"
	AppointmentStatusCancelled = "cancelled"
	AppointmentStatusPending   = "pending"

	AppointmentTypeConsultation = "consultation"
)
