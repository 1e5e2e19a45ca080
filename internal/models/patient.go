package models

import "gorm.io/gorm"

// Patient represents a patient belonging to one doctor. The same phone number
// may appear under different doctors; (phone, doctor) is the natural key.
type Patient struct {
	gorm.Model

	PatientID string `json:"patient_id" gorm:"uniqueIndex"`
	DoctorID  string `json:"doctor_id" gorm:"uniqueIndex:idx_patient_phone_doctor"`
	Phone     string `json:"phone" gorm:"uniqueIndex:idx_patient_phone_doctor"`

	Name     string `json:"name"`
	Age      int    `json:"age"`
	Gender   string `json:"gender"` // "Male", "Female", "Other"
	Location string `json:"location"`
}
