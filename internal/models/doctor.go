package models

import (
	"strings"
	"unicode"

	"gorm.io/gorm"
)

// Doctor represents a doctor account in the clinic
type Doctor struct {
	gorm.Model

	DoctorID string `json:"doctor_id" gorm:"uniqueIndex"`
	Name     string `json:"name"`
	Phone    string `json:"phone" gorm:"uniqueIndex"` // login phone

	// WhatsAppPhone is the Twilio number patients message for this doctor.
	// Inbound webhooks are resolved to a doctor through it.
	WhatsAppPhone string `json:"whatsapp_phone" gorm:"uniqueIndex"`

	PasswordHash   string `json:"-"`
	ClinicName     string `json:"clinic_name"`
	ClinicLocation string `json:"clinic_location"`

	BookingEnabled bool `json:"booking_enabled" gorm:"default:true"`
	IsActive       bool `json:"is_active" gorm:"default:true"`
}

// DoctorRegistration is the payload for creating a doctor account
type DoctorRegistration struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	WhatsAppPhone  string `json:"whatsapp_phone"`
	Password       string `json:"password"`
	ClinicName     string `json:"clinic_name"`
	ClinicLocation string `json:"clinic_location"`
}

// AppointmentPrefix derives the human-readable appointment ID prefix from the
// doctor's name: the first three letters, uppercased. Falls back to "APT"
// when the name has fewer than three letters.
func (d *Doctor) AppointmentPrefix() string {
	var letters []rune
	for _, r := range d.Name {
		if unicode.IsLetter(r) && r < 128 {
			letters = append(letters, r)
			if len(letters) == 3 {
				break
			}
		}
	}
	if len(letters) < 3 {
		return "APT"
	}
	return strings.ToUpper(string(letters))
}
