package models

import (
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// DoctorAvailability holds one day of a doctor's weekly schedule. At most one
// row exists per (doctor, day); writes go through upsert semantics.
type DoctorAvailability struct {
	gorm.Model

	DoctorID  string `json:"doctor_id" gorm:"uniqueIndex:idx_doctor_day"`
	DayOfWeek int    `json:"day_of_week" gorm:"uniqueIndex:idx_doctor_day"` // 0=Sunday .. 6=Saturday

	StartTime   string `json:"start_time"` // "HH:MM", 24h
	EndTime     string `json:"end_time"`   // "HH:MM", 24h
	IsAvailable bool   `json:"is_available"`
}

// StartHour returns the hour component of StartTime. Minutes are truncated:
// booking works at whole-hour granularity only.
func (a *DoctorAvailability) StartHour() (int, error) {
	parts := strings.SplitN(a.StartTime, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid start time %q", a.StartTime)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid start time %q", a.StartTime)
	}
	return hour, nil
}

// ValidTimeOfDay reports whether s is a well-formed "HH:MM" 24h time.
func ValidTimeOfDay(s string) bool {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return false
	}
	min, err := strconv.Atoi(parts[1])
	if err != nil || min < 0 || min > 59 {
		return false
	}
	return true
}
