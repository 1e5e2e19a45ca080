package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/Somnath16/MyHomeoHealth-sub000/internal/services"
	"github.com/Somnath16/MyHomeoHealth-sub000/internal/storage"
)

// ReminderJob sends WhatsApp reminders the evening before each upcoming
// appointment. This runs outside the booking conversation; the booking core
// itself never uses timers.
type ReminderJob struct {
	store     storage.Store
	sender    services.MessageSender
	stopCh    chan struct{}
	isRunning bool
}

// reminderHour is the local hour (24h) at which reminders go out.
const reminderHour = 18

// NewReminderJob creates a new reminder job scheduler
func NewReminderJob(store storage.Store, sender services.MessageSender) *ReminderJob {
	return &ReminderJob{
		store:  store,
		sender: sender,
		stopCh: make(chan struct{}),
	}
}

// Start begins the daily reminder loop
func (j *ReminderJob) Start() {
	if j.isRunning {
		log.Println("Reminder job already running")
		return
	}
	j.isRunning = true

	log.Println("Starting appointment reminder job...")
	go j.run()
}

// Stop halts the reminder loop
func (j *ReminderJob) Stop() {
	if !j.isRunning {
		return
	}
	j.isRunning = false
	close(j.stopCh)
	log.Println("Stopping appointment reminder job...")
}

func (j *ReminderJob) run() {
	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), reminderHour, 0, 0, 0, now.Location())
		if !next.After(now) {
			next = next.AddDate(0, 0, 1)
		}

		log.Printf("Next appointment reminders scheduled in %v", next.Sub(now))

		select {
		case <-time.After(next.Sub(now)):
			j.sendReminders(next)
		case <-j.stopCh:
			return
		}
	}
}

// sendReminders notifies every patient with an upcoming appointment tomorrow
func (j *ReminderJob) sendReminders(now time.Time) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	dayEnd := dayStart.AddDate(0, 0, 1)

	appts, err := j.store.GetUpcomingAppointmentsBetween(dayStart, dayEnd)
	if err != nil {
		log.Printf("Failed to load tomorrow's appointments: %v", err)
		return
	}

	for _, appt := range appts {
		patient, err := j.store.GetPatient(appt.PatientID)
		if err != nil {
			log.Printf("Skipping reminder for %s: %v", appt.AppointmentID, err)
			continue
		}

		doctor, err := j.store.GetDoctorByID(appt.DoctorID)
		if err != nil {
			log.Printf("Skipping reminder for %s: %v", appt.AppointmentID, err)
			continue
		}

		msg := fmt.Sprintf(`🔔 *Appointment Reminder*

Hi %s, this is a reminder of your appointment *%s* with %s tomorrow at %s.

🏥 %s, %s

See you there!`,
			patient.Name,
			appt.AppointmentID,
			doctor.Name,
			appt.DateTime.Format("3:04 PM"),
			doctor.ClinicName,
			doctor.ClinicLocation,
		)

		if err := j.sender.SendWhatsAppMessage(patient.Phone, msg); err != nil {
			log.Printf("Failed to send reminder for %s: %v", appt.AppointmentID, err)
			continue
		}
		log.Printf("Sent reminder for %s to %s", appt.AppointmentID, patient.Phone)
	}
}
