package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Somnath16/MyHomeoHealth-sub000/internal/models"
	"github.com/Somnath16/MyHomeoHealth-sub000/internal/storage"
)

// AppointmentHandler handles doctor-facing appointment requests
type AppointmentHandler struct {
	store storage.Store
}

// NewAppointmentHandler creates a new appointment handler
func NewAppointmentHandler(store storage.Store) *AppointmentHandler {
	return &AppointmentHandler{store: store}
}

// List returns the authenticated doctor's appointments, optionally filtered
// by ?status=
func (h *AppointmentHandler) List(c *fiber.Ctx) error {
	doctor := authedDoctor(c)

	appts, err := h.store.GetAppointmentsByDoctor(doctor.DoctorID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load appointments",
		})
	}

	if status := c.Query("status"); status != "" {
		filtered := make([]*models.Appointment, 0, len(appts))
		for _, appt := range appts {
			if appt.Status == status {
				filtered = append(filtered, appt)
			}
		}
		appts = filtered
	}

	return c.JSON(fiber.Map{
		"appointments": appts,
	})
}

// StatusUpdateRequest changes an appointment's status
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

var allowedStatusUpdates = map[string]bool{
	models.AppointmentStatusCompleted: true,
	models.AppointmentStatusCancelled: true,
	models.AppointmentStatusPending:   true,
	models.AppointmentStatusUpcoming:  true,
}

// UpdateStatus sets the status of one of the doctor's appointments
func (h *AppointmentHandler) UpdateStatus(c *fiber.Ctx) error {
	doctor := authedDoctor(c)
	appointmentID := c.Params("id")

	var req StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if !allowedStatusUpdates[req.Status] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "status must be one of upcoming, completed, cancelled, pending",
		})
	}

	appt, err := h.store.GetAppointment(appointmentID)
	if err != nil || appt.DoctorID != doctor.DoctorID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Appointment not found",
		})
	}

	if err := h.store.UpdateAppointmentStatus(appointmentID, req.Status); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update appointment",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Appointment updated",
	})
}
