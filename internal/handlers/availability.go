package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Somnath16/MyHomeoHealth-sub000/internal/models"
	"github.com/Somnath16/MyHomeoHealth-sub000/internal/storage"
)

// AvailabilityHandler manages a doctor's weekly schedule
type AvailabilityHandler struct {
	store storage.Store
}

// NewAvailabilityHandler creates a new availability handler
func NewAvailabilityHandler(store storage.Store) *AvailabilityHandler {
	return &AvailabilityHandler{store: store}
}

func authedDoctor(c *fiber.Ctx) *models.Doctor {
	doctor, _ := c.Locals("doctor").(*models.Doctor)
	return doctor
}

// List returns the authenticated doctor's weekly availability
func (h *AvailabilityHandler) List(c *fiber.Ctx) error {
	doctor := authedDoctor(c)

	avail, err := h.store.GetAvailability(doctor.DoctorID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load availability",
		})
	}

	return c.JSON(fiber.Map{
		"availability": avail,
	})
}

// UpsertRequest is one day's schedule
type UpsertRequest struct {
	DayOfWeek   int    `json:"day_of_week"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	IsAvailable bool   `json:"is_available"`
}

// Upsert creates or replaces one day of the doctor's schedule
func (h *AvailabilityHandler) Upsert(c *fiber.Ctx) error {
	doctor := authedDoctor(c)

	var req UpsertRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.DayOfWeek < 0 || req.DayOfWeek > 6 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "day_of_week must be between 0 (Sunday) and 6 (Saturday)",
		})
	}
	if !models.ValidTimeOfDay(req.StartTime) || !models.ValidTimeOfDay(req.EndTime) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "start_time and end_time must be HH:MM in 24h format",
		})
	}

	avail, err := h.store.UpsertAvailability(&models.DoctorAvailability{
		DoctorID:    doctor.DoctorID,
		DayOfWeek:   req.DayOfWeek,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		IsAvailable: req.IsAvailable,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save availability",
		})
	}

	return c.JSON(fiber.Map{
		"message":      "Availability saved",
		"availability": avail,
	})
}

// Delete removes one day of the doctor's schedule
func (h *AvailabilityHandler) Delete(c *fiber.Ctx) error {
	doctor := authedDoctor(c)

	dayOfWeek, err := strconv.Atoi(c.Params("dayOfWeek"))
	if err != nil || dayOfWeek < 0 || dayOfWeek > 6 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "dayOfWeek must be between 0 and 6",
		})
	}

	if err := h.store.DeleteAvailability(doctor.DoctorID, dayOfWeek); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No availability found for that day",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Availability deleted",
	})
}
