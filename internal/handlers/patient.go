package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Somnath16/MyHomeoHealth-sub000/internal/storage"
)

// PatientHandler handles doctor-facing patient requests
type PatientHandler struct {
	store storage.Store
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(store storage.Store) *PatientHandler {
	return &PatientHandler{store: store}
}

// List returns the authenticated doctor's patients
func (h *PatientHandler) List(c *fiber.Ctx) error {
	doctor := authedDoctor(c)

	patients, err := h.store.GetPatientsByDoctor(doctor.DoctorID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load patients",
		})
	}

	return c.JSON(fiber.Map{
		"patients": patients,
	})
}

// Get returns one of the doctor's patients by patient ID
func (h *PatientHandler) Get(c *fiber.Ctx) error {
	doctor := authedDoctor(c)

	patient, err := h.store.GetPatient(c.Params("id"))
	if err != nil || patient.DoctorID != doctor.DoctorID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Patient not found",
		})
	}

	return c.JSON(patient)
}
