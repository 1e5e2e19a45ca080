package handlers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Somnath16/MyHomeoHealth-sub000/internal/services"
	"github.com/Somnath16/MyHomeoHealth-sub000/internal/storage"
)

// WhatsAppHandler handles inbound WhatsApp booking messages
type WhatsAppHandler struct {
	store         storage.Store
	flow          *services.BookingFlowService
	twilioService *services.TwilioService
}

// NewWhatsAppHandler creates a new WhatsApp handler
func NewWhatsAppHandler(store storage.Store, flow *services.BookingFlowService, twilioService *services.TwilioService) *WhatsAppHandler {
	return &WhatsAppHandler{
		store:         store,
		flow:          flow,
		twilioService: twilioService,
	}
}

// TwilioWebhookPayload represents an incoming WhatsApp message from Twilio
type TwilioWebhookPayload struct {
	MessageSid string `form:"MessageSid"`
	AccountSid string `form:"AccountSid"`
	From       string `form:"From"` // patient number (whatsapp:+8801700000000)
	To         string `form:"To"`   // doctor's Twilio number
	Body       string `form:"Body"` // message text
	NumMedia   string `form:"NumMedia"`
}

// HandleWebhook processes incoming WhatsApp messages from the Twilio gateway
func (h *WhatsAppHandler) HandleWebhook(c *fiber.Ctx) error {
	var payload TwilioWebhookPayload

	if err := c.BodyParser(&payload); err != nil {
		log.Printf("Error parsing webhook: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook payload",
		})
	}

	// Status callbacks have no body; acknowledge and move on
	if payload.Body == "" || payload.From == "" {
		return c.SendStatus(fiber.StatusOK)
	}

	patientPhone := stripWhatsAppPrefix(payload.From)
	doctorPhone := stripWhatsAppPrefix(payload.To)

	log.Printf("📱 WhatsApp message from %s to %s: %s", patientPhone, doctorPhone, payload.Body)

	reply := h.replyFor(doctorPhone, patientPhone, payload.Body)

	if h.twilioService != nil {
		if err := h.twilioService.SendWhatsAppMessage(patientPhone, reply); err != nil {
			log.Printf("❌ Failed to send WhatsApp response: %v", err)
		}
	} else {
		log.Printf("📤 Response (not sent - Twilio not configured): %s", reply)
	}

	return c.SendStatus(fiber.StatusOK)
}

// MessageRequest is the JSON form of an inbound message, used by the
// development endpoint and by gateways that deliver JSON instead of
// Twilio form payloads.
type MessageRequest struct {
	DoctorPhone  string `json:"doctorPhone"`
	PatientPhone string `json:"patientPhone"`
	Message      string `json:"message"`
}

// HandleMessage processes a JSON inbound message and returns the reply
// directly instead of sending it through Twilio.
func (h *WhatsAppHandler) HandleMessage(c *fiber.Ctx) error {
	var req MessageRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	reply := h.replyFor(stripWhatsAppPrefix(req.DoctorPhone), stripWhatsAppPrefix(req.PatientPhone), req.Message)

	return c.JSON(fiber.Map{
		"success": true,
		"message": reply,
	})
}

// replyFor resolves the doctor and runs the conversation engine. Every
// outcome, including an unknown doctor, is a reply string.
func (h *WhatsAppHandler) replyFor(doctorPhone, patientPhone, message string) string {
	doctor, err := h.store.GetDoctorByWhatsAppPhone(doctorPhone)
	if err != nil || !doctor.BookingEnabled || !doctor.IsActive {
		return "Sorry, this number is not accepting WhatsApp bookings right now."
	}
	return h.flow.ProcessMessage(doctor, patientPhone, message)
}

func stripWhatsAppPrefix(phone string) string {
	return strings.TrimPrefix(phone, "whatsapp:")
}
