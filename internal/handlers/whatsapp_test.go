package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Somnath16/MyHomeoHealth-sub000/internal/models"
	"github.com/Somnath16/MyHomeoHealth-sub000/internal/services"
	"github.com/Somnath16/MyHomeoHealth-sub000/internal/storage"
)

func newWhatsAppTestApp(t *testing.T) (*fiber.App, *storage.MemoryStore, *models.Doctor) {
	t.Helper()

	store := storage.NewMemoryStore()
	doctor, err := store.CreateDoctor(&models.DoctorRegistration{
		Name:           "Rahim Chowdhury",
		Phone:          "+8801900000000",
		WhatsAppPhone:  "+8801900000000",
		ClinicName:     "Arogya Homeo Clinic",
		ClinicLocation: "Dhanmondi, Dhaka",
	}, "")
	require.NoError(t, err)

	// Two weekdays so the 7-day slot scan always finds a future slot
	// regardless of when the test runs.
	for _, day := range []int{1, 4} {
		_, err = store.UpsertAvailability(&models.DoctorAvailability{
			DoctorID:    doctor.DoctorID,
			DayOfWeek:   day,
			StartTime:   "10:00",
			EndTime:     "12:00",
			IsAvailable: true,
		})
		require.NoError(t, err)
	}

	flow := services.NewBookingFlowService(store, services.NewSessionManager(store), services.NewSlotFinder(store))
	handler := NewWhatsAppHandler(store, flow, nil)

	app := fiber.New()
	app.Post("/test/whatsapp", handler.HandleMessage)
	app.Post("/webhook/whatsapp", handler.HandleWebhook)

	return app, store, doctor
}

func postMessage(t *testing.T, app *fiber.App, doctorPhone, patientPhone, message string) (bool, string) {
	t.Helper()

	body, err := json.Marshal(MessageRequest{
		DoctorPhone:  doctorPhone,
		PatientPhone: patientPhone,
		Message:      message,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/test/whatsapp", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &out))
	return out.Success, out.Message
}

func TestMessageEndpointUnknownDoctor(t *testing.T) {
	app, store, _ := newWhatsAppTestApp(t)

	ok, msg := postMessage(t, app, "+8801999999999", "+8801700000000", "book")

	assert.True(t, ok, "transport-level success even for an unknown doctor")
	assert.Contains(t, msg, "not accepting")

	_, err := store.GetSession("+8801700000000", "DOC00001")
	assert.Error(t, err, "no state may be created for an unknown doctor")
}

func TestMessageEndpointBookingDisabled(t *testing.T) {
	app, store, doctor := newWhatsAppTestApp(t)

	doctor.BookingEnabled = false
	require.NoError(t, store.UpdateDoctor(doctor))

	ok, msg := postMessage(t, app, doctor.WhatsAppPhone, "+8801700000000", "book")

	assert.True(t, ok)
	assert.Contains(t, msg, "not accepting")
}

func TestMessageEndpointFullConversation(t *testing.T) {
	app, store, doctor := newWhatsAppTestApp(t)

	steps := []struct {
		message string
		expect  string
	}{
		{"I want to book an appointment", "name"},
		{"Rahim Uddin", "old"},
		{"30", "gender"},
		{"male", "located"},
	}

	for _, step := range steps {
		ok, msg := postMessage(t, app, doctor.WhatsAppPhone, "+8801700000000", step.message)
		require.True(t, ok)
		require.Contains(t, msg, step.expect)
	}

	ok, msg := postMessage(t, app, doctor.WhatsAppPhone, "+8801700000000", "Dhaka")
	require.True(t, ok)
	assert.Contains(t, msg, "Confirmed")
	assert.Contains(t, msg, "Rahim Uddin")

	appts, err := store.GetAppointmentsByDoctor(doctor.DoctorID)
	require.NoError(t, err)
	assert.Len(t, appts, 1)
}

func TestWebhookAcceptsTwilioFormPayload(t *testing.T) {
	app, store, doctor := newWhatsAppTestApp(t)

	form := url.Values{}
	form.Set("MessageSid", "SM123")
	form.Set("From", "whatsapp:+8801700000000")
	form.Set("To", "whatsapp:"+doctor.WhatsAppPhone)
	form.Set("Body", "book")

	req := httptest.NewRequest(http.MethodPost, "/webhook/whatsapp", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	session, err := store.GetSession("+8801700000000", doctor.DoctorID)
	require.NoError(t, err)
	assert.Equal(t, models.StepAwaitingName, session.Step)
}

func TestWebhookIgnoresStatusCallbacks(t *testing.T) {
	app, store, doctor := newWhatsAppTestApp(t)

	form := url.Values{}
	form.Set("MessageSid", "SM123")
	form.Set("From", "whatsapp:+8801700000000")
	// No Body: a delivery status callback

	req := httptest.NewRequest(http.MethodPost, "/webhook/whatsapp", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, err = store.GetSession("+8801700000000", doctor.DoctorID)
	assert.Error(t, err)
}
