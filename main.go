package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/Somnath16/MyHomeoHealth-sub000/database"
	"github.com/Somnath16/MyHomeoHealth-sub000/internal/jobs"
	"github.com/Somnath16/MyHomeoHealth-sub000/internal/models"
	"github.com/Somnath16/MyHomeoHealth-sub000/internal/routes"
	"github.com/Somnath16/MyHomeoHealth-sub000/internal/services"
	"github.com/Somnath16/MyHomeoHealth-sub000/internal/storage"
)

func main() {
	// Load .env file for local development
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found - checking environment variables")
	}

	twilioAccountSID := os.Getenv("TWILIO_ACCOUNT_SID")
	if twilioAccountSID == "" {
		log.Println("⚠️  Twilio credentials not found - WhatsApp replies will be logged only")
	}

	// Initialize storage
	var store storage.Store

	if os.Getenv("USE_MEMORY_STORE") == "true" {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		log.Println("📦 Connecting to PostgreSQL database...")
		database.Connect()

		log.Println("🔄 Running database migrations...")
		err := database.DB.AutoMigrate(
			&models.Doctor{},
			&models.Patient{},
			&models.Appointment{},
			&models.DoctorAvailability{},
			&models.WhatsAppSession{},
		)
		if err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(database.DB)
		log.Println("✅ Using PostgreSQL database storage")
	}

	// Initialize Twilio service
	twilioService, err := services.NewTwilioService()
	if err != nil {
		log.Printf("⚠️  Twilio service not initialized: %v", err)
	} else {
		log.Println("✅ Twilio service initialized")
	}

	// Set global instances
	storage.SetStore(store)
	services.SetTwilioService(twilioService)

	// Initialize booking services
	sessionManager := services.NewSessionManager(store)
	slotFinder := services.NewSlotFinder(store)
	bookingFlow := services.NewBookingFlowService(store, sessionManager, slotFinder)

	// Initialize and start the appointment reminder job
	var reminderJob *jobs.ReminderJob
	if twilioService != nil {
		reminderJob = jobs.NewReminderJob(store, twilioService)
		reminderJob.Start()
	} else {
		log.Println("⚠️  Reminder job disabled - Twilio not configured")
	}

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "MyHomeoHealth Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Root endpoint with service status
	app.Get("/", func(c *fiber.Ctx) error {
		response := fiber.Map{
			"service":     "MyHomeoHealth Backend API",
			"version":     "1.0.0",
			"status":      "healthy",
			"environment": getEnvironment(),
			"storage":     getStorageType(),
			"whatsapp": fiber.Map{
				"configured": twilioAccountSID != "",
			},
		}

		if os.Getenv("USE_MEMORY_STORE") != "true" && database.DB != nil {
			sqlDB, err := database.DB.DB()
			dbStatus := "connected"
			if err != nil {
				dbStatus = "error: " + err.Error()
			} else if err := sqlDB.Ping(); err != nil {
				dbStatus = "error: " + err.Error()
			}

			var doctorCount, patientCount, appointmentCount, sessionCount int64
			database.DB.Model(&models.Doctor{}).Count(&doctorCount)
			database.DB.Model(&models.Patient{}).Count(&patientCount)
			database.DB.Model(&models.Appointment{}).Count(&appointmentCount)
			database.DB.Model(&models.WhatsAppSession{}).Count(&sessionCount)

			response["database"] = fiber.Map{
				"status":       dbStatus,
				"doctors":      doctorCount,
				"patients":     patientCount,
				"appointments": appointmentCount,
				"sessions":     sessionCount,
			}
		}

		return c.JSON(response)
	})

	// Health check endpoint for monitoring
	app.Get("/health", func(c *fiber.Ctx) error {
		status := "healthy"
		statusCode := 200

		if os.Getenv("USE_MEMORY_STORE") != "true" && database.DB != nil {
			sqlDB, err := database.DB.DB()
			if err != nil || sqlDB.Ping() != nil {
				status = "unhealthy"
				statusCode = 503
			}
		}

		return c.Status(statusCode).JSON(fiber.Map{
			"status": status,
			"services": fiber.Map{
				"database": status == "healthy",
				"twilio":   twilioService != nil,
			},
		})
	})

	// Setup routes
	routes.SetupRoutes(app, store, twilioService, bookingFlow)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		if reminderJob != nil {
			log.Println("⏹️  Stopping reminder job...")
			reminderJob.Stop()
		}
		log.Println("⏹️  Shutting down server...")
		_ = app.Shutdown()
	}()

	log.Println("========================================")
	log.Printf("🚀 MyHomeoHealth Backend starting on port %s", port)
	log.Printf("📊 Storage: %s", getStorageType())
	log.Printf("🌍 Environment: %s", getEnvironment())
	log.Printf("📱 WhatsApp: %s", getWhatsAppStatus(twilioAccountSID))
	log.Println("========================================")

	log.Fatal(app.Listen(":" + port))
}

func getEnvironment() string {
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		return env
	}
	return "development"
}

func getStorageType() string {
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		return "In-Memory (Testing)"
	}
	return "PostgreSQL Database"
}

func getWhatsAppStatus(twilioSID string) string {
	if twilioSID == "" {
		return "Not configured"
	}
	return "Configured"
}
