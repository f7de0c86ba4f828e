package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"

	controller "cloudgreet/controllers"
	"cloudgreet/middleware"
	"cloudgreet/utils"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	SetupAuthRoutes(app, db)
	SetupAPIRoutes(app, db)
}

func SetupAuthRoutes(app *fiber.App, db *gorm.DB) {
	authLogger := log.New(os.Stdout, "AUTH: ", log.Ldate|log.Ltime|log.Lshortfile)
	authController := controller.NewAuthController(db, authLogger)

	// Auth routes group with logging middleware
	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public auth endpoints (no authentication required)
	auth.Post("/register", authController.Register)
	auth.Post("/login", authController.Login)
	auth.Post("/refresh", authController.Refresh)

	// Protected auth endpoints (require valid JWT)
	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Get("/me", authController.Me)

	// Billing routes (protected, webhook excepted)
	billingController := controller.NewBillingController(db, log.New(os.Stdout, "BILLING: ", log.LstdFlags))
	billing := app.Group("/billing")
	billing.Post("/webhook", billingController.HandleWebhook)
	billing.Post("/payment-intent", middleware.Protected(), billingController.CreatePaymentIntent)

	authLogger.Println("Authentication routes initialized successfully")
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB) {
	outreachController := controller.NewOutreachController(db, log.New(os.Stdout, "OUTREACH: ", log.LstdFlags))
	salesController := controller.NewSalesController(db, log.New(os.Stdout, "SALES: ", log.LstdFlags), utils.NewMailer())

	api := app.Group("/api/v1", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}), middleware.Protected())

	// Outreach: templates
	outreach := api.Group("/outreach")
	outreach.Get("/templates", outreachController.ListTemplates)
	outreach.Post("/templates", outreachController.CreateTemplate)
	outreach.Put("/templates/:id", outreachController.UpdateTemplate)
	outreach.Delete("/templates/:id", outreachController.DeleteTemplate)

	// Outreach: sequences
	outreach.Get("/sequences", outreachController.ListSequences)
	outreach.Post("/sequences", outreachController.CreateSequence)
	outreach.Get("/sequences/:id", outreachController.GetSequence)
	outreach.Put("/sequences/:id", outreachController.UpdateSequence)
	outreach.Delete("/sequences/:id", outreachController.DeleteSequence)

	// Outreach: stats and provider event intake
	outreach.Get("/stats", outreachController.GetOutreachStats)
	outreach.Post("/events", middleware.EventRateLimiter(), outreachController.RecordOutreachEvent)

	// Sales: lead book
	sales := api.Group("/sales")
	sales.Post("/leads", salesController.CreateProspect)
	sales.Get("/leads", salesController.ListEmployeeLeads)
	sales.Get("/leads/:id", salesController.GetLeadDetail)
	sales.Put("/leads/:id", salesController.UpdateLead)
	sales.Post("/leads/:id/activities", salesController.LogSalesActivity)

	// Sales: tasks and commissions
	sales.Get("/tasks", salesController.ListSalesTasks)
	sales.Post("/tasks/:id/complete", salesController.CompleteTask)
	sales.Get("/commissions", salesController.GetCommissionSummary)
}
