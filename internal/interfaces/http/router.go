package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/leads-api/internal/application/analytics"
	"github.com/jhoicas/leads-api/internal/application/leads"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LeadUC      *leads.UseCase
	DashboardUC *appanalytics.DashboardUseCase
	JWTSecret   string
	DefaultDays int
	Production  bool
}

// Router registra las rutas de la API bajo /api.
func Router(app *fiber.App, deps RouterDeps) {
	// Rutas protegidas (Bearer Token si JWTSecret está configurado)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Dashboard
	dashboard := api.Group("/dashboard")
	dashboardHandler := NewDashboardHandler(deps.DashboardUC, deps.DefaultDays, deps.Production)
	dashboard.Get("/", dashboardHandler.Get)
	dashboard.Get("/report", dashboardHandler.Report)

	// Leads; las rutas bulk van antes de /:id
	leadsGroup := api.Group("/leads")
	leadHandler := NewLeadHandler(deps.LeadUC, deps.Production)
	leadsGroup.Patch("/bulk-status", leadHandler.BulkUpdateStatus)
	leadsGroup.Post("/bulk-delete", leadHandler.BulkDelete)
	leadsGroup.Get("/", leadHandler.List)
	leadsGroup.Post("/", leadHandler.Create)
	leadsGroup.Get("/:id", leadHandler.Get)
	leadsGroup.Put("/:id", leadHandler.Update)
	leadsGroup.Delete("/:id", leadHandler.Delete)
}
