package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Attachments    *handlers.AttachmentsHandler
	Catalog        *handlers.CatalogHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
	// UploadsDir is served under /uploads when set.
	UploadsDir string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))
	}
	if cfg.UploadsDir != "" {
		app.Static("/uploads", cfg.UploadsDir)
	}

	anyRole := auth.RequireRoles(domain.RoleAdmin, domain.RoleAgent, domain.RoleCustomer)
	staff := auth.RequireRoles(domain.RoleAdmin, domain.RoleAgent)
	adminOnly := auth.RequireRoles(domain.RoleAdmin)

	// Registered ahead of the authenticated group so it never reaches the
	// token check.
	app.Post("/api/v1/auth/login", cfg.Users.Login)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle)
	api.Get("/auth/me", cfg.Users.Me)

	tickets := api.Group("/tickets")
	tickets.Get("/", anyRole, cfg.Tickets.ListTickets)
	tickets.Get("/stats", anyRole, cfg.Tickets.Stats)
	tickets.Get("/export", adminOnly, cfg.Tickets.Export)
	tickets.Get("/:id", anyRole, cfg.Tickets.GetTicket)
	tickets.Post("/", anyRole, cfg.Tickets.CreateTicket)
	tickets.Put("/:id", staff, cfg.Tickets.UpdateTicket)
	tickets.Post("/:id/comments", staff, cfg.Tickets.AddComment)
	tickets.Post("/:id/attachments", staff, cfg.Attachments.Upload)
	tickets.Post("/:id/attachments/batch", staff, cfg.Attachments.UploadBatch)
	tickets.Delete("/:id/attachments/:attachmentId", staff, cfg.Attachments.Delete)

	api.Post("/uploads/temp", anyRole, cfg.Attachments.UploadTemporary)

	priorities := api.Group("/priorities")
	priorities.Get("/", cfg.Catalog.ListPriorities)
	priorities.Get("/:id", cfg.Catalog.GetPriority)
	priorities.Post("/", adminOnly, cfg.Catalog.CreatePriority)
	priorities.Put("/:id", adminOnly, cfg.Catalog.UpdatePriority)
	priorities.Delete("/:id", adminOnly, cfg.Catalog.DeletePriority)

	tags := api.Group("/tags")
	tags.Get("/", cfg.Catalog.ListTags)
	tags.Post("/", adminOnly, cfg.Catalog.CreateTag)
}
