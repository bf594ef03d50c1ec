package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Comments       *handlers.CommentsHandler
	Reference      *handlers.ReferenceHandler
	Charts         *handlers.ChartsHandler
	Notifications  *handlers.NotificationsHandler
	Chat           *handlers.ChatHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)

	protected := app.Group("", cfg.AuthMiddleware.Handle)

	tickets := protected.Group("/tickets")
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/number/:number", cfg.Tickets.GetTicketByNumber)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Get("/:id/history", cfg.Tickets.History)
	tickets.Get("/:id/comments", cfg.Comments.ListComments)
	tickets.Post("/:id/comments", cfg.Comments.AddComment)
	tickets.Post("/:id/attachments", cfg.Comments.AddAttachment)
	tickets.Get("/:id/chat", cfg.Chat.Thread)
	tickets.Post("/:id/chat", cfg.Chat.Post)

	staff := auth.RequireStaff()
	tickets.Put("/:id", staff, cfg.Tickets.UpdateTicket)
	tickets.Post("/:id/assign", staff, cfg.Tickets.Assign)
	tickets.Post("/:id/status", staff, cfg.Tickets.ChangeStatus)
	tickets.Post("/:id/resolve", staff, cfg.Tickets.Resolve)
	tickets.Post("/:id/reopen", staff, cfg.Tickets.Reopen)
	tickets.Delete("/:id", auth.RequireAdmin(), cfg.Tickets.DeleteTicket)

	protected.Get("/chat/conversations", cfg.Chat.Conversations)

	inbox := protected.Group("/notifications")
	inbox.Get("/", cfg.Notifications.List)
	inbox.Get("/unread-count", cfg.Notifications.UnreadCount)
	inbox.Post("/:id/read", cfg.Notifications.MarkRead)

	reference := protected.Group("/reference")
	reference.Get("/categories", cfg.Reference.ListCategories)
	reference.Get("/priorities", cfg.Reference.ListPriorities)
	reference.Get("/statuses", cfg.Reference.ListStatuses)
	reference.Get("/departments", cfg.Reference.ListDepartments)
	reference.Get("/teams", cfg.Reference.ListTeams)

	admin := protected.Group("/admin", auth.RequireAdmin())
	admin.Post("/categories", cfg.Reference.CreateCategory)
	admin.Put("/categories/:id/parent", cfg.Reference.SetCategoryParent)
	admin.Post("/priorities", cfg.Reference.CreatePriority)
	admin.Post("/statuses", cfg.Reference.CreateStatus)
	admin.Post("/departments", cfg.Reference.CreateDepartment)
	admin.Post("/teams", cfg.Reference.CreateTeam)
	admin.Put("/users/:id/role", cfg.Auth.UpdateAccount)

	protected.Get("/charts/tickets", staff, cfg.Charts.TicketMetrics)
}
