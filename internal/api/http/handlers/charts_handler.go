package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/service"
)

// ChartsHandler serves dashboard metrics.
type ChartsHandler struct {
	analytics *service.AnalyticsService
}

// NewChartsHandler constructs handler.
func NewChartsHandler(analytics *service.AnalyticsService) *ChartsHandler {
	return &ChartsHandler{analytics: analytics}
}

// TicketMetrics GET /charts/tickets.
func (h *ChartsHandler) TicketMetrics(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	metrics, err := h.analytics.TicketMetrics(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": metrics})
}
