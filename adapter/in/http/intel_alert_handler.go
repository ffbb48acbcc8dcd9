package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	portin "intel_server/core/port/in"
	"intel_server/pkg/apperr"
	"intel_server/pkg/response"
)

// AlertHandler handles alert read requests.
type AlertHandler struct {
	alerts portin.AlertService
}

// NewAlertHandler creates a new alert handler.
func NewAlertHandler(alerts portin.AlertService) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

// Register registers alert routes.
func (h *AlertHandler) Register(router fiber.Router) {
	router.Get("/pages/:id/alerts", h.ListAlerts)
}

// ListAlerts returns recent alerts for a page, newest first.
func (h *AlertHandler) ListAlerts(c *fiber.Ctx) error {
	pageID := c.Params("id")
	if pageID == "" {
		return apperr.InvalidInput("id", "page id is required")
	}

	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	alerts, err := h.alerts.ListByPage(c.Context(), pageID, limit)
	if err != nil {
		return apperr.FromDomain(err)
	}

	return response.OKWithMeta(c, fiber.Map{"alerts": alerts}, &response.Meta{
		Total: len(alerts),
		Limit: limit,
	})
}
