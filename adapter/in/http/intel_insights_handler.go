package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	portin "intel_server/core/port/in"
	"intel_server/pkg/apperr"
	"intel_server/pkg/response"
)

// InsightsHandler handles product-ad insights requests.
type InsightsHandler struct {
	insights portin.InsightsService
}

// NewInsightsHandler creates a new insights handler.
func NewInsightsHandler(insights portin.InsightsService) *InsightsHandler {
	return &InsightsHandler{insights: insights}
}

// Register registers insights routes.
func (h *InsightsHandler) Register(router fiber.Router) {
	pages := router.Group("/pages")

	pages.Get("/:id/insights", h.PageInsights)
	pages.Get("/:id/products/:productId/insights", h.ProductInsights)
}

// PageInsights returns the product-level ad attribution for a page.
// Supports sort_by=match_score|ads_count|last_seen_at plus
// limit/offset pagination.
func (h *InsightsHandler) PageInsights(c *fiber.Ctx) error {
	pageID := c.Params("id")
	if pageID == "" {
		return apperr.InvalidInput("id", "page id is required")
	}

	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	opts := portin.InsightsOptions{
		SortBy: portin.InsightsSort(c.Query("sort_by", string(portin.SortByMatchScore))),
		Limit:  limit,
		Offset: offset,
	}
	switch opts.SortBy {
	case portin.SortByAdsCount, portin.SortByMatchScore, portin.SortByLastSeenAt:
	default:
		return apperr.InvalidInput("sort_by", "must be one of ads_count, match_score, last_seen_at")
	}

	insights, err := h.insights.BuildForPage(c.Context(), pageID, opts)
	if err != nil {
		return apperr.FromDomain(err)
	}

	return response.OKWithMeta(c, insights, &response.Meta{
		Total:   insights.TotalProducts,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+len(insights.Products) < insights.TotalProducts,
	})
}

// ProductInsights returns the ad attribution for a single product.
func (h *InsightsHandler) ProductInsights(c *fiber.Ctx) error {
	pageID := c.Params("id")
	productID := c.Params("productId")
	if pageID == "" || productID == "" {
		return apperr.InvalidInput("id", "page id and product id are required")
	}

	insights, err := h.insights.BuildForProduct(c.Context(), pageID, productID)
	if err != nil {
		return apperr.FromDomain(err)
	}

	return response.OK(c, insights)
}
