package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"intel_server/core/domain"
	portin "intel_server/core/port/in"
	"intel_server/pkg/apperr"
	"intel_server/pkg/response"
)

// RankingHandler handles ranked shop listing requests.
type RankingHandler struct {
	ranking portin.RankingService
}

// NewRankingHandler creates a new ranking handler.
func NewRankingHandler(ranking portin.RankingService) *RankingHandler {
	return &RankingHandler{ranking: ranking}
}

// Register registers ranking routes. The literal route is registered
// before the /pages/:id routes in the bootstrap so it wins the match.
func (h *RankingHandler) Register(router fiber.Router) {
	router.Get("/pages/ranked", h.RankedShops)
}

// RankedShops lists shops ordered by their latest score. An optional
// ?tier= filter narrows the listing to one tier's score range.
func (h *RankingHandler) RankedShops(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	var tier *domain.Tier
	if label := c.Query("tier"); label != "" {
		parsed, ok := domain.ParseTier(label)
		if !ok {
			return apperr.InvalidInput("tier", "unknown tier label")
		}
		tier = &parsed
	}

	shops, total, err := h.ranking.RankedShops(c.Context(), tier, limit, offset)
	if err != nil {
		return apperr.FromDomain(err)
	}

	return response.OKWithMeta(c, fiber.Map{"shops": shops}, &response.Meta{
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+len(shops) < total,
	})
}
