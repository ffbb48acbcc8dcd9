package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	portin "intel_server/core/port/in"
	"intel_server/core/port/out"
	"intel_server/pkg/apperr"
	"intel_server/pkg/response"
)

// ScoreHandler handles score compute and read requests.
type ScoreHandler struct {
	scoring  portin.ScoringService
	producer out.MessageProducer
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(scoring portin.ScoringService, producer out.MessageProducer) *ScoreHandler {
	return &ScoreHandler{
		scoring:  scoring,
		producer: producer,
	}
}

// Register registers score routes.
func (h *ScoreHandler) Register(router fiber.Router) {
	pages := router.Group("/pages")

	pages.Post("/:id/score/compute", h.ComputeScore)
	pages.Get("/:id/score", h.LatestScore)
	pages.Get("/:id/score/history", h.ScoreHistory)
}

// ComputeScore triggers a scoring run for a page. By default the run is
// queued for the worker; ?sync=true runs it inline and returns the
// fresh snapshot.
func (h *ScoreHandler) ComputeScore(c *fiber.Ctx) error {
	pageID := c.Params("id")
	if pageID == "" {
		return apperr.InvalidInput("id", "page id is required")
	}

	// Without a queue the run happens inline regardless of ?sync.
	if c.QueryBool("sync") || h.producer == nil {
		result, err := h.scoring.Compute(c.Context(), pageID)
		if err != nil {
			return apperr.FromDomain(err)
		}
		return response.OK(c, result)
	}

	job := &out.ScoreComputeJob{
		PageID:      pageID,
		RequestedBy: c.Get("X-Request-ID"),
	}
	if err := h.producer.PublishScoreCompute(c.Context(), job); err != nil {
		return apperr.Wrap(err, apperr.CodeInternalError, "failed to enqueue score compute", fiber.StatusInternalServerError)
	}

	return response.Accepted(c, fiber.Map{
		"page_id": pageID,
		"status":  "queued",
	})
}

// LatestScore returns the most recent score snapshot for a page.
func (h *ScoreHandler) LatestScore(c *fiber.Ctx) error {
	pageID := c.Params("id")
	if pageID == "" {
		return apperr.InvalidInput("id", "page id is required")
	}

	snapshot, err := h.scoring.Latest(c.Context(), pageID)
	if err != nil {
		return apperr.FromDomain(err)
	}
	if snapshot == nil {
		return apperr.NotFound("score snapshot")
	}

	return response.OK(c, fiber.Map{
		"snapshot": snapshot,
		"tier":     snapshot.Tier(),
	})
}

// ScoreHistory returns recent score snapshots, newest first.
func (h *ScoreHandler) ScoreHistory(c *fiber.Ctx) error {
	pageID := c.Params("id")
	if pageID == "" {
		return apperr.InvalidInput("id", "page id is required")
	}

	limit, _ := strconv.Atoi(c.Query("limit", "30"))

	history, err := h.scoring.History(c.Context(), pageID, limit)
	if err != nil {
		return apperr.FromDomain(err)
	}

	return response.OKWithMeta(c, fiber.Map{"history": history}, &response.Meta{
		Total: len(history),
		Limit: limit,
	})
}
