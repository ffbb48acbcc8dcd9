package worker

import (
	"context"

	"github.com/goccy/go-json"

	"intel_server/pkg/logger"
)

type Handler struct {
	scoreProcessor    *ScoreProcessor
	insightsProcessor *InsightsProcessor
	log               *logger.Logger
}

func NewHandler(
	scoreProcessor *ScoreProcessor,
	insightsProcessor *InsightsProcessor,
	log *logger.Logger,
) *Handler {
	return &Handler{
		scoreProcessor:    scoreProcessor,
		insightsProcessor: insightsProcessor,
		log:               log,
	}
}

func (h *Handler) Process(ctx context.Context, msg *Message) error {
	h.log.Debug("processing message: %s", msg.Type)

	switch msg.Type {
	case JobScoreCompute:
		return h.scoreProcessor.ProcessCompute(ctx, msg)
	case JobInsightsWarm:
		return h.insightsProcessor.ProcessWarm(ctx, msg)
	default:
		h.log.Warn("unknown job type: %s", msg.Type)
		return nil
	}
}

func ParsePayload[T any](msg *Message) (*T, error) {
	var payload T
	data, err := json.Marshal(msg.Payload)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
