package alerting

import (
	"context"

	"intel_server/core/domain"
	portin "intel_server/core/port/in"
	"intel_server/core/port/out"
	"intel_server/pkg/logger"
)

const defaultAlertLimit = 50

// Service serves persisted alerts for a page.
type Service struct {
	alerts out.AlertRepository
	pages  out.PageRepository
	log    *logger.Logger
}

var _ portin.AlertService = (*Service)(nil)

func NewService(alerts out.AlertRepository, pages out.PageRepository, log *logger.Logger) *Service {
	return &Service{alerts: alerts, pages: pages, log: log}
}

// ListByPage returns the most recent alerts for a page, newest first.
func (s *Service) ListByPage(ctx context.Context, pageID string, limit int) ([]*domain.Alert, error) {
	page, err := s.pages.Get(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, domain.NewEntityNotFound("page", pageID)
	}

	if limit <= 0 {
		limit = defaultAlertLimit
	}

	alerts, err := s.alerts.ListByPage(ctx, pageID, limit)
	if err != nil {
		s.log.WithContext(ctx).WithError(err).WithField("page_id", pageID).Error("failed to list alerts")
		return nil, err
	}
	return alerts, nil
}
