package out

import (
	"context"

	"intel_server/core/domain"
)

// CreativeArchive stores raw ad creative snapshots for audit and later
// creative analysis. Write failures are logged, never fatal to scoring.
type CreativeArchive interface {
	ArchiveAds(ctx context.Context, pageID string, ads []*domain.Ad) error
}
