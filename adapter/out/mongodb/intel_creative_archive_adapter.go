package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"intel_server/core/domain"
	"intel_server/core/port/out"
)

const collectionCreatives = "ad_creatives"

// CreativeArchiveAdapter implements out.CreativeArchive using MongoDB.
// Every scoring run upserts the raw creatives it saw, building a
// historical record that outlives the ad's lifetime in the ads library.
type CreativeArchiveAdapter struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// NewCreativeArchiveAdapter creates a new MongoDB creative archive adapter.
func NewCreativeArchiveAdapter(db *mongo.Database) *CreativeArchiveAdapter {
	return &CreativeArchiveAdapter{
		db:         db,
		collection: db.Collection(collectionCreatives),
	}
}

// EnsureIndexes creates necessary indexes for the collection.
func (a *CreativeArchiveAdapter) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ad_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "page_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "creative_key", Value: 1}},
		},
	}

	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// creativeDocument represents the MongoDB document structure.
type creativeDocument struct {
	AdID        string `bson:"ad_id"`
	PageID      string `bson:"page_id"`
	CreativeKey string `bson:"creative_key"`

	Title    string `bson:"title,omitempty"`
	Body     string `bson:"body,omitempty"`
	LinkURL  string `bson:"link_url,omitempty"`
	ImageURL string `bson:"image_url,omitempty"`
	VideoURL string `bson:"video_url,omitempty"`
	CTAType  string `bson:"cta_type,omitempty"`

	Status    string   `bson:"status"`
	Platforms []string `bson:"platforms,omitempty"`
	Countries []string `bson:"countries,omitempty"`

	FirstSeenAt *time.Time `bson:"first_seen_at,omitempty"`
	LastSeenAt  *time.Time `bson:"last_seen_at,omitempty"`
	ArchivedAt  time.Time  `bson:"archived_at"`
}

// ArchiveAds upserts the raw creatives of a page, one document per ad.
func (a *CreativeArchiveAdapter) ArchiveAds(ctx context.Context, pageID string, ads []*domain.Ad) error {
	if len(ads) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(ads))
	now := time.Now().UTC()

	for _, ad := range ads {
		doc := creativeDocument{
			AdID:        ad.ID,
			PageID:      pageID,
			CreativeKey: ad.CreativeKey(),
			Title:       ad.Title,
			Body:        ad.Body,
			LinkURL:     ad.LinkURL,
			ImageURL:    ad.ImageURL,
			VideoURL:    ad.VideoURL,
			CTAType:     ad.CTAType,
			Status:      string(ad.Status),
			Platforms:   ad.Platforms,
			Countries:   ad.Countries,
			FirstSeenAt: ad.FirstSeenAt,
			LastSeenAt:  ad.LastSeenAt,
			ArchivedAt:  now,
		}

		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"ad_id": ad.ID}).
			SetReplacement(doc).
			SetUpsert(true))
	}

	opts := options.BulkWrite().SetOrdered(false)
	if _, err := a.collection.BulkWrite(ctx, models, opts); err != nil {
		return fmt.Errorf("failed to archive creatives: %w", err)
	}

	return nil
}

// Ensure CreativeArchiveAdapter implements out.CreativeArchive
var _ out.CreativeArchive = (*CreativeArchiveAdapter)(nil)
