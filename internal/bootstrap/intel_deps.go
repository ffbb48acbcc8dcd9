package bootstrap

import (
	"context"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"intel_server/adapter/out/messaging"
	"intel_server/adapter/out/mongodb"
	"intel_server/adapter/out/persistence"
	"intel_server/adapter/out/rediscache"
	"intel_server/config"
	"intel_server/core/port/out"
	"intel_server/core/service/alerting"
	"intel_server/core/service/matching"
	"intel_server/core/service/ranking"
	"intel_server/core/service/scoring"
	"intel_server/infra/database"
	"intel_server/pkg/cache"
	"intel_server/pkg/logger"
)

// Dependencies wires the full object graph once; API and worker both
// build on the same instance.
type Dependencies struct {
	Config  *config.Config
	Log     *logger.Logger
	DB      *pgxpool.Pool
	SQLDB   *sqlx.DB
	Redis   *redis.Client
	MongoDB *mongo.Client

	// Repositories
	PageRepo    out.PageRepository
	AdsRepo     out.AdsRepository
	ProductRepo out.ProductRepository
	ScoringRepo out.ScoringRepository
	AlertRepo   out.AlertRepository

	// Redis-backed infrastructure
	RedisCache      *cache.RedisCache
	InsightsCache   out.InsightsCache
	MessageProducer out.MessageProducer

	// MongoDB
	CreativeArchive out.CreativeArchive

	// Services
	ScoringService  *scoring.Service
	AlertService    *alerting.Service
	InsightsBuilder *matching.InsightsBuilder
	RankingService  *ranking.Service
}

// nopInsightsCache stands in when Redis is unavailable. Reads always
// miss so every request computes directly.
type nopInsightsCache struct{}

func (nopInsightsCache) GetJSON(context.Context, string, interface{}) (bool, error) {
	return false, nil
}
func (nopInsightsCache) SetJSON(context.Context, string, interface{}, time.Duration) error {
	return nil
}
func (nopInsightsCache) Delete(context.Context, string) error { return nil }

func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	logLevel := logger.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = logger.LevelDebug
	}
	logger.Init(logger.Config{
		Level:   logLevel,
		Output:  os.Stdout,
		Service: "intel-server",
	})
	log := logger.Default()

	deps := &Dependencies{Config: cfg, Log: log}
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	// Database (pgxpool, used for health checks and raw access)
	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	deps.DB = db
	cleanups = append(cleanups, func() { db.Close() })

	// Database (sqlx for the persistence adapters)
	sqlDB, err := database.NewSQLX(cfg.DatabaseURL)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	deps.SQLDB = sqlDB
	cleanups = append(cleanups, func() { sqlDB.Close() })

	deps.PageRepo = persistence.NewPageRepository(sqlDB)
	deps.AdsRepo = persistence.NewAdsRepository(sqlDB)
	deps.ProductRepo = persistence.NewProductRepository(sqlDB)
	deps.ScoringRepo = persistence.NewScoringRepository(sqlDB)
	deps.AlertRepo = persistence.NewAlertRepository(sqlDB)

	// Redis
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedis(cfg.RedisURL)
		if err != nil {
			log.WithError(err).Warn("redis connection failed, continuing without cache and queue")
		} else {
			deps.Redis = redisClient
			cleanups = append(cleanups, func() { redisClient.Close() })

			deps.RedisCache = cache.NewRedisCache(redisClient)
			deps.InsightsCache = rediscache.NewInsightsCacheAdapter(deps.RedisCache, log)
			deps.MessageProducer = messaging.NewRedisProducer(redisClient)
		}
	}

	if deps.InsightsCache == nil {
		deps.InsightsCache = nopInsightsCache{}
	}

	// MongoDB (creative archive)
	if cfg.MongoDBURL != "" {
		mongoClient, err := mongodb.NewClient(cfg.MongoDBURL)
		if err != nil {
			log.WithError(err).Warn("mongodb connection failed, creative archive disabled")
		} else {
			deps.MongoDB = mongoClient
			cleanups = append(cleanups, func() {
				mongoClient.Disconnect(context.Background())
			})

			archive := mongodb.NewCreativeArchiveAdapter(mongoClient.Database(cfg.MongoDBName))
			if err := archive.EnsureIndexes(context.Background()); err != nil {
				log.WithError(err).Warn("failed to ensure creative archive indexes")
			}
			deps.CreativeArchive = archive
		}
	}

	// Services
	deps.ScoringService = scoring.NewService(
		deps.PageRepo,
		deps.AdsRepo,
		deps.ScoringRepo,
		deps.AlertRepo,
		cfg.Alerts,
		log,
	)
	deps.AlertService = alerting.NewService(deps.AlertRepo, deps.PageRepo, log)
	deps.InsightsBuilder = matching.NewInsightsBuilder(
		deps.PageRepo,
		deps.ProductRepo,
		deps.AdsRepo,
		deps.InsightsCache,
		cfg,
		log,
	)
	deps.RankingService = ranking.NewService(deps.ScoringRepo, log)

	return deps, cleanup, nil
}
