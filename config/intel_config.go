package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// generateWorkerID creates a unique worker ID using hostname and PID.
func generateWorkerID() string {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "worker"
	}
	return fmt.Sprintf("%s-%d", hostname, os.Getpid())
}

// MatchConfig holds the product-ad matching weights and thresholds.
// Centrally defined and injected so threshold tuning is a single-point
// change; tests inject alternates without global state.
type MatchConfig struct {
	URLWeight            float64
	HandleWeight         float64
	TextSimilarityWeight float64

	StrongThreshold float64
	MediumThreshold float64
	WeakThreshold   float64

	// TextSimilarityFloor is the minimum similarity ratio below which the
	// text signal contributes nothing, to avoid noise from coincidental
	// short-string overlaps.
	TextSimilarityFloor float64
}

// DefaultMatchConfig returns the production matching defaults.
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		URLWeight:            1.0,
		HandleWeight:         0.7,
		TextSimilarityWeight: 0.4,
		StrongThreshold:      0.8,
		MediumThreshold:      0.5,
		WeakThreshold:        0.3,
		TextSimilarityFloor:  0.6,
	}
}

// AlertThresholds holds the alert detection thresholds.
type AlertThresholds struct {
	// ScoreChange is the minimum |delta| in points for SCORE_JUMP/SCORE_DROP.
	ScoreChange float64
	// ScoreChangeCritical upgrades severity to critical at this |delta|.
	ScoreChangeCritical float64
	// AdsBoostRatio fires NEW_ADS_BOOST when
	// new_ads_count / max(old_ads_count, 1) >= ratio.
	AdsBoostRatio float64
}

// DefaultAlertThresholds returns the production alerting defaults.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		ScoreChange:         10.0,
		ScoreChangeCritical: 25.0,
		AdsBoostRatio:       2.0,
	}
}

type Config struct {
	Port        string
	Environment string

	// Database
	DatabaseURL string
	RedisURL    string
	MongoDBURL  string
	MongoDBName string

	// Scoring / matching / alerting
	Match  MatchConfig
	Alerts AlertThresholds

	// Insights
	InsightsMaxProducts int
	InsightsCacheTTLMin int

	// Worker
	WorkerID          string
	WorkerCount       int
	WorkerQueueSize   int
	WorkerJobTimeout  time.Duration
	WorkerMaxRetries  int
	RescoreLockTTLSec int

	// Consumer (Redis Stream)
	ConsumerBatchSize       int
	ConsumerBlockMS         int
	ConsumerPendingCheckSec int

	// CORS
	AllowedOrigins []string
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
		MongoDBURL:  getEnv("MONGODB_URL", ""),
		MongoDBName: getEnv("MONGODB_DATABASE", "intel"),

		Match: MatchConfig{
			URLWeight:            getEnvFloat("MATCH_URL_WEIGHT", 1.0),
			HandleWeight:         getEnvFloat("MATCH_HANDLE_WEIGHT", 0.7),
			TextSimilarityWeight: getEnvFloat("MATCH_TEXT_WEIGHT", 0.4),
			StrongThreshold:      getEnvFloat("MATCH_STRONG_THRESHOLD", 0.8),
			MediumThreshold:      getEnvFloat("MATCH_MEDIUM_THRESHOLD", 0.5),
			WeakThreshold:        getEnvFloat("MATCH_WEAK_THRESHOLD", 0.3),
			TextSimilarityFloor:  getEnvFloat("MATCH_TEXT_SIM_FLOOR", 0.6),
		},
		Alerts: AlertThresholds{
			ScoreChange:         getEnvFloat("ALERT_SCORE_CHANGE_THRESHOLD", 10.0),
			ScoreChangeCritical: getEnvFloat("ALERT_SCORE_CHANGE_CRITICAL", 25.0),
			AdsBoostRatio:       getEnvFloat("ALERT_ADS_BOOST_RATIO", 2.0),
		},

		InsightsMaxProducts: getEnvInt("INSIGHTS_MAX_PRODUCTS", 500),
		InsightsCacheTTLMin: getEnvInt("INSIGHTS_CACHE_TTL_MIN", 15),

		WorkerID:          getEnv("WORKER_ID", generateWorkerID()),
		WorkerCount:       getEnvInt("WORKER_COUNT", 8),
		WorkerQueueSize:   getEnvInt("WORKER_QUEUE_SIZE", 1000),
		WorkerJobTimeout:  time.Duration(getEnvInt("WORKER_JOB_TIMEOUT_SEC", 60)) * time.Second,
		WorkerMaxRetries:  getEnvInt("WORKER_MAX_RETRIES", 3),
		RescoreLockTTLSec: getEnvInt("RESCORE_LOCK_TTL_SEC", 120),

		ConsumerBatchSize:       getEnvInt("CONSUMER_BATCH_SIZE", 10),
		ConsumerBlockMS:         getEnvInt("CONSUMER_BLOCK_MS", 5000),
		ConsumerPendingCheckSec: getEnvInt("CONSUMER_PENDING_CHECK_SEC", 30),

		AllowedOrigins: []string{getEnv("ALLOWED_ORIGINS", "*")},
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
