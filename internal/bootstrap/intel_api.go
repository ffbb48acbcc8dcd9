package bootstrap

import (
	"strings"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"

	httpin "intel_server/adapter/in/http"
	"intel_server/config"
	"intel_server/infra/middleware"
)

// NewAPI builds the fiber app with the full route table wired onto the
// shared dependency graph.
func NewAPI(cfg *config.Config, deps *Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),
		ReadBufferSize:        16384,
		WriteBufferSize:       16384,

		// go-json over encoding/json for serialization throughput
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,

		BodyLimit:   10 * 1024 * 1024,
		Concurrency: 256 * 1024,
	})

	app.Use(middleware.Recover())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	allowOrigins := strings.Join(cfg.AllowedOrigins, ",")
	if allowOrigins == "" {
		allowOrigins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  allowOrigins,
		AllowMethods:  "GET,POST,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,X-Request-ID",
		ExposeHeaders: "X-Request-ID",
	}))

	// Health check (outside the versioned API group)
	healthHandler := httpin.NewHealthHandler(deps.DB, deps.Redis, deps.MongoDB)
	healthHandler.Register(app)

	api := app.Group("/api/v1")

	// /pages/ranked must precede the /pages/:id routes.
	rankingHandler := httpin.NewRankingHandler(deps.RankingService)
	rankingHandler.Register(api)

	scoreHandler := httpin.NewScoreHandler(deps.ScoringService, deps.MessageProducer)
	scoreHandler.Register(api)

	insightsHandler := httpin.NewInsightsHandler(deps.InsightsBuilder)
	insightsHandler.Register(api)

	alertHandler := httpin.NewAlertHandler(deps.AlertService)
	alertHandler.Register(api)

	return app
}
