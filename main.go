package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"intel_server/config"
	"intel_server/internal/bootstrap"
	"intel_server/pkg/logger"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 30 * time.Second

func main() {
	// Load .env if present (local development)
	if err := godotenv.Load(); err != nil {
		logger.Default().Debug("no .env file found, using environment variables")
	}

	mode := flag.String("mode", "all", "Run mode: api, worker, all")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Default().Fatal("failed to load config: %v", err)
	}

	deps, cleanup, err := bootstrap.NewDependencies(cfg)
	if err != nil {
		logger.Default().Fatal("failed to initialize dependencies: %v", err)
	}
	defer cleanup()

	log := deps.Log

	switch *mode {
	case "api":
		runAPI(cfg, deps)
	case "worker":
		runWorker(cfg, deps)
	case "all":
		worker, err := bootstrap.NewWorker(cfg, deps)
		if err != nil {
			log.Fatal("failed to initialize worker: %v", err)
		}
		worker.Start()
		defer worker.Stop()
		runAPI(cfg, deps)
	default:
		log.Fatal("unknown mode: %s", *mode)
	}
}

func runAPI(cfg *config.Config, deps *bootstrap.Dependencies) {
	log := deps.Log
	app := bootstrap.NewAPI(cfg, deps)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutting down API server (timeout: %v)", shutdownTimeout)

		done := make(chan error, 1)
		go func() {
			done <- app.Shutdown()
		}()

		select {
		case err := <-done:
			if err != nil {
				log.Error("error shutting down: %v", err)
			} else {
				log.Info("API server shut down gracefully")
			}
		case <-time.After(shutdownTimeout):
			log.Warn("API shutdown timed out, forcing exit")
		}
	}()

	addr := ":" + cfg.Port
	log.Info("starting API server on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatal("failed to start server: %v", err)
	}
}

func runWorker(cfg *config.Config, deps *bootstrap.Dependencies) {
	log := deps.Log
	worker, err := bootstrap.NewWorker(cfg, deps)
	if err != nil {
		log.Fatal("failed to initialize worker: %v", err)
	}

	log.Info("starting worker")
	worker.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down worker (timeout: %v)", shutdownTimeout)

	done := make(chan struct{})
	go func() {
		worker.Stop()
		close(done)
	}()

	select {
	case <-done:
		log.Info("worker shut down gracefully")
	case <-time.After(shutdownTimeout):
		log.Warn("worker shutdown timed out, forcing exit")
		os.Exit(1)
	}
}
