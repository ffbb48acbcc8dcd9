package bootstrap

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"intel_server/adapter/in/worker"
	"intel_server/adapter/out/messaging"
	"intel_server/config"
)

// Worker runs the background side: the Redis Streams consumer feeding
// the worker pool.
type Worker struct {
	pool     *worker.Pool
	consumer *messaging.Consumer
	deps     *Dependencies
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	zlog     zerolog.Logger
}

// NewWorker builds the worker on a shared dependency graph.
func NewWorker(cfg *config.Config, deps *Dependencies) (*Worker, error) {
	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
		With().Timestamp().Str("component", "worker").Logger()

	scoreProcessor := worker.NewScoreProcessor(
		deps.ScoringService,
		deps.InsightsBuilder,
		deps.CreativeArchive,
		deps.AdsRepo,
		deps.RedisCache,
		deps.MessageProducer,
		time.Duration(cfg.RescoreLockTTLSec)*time.Second,
		deps.Log,
	)
	insightsProcessor := worker.NewInsightsProcessor(deps.InsightsBuilder, deps.Log)

	handler := worker.NewHandler(scoreProcessor, insightsProcessor, deps.Log)

	poolConfig := worker.DefaultPoolConfig()
	if cfg.WorkerCount > 0 {
		poolConfig.MaxWorkers = cfg.WorkerCount
	}
	if cfg.WorkerQueueSize > 0 {
		poolConfig.QueueSize = cfg.WorkerQueueSize
	}
	if cfg.WorkerJobTimeout > 0 {
		poolConfig.JobTimeout = cfg.WorkerJobTimeout
	}

	pool := worker.NewPool(handler, poolConfig, zlog)

	ctx, cancel := context.WithCancel(context.Background())

	w := &Worker{
		pool:   pool,
		deps:   deps,
		ctx:    ctx,
		cancel: cancel,
		zlog:   zlog,
	}

	if deps.Redis != nil {
		streams := []string{
			messaging.StreamScoreCompute,
			messaging.StreamInsightsWarm,
		}

		w.consumer = messaging.NewConsumer(deps.Redis, &messaging.ConsumerConfig{
			Group:                "intel-workers",
			Consumer:             cfg.WorkerID,
			Streams:              streams,
			Handler:              &streamHandler{worker: w},
			Logger:               zlog,
			PendingCheckInterval: time.Duration(cfg.ConsumerPendingCheckSec) * time.Second,
			MaxRetries:           cfg.WorkerMaxRetries,
			BatchSize:            cfg.ConsumerBatchSize,
			BlockTime:            time.Duration(cfg.ConsumerBlockMS) * time.Millisecond,
		})
		deps.Log.Info("redis stream consumer configured for %d streams", len(streams))
	} else {
		deps.Log.Warn("redis not available, worker will only process direct submissions")
	}

	return w, nil
}

// streamHandler adapts Redis Stream messages to the worker pool.
type streamHandler struct {
	worker *Worker
}

func (h *streamHandler) Handle(ctx context.Context, stream string, data []byte) error {
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		h.worker.zlog.Error().Err(err).Str("stream", stream).Msg("failed to parse stream payload")
		return err
	}

	msg := worker.NewMessage(streamToJobType(stream), payload)

	if !h.worker.pool.Submit(msg) {
		h.worker.zlog.Error().Str("job_type", msg.Type).Msg("failed to submit job to pool")
	}

	return nil
}

// streamToJobType maps Redis stream names to job types.
func streamToJobType(stream string) string {
	switch stream {
	case messaging.StreamScoreCompute:
		return worker.JobScoreCompute
	case messaging.StreamInsightsWarm:
		return worker.JobInsightsWarm
	default:
		return stream
	}
}

// Start launches the pool and the stream consumer.
func (w *Worker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.pool.Start()
	}()

	if w.consumer != nil {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.zlog.Info().Msg("starting redis stream consumer")
			if err := w.consumer.Run(w.ctx); err != nil && err != context.Canceled {
				w.zlog.Error().Err(err).Msg("redis stream consumer error")
			}
		}()
	}
}

// Stop shuts the worker down and waits for in-flight jobs.
func (w *Worker) Stop() {
	w.cancel()
	w.pool.Stop()
	w.wg.Wait()
	w.zlog.Info().Msg("worker stopped")
}
