package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"server/internal/adapter/repo"
	"server/internal/agent"
	"server/internal/generate"
	"server/internal/infra"
	"server/internal/metadata"
	"server/internal/providers/llm"
	"server/internal/providers/replicate"
	"server/internal/queue"
)

// The worker binary consumes the durable queue. It exists for deployments
// that separate HTTP serving from generation; the api binary runs the same
// consumer in-process when pointed at Redis.
func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	if cfg.RedisURL == "" {
		logger.Fatal().Msg("worker: REDIS_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	rdb, err := infra.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: redis connection failed")
	}
	defer func() {
		_ = rdb.Close()
	}()

	runner := infra.NewSQLRunner(pool, logger)
	contentRepo := repo.NewContentRepository(runner)
	batchRepo := repo.NewBatchRepository(runner)
	agentRepo := repo.NewAgentRepository(runner, logger)

	var completer llm.Completer = llm.Disabled{}
	if cfg.OpenAIAPIKey != "" {
		client, err := llm.NewClient(llm.Options{
			APIKey:       cfg.OpenAIAPIKey,
			BaseURL:      cfg.OpenAIBaseURL,
			Organization: cfg.OpenAIOrg,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("worker: failed to build llm client")
		}
		completer = client
	}

	var modelRunner generate.ModelRunner = generate.DisabledRunner{}
	if cfg.ReplicateAPIToken != "" {
		client, err := replicate.NewClient(replicate.Options{
			APIToken: cfg.ReplicateAPIToken,
			BaseURL:  cfg.ReplicateBaseURL,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("worker: failed to build replicate client")
		}
		modelRunner = client
	} else {
		logger.Warn().Msg("worker: REPLICATE_API_TOKEN not set, jobs will fail")
	}

	worker := &generate.Worker{
		Enhancer: &agent.Service{
			Agents:       agentRepo,
			Content:      contentRepo,
			LLM:          completer,
			Logger:       logger,
			DefaultModel: cfg.OpenAIModel,
		},
		Runner:  modelRunner,
		Prober:  metadata.NewExtractor(&http.Client{Timeout: cfg.MetadataProbeTimeout}, logger, cfg.MetadataProbeTimeout),
		Content: contentRepo,
		Batches: batchRepo,
		Logger:  logger,
	}

	rq := queue.NewRedisQueue(rdb, worker.Run, logger, queue.RedisQueueOptions{
		MaxAttempts:  cfg.QueueMaxAttempts,
		HistoryLimit: cfg.QueueHistoryLimit,
	})

	logger.Info().Msg("worker: consuming generation queue")
	if err := rq.Consume(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: consumer failed")
	}
	logger.Info().Msg("worker stopped")
}
