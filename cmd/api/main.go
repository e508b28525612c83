package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"server/internal/adapter/repo"
	"server/internal/agent"
	"server/internal/generate"
	"server/internal/http/handlers"
	"server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/infra/geoip"
	"server/internal/metadata"
	"server/internal/providers/llm"
	"server/internal/providers/replicate"
	"server/internal/queue"
	"server/internal/registry"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)
	contentRepo := repo.NewContentRepository(runner)
	ratingRepo := repo.NewRatingRepository(runner, logger)
	batchRepo := repo.NewBatchRepository(runner)
	agentRepo := repo.NewAgentRepository(runner, logger)
	userRepo := repo.NewUserRepository(runner)
	sessionRepo := repo.NewSessionRepository(runner)
	statsRepo := repo.NewStatsRepository(runner)

	if err := userRepo.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		logger.Fatal().Err(err).Msg("failed to ensure admin account")
	}

	var completer llm.Completer = llm.Disabled{}
	if cfg.OpenAIAPIKey != "" {
		client, err := llm.NewClient(llm.Options{
			APIKey:       cfg.OpenAIAPIKey,
			BaseURL:      cfg.OpenAIBaseURL,
			Organization: cfg.OpenAIOrg,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build llm client")
		}
		completer = client
	} else {
		logger.Warn().Msg("OPENAI_API_KEY not set, prompt enhancement disabled")
	}

	agentSvc := &agent.Service{
		Agents:       agentRepo,
		Content:      contentRepo,
		LLM:          completer,
		Logger:       logger,
		DefaultModel: cfg.OpenAIModel,
	}

	var modelRunner generate.ModelRunner = generate.DisabledRunner{}
	if cfg.ReplicateAPIToken != "" {
		client, err := replicate.NewClient(replicate.Options{
			APIToken: cfg.ReplicateAPIToken,
			BaseURL:  cfg.ReplicateBaseURL,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build replicate client")
		}
		modelRunner = client
	} else {
		logger.Warn().Msg("REPLICATE_API_TOKEN not set, generation disabled")
	}

	worker := &generate.Worker{
		Enhancer: agentSvc,
		Runner:   modelRunner,
		Prober:   metadata.NewExtractor(&http.Client{Timeout: cfg.MetadataProbeTimeout}, logger, cfg.MetadataProbeTimeout),
		Content:  contentRepo,
		Batches:  batchRepo,
		Logger:   logger,
	}

	var jobQueue queue.Queue
	if cfg.RedisURL != "" {
		rdb, err := infra.NewRedisClient(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		defer func() {
			_ = rdb.Close()
		}()
		rq := queue.NewRedisQueue(rdb, worker.Run, logger, queue.RedisQueueOptions{
			MaxAttempts:  cfg.QueueMaxAttempts,
			HistoryLimit: cfg.QueueHistoryLimit,
		})
		go func() {
			if err := rq.Consume(ctx); err != nil && ctx.Err() == nil {
				logger.Error().Err(err).Msg("queue consumer stopped")
			}
		}()
		jobQueue = rq
		logger.Info().Msg("using redis-backed job queue")
	} else {
		jobQueue = queue.NewMemoryQueue(worker.Run, logger)
		logger.Warn().Msg("REDIS_URL not set, using in-memory job queue")
	}

	geo, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip unavailable, sessions recorded without country")
	}

	app := &handlers.App{
		Cfg:      cfg,
		Logger:   logger,
		Content:  contentRepo,
		Ratings:  ratingRepo,
		Agents:   agentRepo,
		Users:    userRepo,
		Sessions: sessionRepo,
		Stats:    statsRepo,
		Queue:    jobQueue,
		AgentSvc: agentSvc,
		Geo:      geo,
		Catalog:  registry.Catalog,
	}

	server := infra.NewHTTPServer(cfg, httpapi.NewRouter(app))

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
