package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RishiKendai/pairwise/internal/alignment"
	"github.com/RishiKendai/pairwise/internal/api"
	"github.com/RishiKendai/pairwise/internal/config"
	"github.com/RishiKendai/pairwise/internal/configs/env"
	"github.com/RishiKendai/pairwise/internal/infra/mongo"
	redisInfra "github.com/RishiKendai/pairwise/internal/infra/redis"
	"github.com/RishiKendai/pairwise/internal/logger"
	"github.com/RishiKendai/pairwise/internal/metrics"
	"github.com/RishiKendai/pairwise/internal/plagiarism"
	"github.com/RishiKendai/pairwise/internal/repository"
	"github.com/RishiKendai/pairwise/internal/storage"
	"github.com/RishiKendai/pairwise/internal/stream"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := env.LoadEnv(); err != nil {
		log.Warn().Err(err).Msg("Failed to load .env file, continuing with system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid configuration: %v", err))
	}

	logger.Init(cfg.LogLevel, cfg.LogPretty)
	log.Info().Msg("Starting pairwise server")

	metrics.InitPrometheus()
	metricsServer := api.NewServer(metrics.MetricsHandler(), cfg.MetricsPort)
	api.StartServer(metricsServer, "metrics")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mongoClient, err := mongo.NewClient(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create MongoDB client")
	}
	defer mongoClient.Close(context.Background())

	redisClient, err := redisInfra.NewClient(ctx, cfg.RedisHost, cfg.RedisPassword, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Redis client")
	}
	defer redisClient.Close()

	mongoRepo := repository.NewMongoRepository(mongoClient)
	usersRepo := repository.NewUsersRepository(mongoRepo)
	alignmentsRepo := repository.NewAlignmentsRepository(mongoRepo)
	if err := usersRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to create user indexes")
	}
	if err := alignmentsRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to create alignment indexes")
	}

	uploads, err := storage.NewUploadStore(cfg.UploadDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare upload directory")
	}

	// Validate has already checked both
	policy, _ := cfg.TokenPolicy()
	aligner, err := alignment.New(cfg.AlignmentConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid alignment config")
	}

	memoryCache, err := plagiarism.NewLRUCache(cfg.ResultCacheSize, cfg.ResultCacheTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create result cache")
	}
	resultCache := plagiarism.NewTieredCache(memoryCache, plagiarism.NewRedisCache(redisClient.Client, cfg.ResultCacheTTL))

	workerPool := plagiarism.NewWorkerPool(ctx, cfg.WorkerPoolSize)
	defer workerPool.Close()

	thresholds := plagiarism.RiskThresholds{
		Suspicious:       cfg.RiskSuspicious,
		HighlySuspicious: cfg.RiskHighlySuspicious,
		NearCopy:         cfg.RiskNearCopy,
	}
	service := plagiarism.NewService(workerPool, aligner, policy, resultCache, thresholds)
	recorder := plagiarism.NewRecorder(service, alignmentsRepo, uploads, redisClient.Client,
		cfg.UploadRetentionCount, cfg.ComputationTimeout)

	log.Info().
		Str("policy", policy.String()).
		Str("alignment", aligner.Config().String()).
		Int("workers", workerPool.Size()).
		Msg("Comparison service ready")

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}
	consumerName := fmt.Sprintf("consumer-%s-%d-%s", hostname, os.Getpid(), uuid.New().String()[:8])
	consumer := stream.NewConsumer(
		redisClient.Client,
		cfg.RedisStreamKey,
		cfg.RedisConsumerGroup,
		consumerName,
		recorder,
		stream.NewRetryHandler(redisClient.Client, cfg.RedisDeadLetterKey),
		cfg.StreamRetentionDuration,
	)

	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Redis consumer error")
		}
	}()

	router := api.SetupRoutes(cfg, api.Dependencies{
		Users:      usersRepo,
		Alignments: alignmentsRepo,
		Recorder:   recorder,
		Producer:   stream.NewProducer(redisClient.Client, cfg.RedisStreamKey),
		Statuses:   plagiarism.NewStatusStore(redisClient.Client),
	})
	srv := api.NewServer(router, cfg.ServerPort)
	api.StartServer(srv, "api")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down gracefully...")

	if err := api.ShutdownServer(srv, 30*time.Second); err != nil {
		log.Error().Err(err).Msg("Error shutting down HTTP server")
	}

	cancel()
	<-consumerDone

	if err := api.ShutdownServer(metricsServer, 5*time.Second); err != nil {
		log.Error().Err(err).Msg("Error shutting down metrics server")
	}

	log.Info().Msg("Shutdown complete")
}
