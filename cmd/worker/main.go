package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"docsearch/internal/activities"
	"docsearch/internal/config"
	dbRedis "docsearch/internal/db/redis"
	logpkg "docsearch/internal/logger"
	"docsearch/internal/metrics"
	blobrepo "docsearch/internal/repository/blob"
	"docsearch/internal/repository/embcache"
	indexrepo "docsearch/internal/repository/index"
	openaiTransport "docsearch/internal/transport/openai"
	ingestuc "docsearch/internal/usecase/ingest"
	"docsearch/internal/version"
	"docsearch/internal/workflows"
)

func main() {
	_ = godotenv.Load(".env")

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting docsearch ingestion worker",
		zap.String("version", version.Version),
		zap.String("env", env),
		zap.String("temporal_host", cfg.Temporal.HostPort),
		zap.String("task_queue", cfg.Temporal.TaskQueue),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}

	metrics.RegisterPipelineMetrics()

	baseEmbedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})
	embedder := embcache.New(baseEmbedder, store, metrics.EmbeddingCacheTotal, logger)

	blobs := blobrepo.New(store, cfg.Ingest.PDFPrefix)
	indexes := indexrepo.New(store, cfg.Embedding.Dimensions)
	converter := ingestuc.NewPDFConverter(logger)
	ingestSvc := ingestuc.New(blobs, indexes, embedder, converter, logger).
		WithMaxChunkWords(cfg.Ingest.MaxChunkWords)

	tc, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		logger.Fatal("Failed to connect to Temporal", zap.Error(err))
	}
	defer tc.Close()

	w := worker.New(tc, cfg.Temporal.TaskQueue, worker.Options{})
	workflows.Register(w)
	activities.Register(w, activities.New(ingestSvc))

	logger.Info("Worker listening", zap.String("task_queue", cfg.Temporal.TaskQueue))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Fatal("Worker stopped with error", zap.Error(err))
	}
}
