package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"docsearch/internal/config"
	dbRedis "docsearch/internal/db/redis"
	logpkg "docsearch/internal/logger"
	"docsearch/internal/metrics"
	blobrepo "docsearch/internal/repository/blob"
	"docsearch/internal/repository/embcache"
	indexrepo "docsearch/internal/repository/index"
	"docsearch/internal/transport/arxiv"
	chiTransport "docsearch/internal/transport/chi"
	openaiTransport "docsearch/internal/transport/openai"
	"docsearch/internal/transport/tavily"
	agentuc "docsearch/internal/usecase/agent"
	answeruc "docsearch/internal/usecase/answer"
	healthuc "docsearch/internal/usecase/health"
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

	logger.Info("Starting docsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
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
	logger.Info("Connected to database")

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()

	// Embedder chain: OpenAI provider wrapped in a store-backed cache.
	baseEmbedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})
	embedder := embcache.New(baseEmbedder, store, metrics.EmbeddingCacheTotal, logger)

	completer := openaiTransport.NewCompleter(&openaiTransport.CompleterConfig{
		APIKey:    cfg.Completion.APIKey,
		BaseURL:   cfg.Completion.BaseURL,
		Model:     cfg.Completion.Model,
		MaxTokens: cfg.Completion.MaxTokens,
		Logger:    logger,
	})

	// Repositories
	blobs := blobrepo.New(store, cfg.Ingest.PDFPrefix)
	indexes := indexrepo.New(store, cfg.Embedding.Dimensions)

	// Use case services
	converter := ingestuc.NewPDFConverter(logger)
	ingestSvc := ingestuc.New(blobs, indexes, embedder, converter, logger).
		WithMaxChunkWords(cfg.Ingest.MaxChunkWords)

	selector := answeruc.NewSelector(cfg.Documents)
	if err := selector.Validate(ctx, indexes); err != nil {
		// Indexes appear after the first ingestion run, so a missing one
		// is a warning at startup, not a refusal to boot.
		logger.Warn("Document mapping references missing indexes", zap.Error(err))
	}
	answerSvc := answeruc.New(selector, indexes, blobs, embedder, completer, logger).
		WithTopK(cfg.Retrieval.TopK)

	router := agentuc.NewRouter(
		answerSvc,
		arxiv.New(cfg.Arxiv.BaseURL),
		tavily.New(cfg.Tavily.BaseURL, cfg.Tavily.APIKey),
		logger,
	).WithMaxResults(cfg.Arxiv.MaxResults, cfg.Tavily.MaxResults)

	healthSvc := healthuc.New(store, indexes)

	// Temporal is optional: without it the API still answers queries but
	// cannot trigger ingestion runs.
	var starter chiTransport.IngestStarter
	if cfg.Temporal.HostPort != "" {
		tc, err := client.Dial(client.Options{
			HostPort:  cfg.Temporal.HostPort,
			Namespace: cfg.Temporal.Namespace,
		})
		if err != nil {
			logger.Fatal("Failed to connect to Temporal", zap.Error(err))
		}
		defer tc.Close()
		starter = &temporalStarter{client: tc, taskQueue: cfg.Temporal.TaskQueue}
		logger.Info("Connected to Temporal", zap.String("host_port", cfg.Temporal.HostPort))
	} else {
		logger.Warn("Temporal not configured; POST /ingest is disabled")
	}

	server := chiTransport.NewServer(
		router,
		&documentCatalog{sources: ingestSvc, answers: answerSvc},
		starter,
		healthSvc,
		logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// documentCatalog joins source discovery with the queryable mapping for
// the documents endpoint.
type documentCatalog struct {
	sources *ingestuc.Service
	answers *answeruc.Service
}

func (d *documentCatalog) ListDocuments(ctx context.Context) ([]ingestuc.DocumentRef, error) {
	return d.sources.ListDocuments(ctx)
}

func (d *documentCatalog) Documents() []string {
	return d.answers.Documents()
}

// temporalStarter launches ingestion workflows on a task queue.
type temporalStarter struct {
	client    client.Client
	taskQueue string
}

func (t *temporalStarter) StartIngest(ctx context.Context, pdfKeys []string) (string, error) {
	workflowID := "ingest-" + uuid.NewString()
	_, err := t.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: t.taskQueue,
	}, workflows.IngestWorkflow, workflows.IngestInput{
		RunID:   workflowID,
		PDFKeys: pdfKeys,
	})
	if err != nil {
		return "", fmt.Errorf("start ingest workflow: %w", err)
	}
	return workflowID, nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
