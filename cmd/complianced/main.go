package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/propertyops/compliance-docs/internal/async"
	"github.com/propertyops/compliance-docs/internal/blob"
	"github.com/propertyops/compliance-docs/internal/common"
	"github.com/propertyops/compliance-docs/internal/export"
	"github.com/propertyops/compliance-docs/internal/extract"
	"github.com/propertyops/compliance-docs/internal/llm/openai"
	"github.com/propertyops/compliance-docs/internal/ocr"
	"github.com/propertyops/compliance-docs/internal/pipeline"
	repo "github.com/propertyops/compliance-docs/internal/repository"
	"github.com/propertyops/compliance-docs/internal/server"
	"github.com/propertyops/compliance-docs/internal/taxonomy"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := repo.RunMigrations(cfg.Database.DSN, "db/migrations", logger); err != nil {
		logger.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	pool, err := repo.Open(ctx, repo.Config{
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer repo.Close(pool, logger)

	if err := repo.HealthCheck(ctx, pool, 5*time.Second, logger); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	store, err := blob.NewS3Store(ctx, blob.S3Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		UseSSL:    cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Error("failed to connect to object storage", "error", err)
		os.Exit(1)
	}

	var ocrClient ocr.Client
	if cfg.OCR.BaseURL != "" {
		ocrClient = ocr.NewHTTPClient(ocr.Config{
			BaseURL: cfg.OCR.BaseURL,
			APIKey:  cfg.OCR.APIKey,
			Timeout: cfg.OCR.Timeout,
		}, logger)
	} else {
		logger.Warn("OCR_BASE_URL not set; scanned documents will extract empty")
	}

	openaiClient := openai.NewClient(openai.Config{
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	docRepo := repo.NewDocumentRepository(pool, logger)
	orch := pipeline.NewOrchestrator(
		docRepo,
		store,
		extract.NewChain(ocrClient, logger),
		openaiClient,
		taxonomy.NewMatcher(logger),
		pipeline.OrchestratorConfig{MaxDocChars: cfg.Pipeline.MaxDocChars},
		logger,
	)

	queue := async.NewQueue(orch, logger,
		async.WithWorkers(cfg.Pipeline.Workers),
		async.WithQueueSize(cfg.Pipeline.QueueSize),
		async.WithProcessTimeout(cfg.Pipeline.ProcessTimeout),
	)

	// Re-queue jobs orphaned by a previous crash, then keep sweeping.
	if _, err := orch.RerunStale(ctx, cfg.Pipeline.StaleAfter, queue); err != nil {
		logger.Warn("stale sweep failed", "error", err)
	}
	go func() {
		ticker := time.NewTicker(cfg.Pipeline.StaleSweep)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := orch.RerunStale(ctx, cfg.Pipeline.StaleAfter, queue); err != nil {
					logger.Warn("stale sweep failed", "error", err)
				}
			}
		}
	}()

	handler := server.NewHandler(orch, queue, export.NewService(docRepo, logger), logger)
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("complianced listening", "addr", cfg.Server.Addr)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("http serve error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	queue.Shutdown(shutdownCtx)
}
