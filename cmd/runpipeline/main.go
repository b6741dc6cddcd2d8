// runpipeline processes a single local file through the full pipeline
// without a database or object store, printing the extraction as JSON.
// Useful for prompt tuning and debugging extraction quality.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/propertyops/compliance-docs/internal/blob"
	"github.com/propertyops/compliance-docs/internal/extract"
	"github.com/propertyops/compliance-docs/internal/llm/openai"
	"github.com/propertyops/compliance-docs/internal/ocr"
	"github.com/propertyops/compliance-docs/internal/pipeline"
	"github.com/propertyops/compliance-docs/internal/repository"
	"github.com/propertyops/compliance-docs/internal/taxonomy"
)

func main() {
	var (
		path    = flag.String("file", "", "path to the document to process (required)")
		ocrURL  = flag.String("ocr-url", os.Getenv("OCR_BASE_URL"), "OCR service base URL")
		timeout = flag.Duration("timeout", 3*time.Minute, "overall processing timeout")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if *path == "" {
		fmt.Fprintln(os.Stderr, "usage: runpipeline -file <document> [-ocr-url <url>] [-v]")
		os.Exit(2)
	}
	if os.Getenv("OPENAI_API_KEY") == "" {
		fmt.Fprintln(os.Stderr, "OPENAI_API_KEY env var is required")
		os.Exit(2)
	}

	data, err := os.ReadFile(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", *path, err)
		os.Exit(1)
	}
	mimeType := mime.TypeByExtension(filepath.Ext(*path))

	var ocrClient ocr.Client
	if *ocrURL != "" {
		ocrClient = ocr.NewHTTPClient(ocr.Config{
			BaseURL: *ocrURL,
			APIKey:  os.Getenv("OCR_API_KEY"),
		}, logger)
	}

	repo := repository.NewMemoryDocumentRepository()
	orch := pipeline.NewOrchestrator(
		repo,
		blob.NewMemoryStore(),
		extract.NewChain(ocrClient, logger),
		openai.NewClient(openai.Config{}, logger),
		taxonomy.NewMatcher(logger),
		pipeline.OrchestratorConfig{},
		logger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	doc, err := orch.Submit(ctx, uuid.New(), filepath.Base(*path), mimeType, data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "submit: %v\n", err)
		os.Exit(1)
	}
	if err := orch.Run(ctx, doc.ID); err != nil {
		fmt.Fprintf(os.Stderr, "run: %v\n", err)
		os.Exit(1)
	}

	st, err := repo.GetStatus(ctx, doc.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "status: %v\n", err)
		os.Exit(1)
	}

	out := map[string]any{"status": st}
	if ex, assetID, ok := repo.Extraction(doc.ID); ok {
		out["extraction"] = ex
		if assetID != nil {
			out["matched_asset_id"] = *assetID
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", err)
		os.Exit(1)
	}
}
