package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/propertyops/compliance-docs/constants"
	"github.com/propertyops/compliance-docs/internal/entity"
	"github.com/propertyops/compliance-docs/internal/extract"
	"github.com/propertyops/compliance-docs/internal/repository"
)

// Tracker owns job status bookkeeping for the pipeline: legal transitions,
// page rows and the final outcome. The repository refuses illegal moves;
// the tracker adds the logging around them.
type Tracker struct {
	repo repository.DocumentRepository
	log  *slog.Logger
}

func NewTracker(repo repository.DocumentRepository, log *slog.Logger) *Tracker {
	if log == nil {
		log = slog.Default()
	}
	return &Tracker{repo: repo, log: log}
}

func (t *Tracker) Begin(ctx context.Context, id uuid.UUID) error {
	if err := t.repo.MarkProcessing(ctx, id); err != nil {
		return err
	}
	t.log.Info("pipeline.job.start", "document_id", id)
	return nil
}

// RecordPages persists one page row per extracted page and returns how
// many were recorded. Pages with no text are kept as empty rows so the
// page count stays honest.
func (t *Tracker) RecordPages(ctx context.Context, id uuid.UUID, pages []extract.PageText) (int, error) {
	if err := t.repo.SetPagesTotal(ctx, id, len(pages)); err != nil {
		return 0, err
	}
	for _, p := range pages {
		status := constants.PageStatusExtracted
		if strings.TrimSpace(p.Text) == "" {
			status = constants.PageStatusEmpty
		}
		page := entity.Page{
			DocumentID: id,
			Number:     p.Number,
			Status:     status,
			Confidence: p.Confidence,
		}
		if err := t.repo.UpsertPage(ctx, page); err != nil {
			return 0, err
		}
	}
	return len(pages), nil
}

func (t *Tracker) Succeed(ctx context.Context, id uuid.UUID, pagesProcessed int) error {
	if err := t.repo.FinishProcessed(ctx, id, pagesProcessed); err != nil {
		return err
	}
	t.log.Info("pipeline.job.processed", "document_id", id, "pages", pagesProcessed)
	return nil
}

func (t *Tracker) Fail(ctx context.Context, id uuid.UUID, reason constants.FailureReason) error {
	if err := t.repo.FinishFailed(ctx, id, reason); err != nil {
		return err
	}
	t.log.Warn("pipeline.job.failed",
		"document_id", id, "reason", reason, "message", constants.HumanReason(reason))
	return nil
}

func (t *Tracker) Status(ctx context.Context, id uuid.UUID) (*entity.JobStatus, error) {
	return t.repo.GetStatus(ctx, id)
}
