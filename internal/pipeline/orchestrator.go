package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/propertyops/compliance-docs/constants"
	"github.com/propertyops/compliance-docs/internal/blob"
	"github.com/propertyops/compliance-docs/internal/entity"
	"github.com/propertyops/compliance-docs/internal/extract"
	"github.com/propertyops/compliance-docs/internal/llm"
	"github.com/propertyops/compliance-docs/internal/repository"
	"github.com/propertyops/compliance-docs/internal/taxonomy"
)

// Enqueuer hands a document id to the background workers. Satisfied by
// async.Queue; a synchronous stub stands in for tests and the CLI.
type Enqueuer interface {
	Enqueue(documentID uuid.UUID) bool
}

// Orchestrator runs the document pipeline: fetch from storage, extract
// text, extract structured fields, match to the canonical taxonomy, record
// the outcome. Submit is the fast upload path; Run does the work.
type Orchestrator struct {
	repo      repository.DocumentRepository
	store     blob.Store
	tracker   *Tracker
	extractor extract.TextExtractor
	fields    llm.FieldExtractor
	matcher   *taxonomy.Matcher
	log       *slog.Logger

	maxDocChars int
}

type OrchestratorConfig struct {
	MaxDocChars int // per-document prompt cap; 0 means the default
}

func NewOrchestrator(
	repo repository.DocumentRepository,
	store blob.Store,
	extractor extract.TextExtractor,
	fields llm.FieldExtractor,
	matcher *taxonomy.Matcher,
	cfg OrchestratorConfig,
	log *slog.Logger,
) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	if cfg.MaxDocChars <= 0 {
		cfg.MaxDocChars = constants.MaxDocChars
	}
	return &Orchestrator{
		repo:        repo,
		store:       store,
		tracker:     NewTracker(repo, log),
		extractor:   extractor,
		fields:      fields,
		matcher:     matcher,
		log:         log,
		maxDocChars: cfg.MaxDocChars,
	}
}

func (o *Orchestrator) Tracker() *Tracker { return o.tracker }

// Submit stores the upload and creates the queued document row. It does no
// extraction work; the caller enqueues the returned document for the
// background workers so the upload response stays fast.
func (o *Orchestrator) Submit(ctx context.Context, buildingID uuid.UUID, filename, mimeType string, data []byte) (*entity.Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty upload %q", filename)
	}

	id := uuid.New()
	key := fmt.Sprintf("%s/%s/%s", buildingID, id, filename)
	if err := o.store.Put(ctx, key, data, mimeType); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	doc := &entity.Document{
		ID:          id,
		BuildingID:  buildingID,
		Filename:    filename,
		MIMEType:    mimeType,
		StoragePath: key,
	}
	if err := o.repo.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Run processes one queued document to a terminal state. It is idempotent:
// a document already terminal is left alone, and a document stuck in
// processing (a crashed worker) is picked up again. Handled failures are
// recorded on the document and return nil; only infrastructure errors that
// warrant a retry propagate.
func (o *Orchestrator) Run(ctx context.Context, id uuid.UUID) error {
	doc, err := o.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if doc.Status.Terminal() {
		o.log.Info("pipeline.run.skipped", "document_id", id, "status", doc.Status)
		return nil
	}
	if doc.Status == constants.StatusQueued {
		if err := o.tracker.Begin(ctx, id); err != nil {
			// Lost the race to another worker; that worker owns the job now.
			if errors.Is(err, repository.ErrIllegalTransition) {
				return nil
			}
			return err
		}
	}

	data, err := o.store.Get(ctx, doc.StoragePath)
	if err != nil {
		o.log.Error("pipeline.storage.get_failed", "document_id", id, "error", err)
		return o.tracker.Fail(ctx, id, constants.ReasonStorageError)
	}

	res := o.extractor.Extract(ctx, extract.Input{
		Filename: doc.Filename,
		MIME:     doc.MIMEType,
		Data:     data,
	})
	processed, err := o.tracker.RecordPages(ctx, id, res.Pages)
	if err != nil {
		return err
	}

	text := strings.TrimSpace(res.Text())
	if text == "" {
		return o.tracker.Fail(ctx, id, constants.ReasonExtractionEmpty)
	}

	fields, _, err := o.fields.ExtractFields(ctx, llm.ExtractRequest{
		Text:         llm.TruncateDocument(text, o.maxDocChars),
		FilenameHint: doc.Filename,
		AssetTitles:  assetTitles(),
	})
	if err != nil {
		var ee *llm.ExtractionError
		if errors.As(err, &ee) {
			return o.tracker.Fail(ctx, id, ee.Reason)
		}
		// Transport-level trouble: leave the job in processing for the
		// stale sweep rather than burning it to a terminal failure.
		return fmt.Errorf("extract fields: %w", err)
	}

	ex := entity.ComplianceDocExtraction{
		DocumentID:        id,
		DocType:           fields.DocType,
		AssetTitle:        fields.AssetTitle,
		Summary:           fields.Summary,
		FrequencyMonths:   fields.FrequencyMonths,
		LastCompletedDate: fields.LastCompletedDate,
		NextDueDate:       fields.NextDueDate,
		Provider:          fields.Provider,
		Reference:         fields.Reference,
		Confidence:        fields.Confidence,
	}

	// An unresolved match is not a failure; the document links to nothing
	// and the register flags it for manual review.
	var assetID *string
	if hit := o.matcher.Match(fields.AssetTitle); hit != nil {
		assetID = &hit.ID
	} else {
		o.log.Info("pipeline.match.unresolved", "document_id", id, "asset_title", fields.AssetTitle)
	}

	if err := o.repo.SaveExtraction(ctx, ex, assetID); err != nil {
		return err
	}
	return o.tracker.Succeed(ctx, id, processed)
}

// RerunStale re-enqueues documents that have sat in a non-terminal state
// for longer than olderThan. Run on startup and on a timer so jobs
// orphaned by a crash eventually finish.
func (o *Orchestrator) RerunStale(ctx context.Context, olderThan time.Duration, q Enqueuer) (int, error) {
	ids, err := o.repo.ListStale(ctx, olderThan)
	if err != nil {
		return 0, err
	}
	requeued := 0
	for _, id := range ids {
		if q.Enqueue(id) {
			requeued++
		}
	}
	if requeued > 0 {
		o.log.Info("pipeline.stale.requeued", "count", requeued)
	}
	return requeued, nil
}

func assetTitles() []string {
	assets := taxonomy.ListAssets()
	titles := make([]string, len(assets))
	for i, a := range assets {
		titles[i] = a.Title
	}
	return titles
}
