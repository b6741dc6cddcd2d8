package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/propertyops/compliance-docs/constants"
	"github.com/propertyops/compliance-docs/internal/entity"
)

// ErrNotFound is returned when a document id has no row.
var ErrNotFound = errors.New("document not found")

// ErrIllegalTransition is returned when a status update finds the row in a
// state the job state machine does not allow as a predecessor. Terminal
// rows are never mutated.
var ErrIllegalTransition = errors.New("illegal status transition")

type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	Get(ctx context.Context, id uuid.UUID) (*entity.Document, error)

	// MarkProcessing moves queued -> processing and stamps status_changed_at.
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	SetPagesTotal(ctx context.Context, id uuid.UUID, total int) error
	UpsertPage(ctx context.Context, page entity.Page) error
	FinishProcessed(ctx context.Context, id uuid.UUID, pagesProcessed int) error
	FinishFailed(ctx context.Context, id uuid.UUID, reason constants.FailureReason) error

	SaveExtraction(ctx context.Context, ex entity.ComplianceDocExtraction, assetID *string) error

	GetStatus(ctx context.Context, id uuid.UUID) (*entity.JobStatus, error)

	// ListStale returns non-terminal documents untouched for longer than
	// olderThan, oldest first. Used by the startup sweep to re-queue work
	// orphaned by a crash.
	ListStale(ctx context.Context, olderThan time.Duration) ([]uuid.UUID, error)

	// ListRegisterEntries returns processed extractions for a building,
	// most recently completed first.
	ListRegisterEntries(ctx context.Context, buildingID uuid.UUID) ([]entity.RegisterEntry, error)
}

type documentRepo struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewDocumentRepository(pool *pgxpool.Pool, log *slog.Logger) DocumentRepository {
	if log == nil {
		log = slog.Default()
	}
	return &documentRepo{pool: pool, log: log}
}

func (r *documentRepo) Create(ctx context.Context, doc *entity.Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	now := time.Now().UTC()
	doc.Status = constants.StatusQueued
	doc.CreatedAt = now
	doc.StatusChangedAt = now

	_, err := r.pool.Exec(ctx, `
		INSERT INTO documents (id, building_id, filename, mime_type, storage_path,
			status, pages_total, pages_processed, created_at, status_changed_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, 0, $7, $7)`,
		doc.ID, doc.BuildingID, doc.Filename, doc.MIMEType, doc.StoragePath,
		doc.Status, now)
	if err != nil {
		r.log.Error("document create failed", "document_id", doc.ID, "err", err)
		return fmt.Errorf("create document: %w", err)
	}
	r.log.Info("document created", "document_id", doc.ID, "filename", doc.Filename)
	return nil
}

func (r *documentRepo) Get(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	var d entity.Document
	err := r.pool.QueryRow(ctx, `
		SELECT id, building_id, filename, mime_type, storage_path, status,
			failure_reason, pages_total, pages_processed, created_at, status_changed_at
		FROM documents WHERE id = $1`, id).
		Scan(&d.ID, &d.BuildingID, &d.Filename, &d.MIMEType, &d.StoragePath, &d.Status,
			&d.FailureReason, &d.PagesTotal, &d.PagesProcessed, &d.CreatedAt, &d.StatusChangedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &d, nil
}

func (r *documentRepo) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	return r.transition(ctx, id, constants.StatusQueued, constants.StatusProcessing, `
		UPDATE documents SET status = $2, status_changed_at = now()
		WHERE id = $1 AND status = $3`)
}

func (r *documentRepo) SetPagesTotal(ctx context.Context, id uuid.UUID, total int) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE documents SET pages_total = $2 WHERE id = $1`, id, total)
	if err != nil {
		return fmt.Errorf("set pages_total: %w", err)
	}
	return nil
}

func (r *documentRepo) UpsertPage(ctx context.Context, page entity.Page) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO document_pages (document_id, page_number, status, confidence)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (document_id, page_number)
		DO UPDATE SET status = EXCLUDED.status, confidence = EXCLUDED.confidence`,
		page.DocumentID, page.Number, page.Status, page.Confidence)
	if err != nil {
		return fmt.Errorf("upsert page %d: %w", page.Number, err)
	}
	// pages_processed mirrors the page rows so status polls don't need a join.
	_, err = r.pool.Exec(ctx, `
		UPDATE documents SET pages_processed = (
			SELECT count(*) FROM document_pages
			WHERE document_id = $1 AND status <> 'pending'
		) WHERE id = $1`, page.DocumentID)
	if err != nil {
		return fmt.Errorf("refresh pages_processed: %w", err)
	}
	return nil
}

func (r *documentRepo) FinishProcessed(ctx context.Context, id uuid.UUID, pagesProcessed int) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE documents
		SET status = $2, failure_reason = NULL, pages_processed = $3, status_changed_at = now()
		WHERE id = $1 AND status = $4`,
		id, constants.StatusProcessed, pagesProcessed, constants.StatusProcessing)
	if err != nil {
		return fmt.Errorf("finish processed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.transitionConflict(ctx, id, constants.StatusProcessed)
	}
	r.log.Info("document processed", "document_id", id, "pages_processed", pagesProcessed)
	return nil
}

func (r *documentRepo) FinishFailed(ctx context.Context, id uuid.UUID, reason constants.FailureReason) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE documents SET status = $2, failure_reason = $3, status_changed_at = now()
		WHERE id = $1 AND status = $4`,
		id, constants.StatusFailed, reason, constants.StatusProcessing)
	if err != nil {
		return fmt.Errorf("finish failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.transitionConflict(ctx, id, constants.StatusFailed)
	}
	r.log.Warn("document failed", "document_id", id, "reason", reason)
	return nil
}

func (r *documentRepo) transition(ctx context.Context, id uuid.UUID, from, to constants.ProcessingStatus, sql string) error {
	tag, err := r.pool.Exec(ctx, sql, id, to, from)
	if err != nil {
		return fmt.Errorf("transition to %s: %w", to, err)
	}
	if tag.RowsAffected() == 0 {
		return r.transitionConflict(ctx, id, to)
	}
	return nil
}

// transitionConflict distinguishes a missing row from a row in the wrong
// state, so callers get ErrNotFound vs ErrIllegalTransition.
func (r *documentRepo) transitionConflict(ctx context.Context, id uuid.UUID, to constants.ProcessingStatus) error {
	doc, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	r.log.Warn("illegal status transition refused",
		"document_id", id, "from", doc.Status, "to", to)
	return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, doc.Status, to)
}

func (r *documentRepo) SaveExtraction(ctx context.Context, ex entity.ComplianceDocExtraction, assetID *string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO extractions (document_id, doc_type, asset_title, summary,
			frequency_months, last_completed_date, next_due_date, provider,
			reference, confidence, matched_asset_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
		ON CONFLICT (document_id)
		DO UPDATE SET doc_type = EXCLUDED.doc_type, asset_title = EXCLUDED.asset_title,
			summary = EXCLUDED.summary, frequency_months = EXCLUDED.frequency_months,
			last_completed_date = EXCLUDED.last_completed_date,
			next_due_date = EXCLUDED.next_due_date, provider = EXCLUDED.provider,
			reference = EXCLUDED.reference, confidence = EXCLUDED.confidence,
			matched_asset_id = EXCLUDED.matched_asset_id`,
		ex.DocumentID, ex.DocType, ex.AssetTitle, ex.Summary,
		ex.FrequencyMonths, ex.LastCompletedDate, ex.NextDueDate, ex.Provider,
		ex.Reference, ex.Confidence, assetID)
	if err != nil {
		r.log.Error("extraction save failed", "document_id", ex.DocumentID, "err", err)
		return fmt.Errorf("save extraction: %w", err)
	}
	r.log.Info("extraction saved",
		"document_id", ex.DocumentID, "asset_title", ex.AssetTitle, "matched", assetID != nil)
	return nil
}

func (r *documentRepo) GetStatus(ctx context.Context, id uuid.UUID) (*entity.JobStatus, error) {
	doc, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT document_id, page_number, status, confidence
		FROM document_pages WHERE document_id = $1 ORDER BY page_number`, id)
	if err != nil {
		return nil, fmt.Errorf("query pages: %w", err)
	}
	defer rows.Close()

	var pages []entity.Page
	for rows.Next() {
		var p entity.Page
		if err := rows.Scan(&p.DocumentID, &p.Number, &p.Status, &p.Confidence); err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pages: %w", err)
	}

	avg, lowConf := pageAggregates(pages, constants.LowConfidenceThreshold)
	st := &entity.JobStatus{
		DocumentID:      doc.ID,
		Status:          doc.Status,
		PagesTotal:      doc.PagesTotal,
		PagesProcessed:  doc.PagesProcessed,
		ConfidenceAvg:   avg,
		LowConfPages:    lowConf,
		StatusChangedAt: doc.StatusChangedAt,
	}
	if doc.FailureReason != nil {
		msg := constants.HumanReason(*doc.FailureReason)
		st.FailureReason = &msg
	}
	return st, nil
}

func (r *documentRepo) ListStale(ctx context.Context, olderThan time.Duration) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id FROM documents
		WHERE status IN ($1, $2) AND status_changed_at < now() - $3::interval
		ORDER BY status_changed_at`,
		constants.StatusQueued, constants.StatusProcessing, olderThan.String())
	if err != nil {
		return nil, fmt.Errorf("list stale: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan stale id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *documentRepo) ListRegisterEntries(ctx context.Context, buildingID uuid.UUID) ([]entity.RegisterEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT d.building_id, d.filename, e.matched_asset_id,
			e.document_id, e.doc_type, e.asset_title, e.summary,
			e.frequency_months, e.last_completed_date, e.next_due_date,
			e.provider, e.reference, e.confidence
		FROM extractions e
		JOIN documents d ON d.id = e.document_id
		WHERE d.building_id = $1 AND d.status = $2
		ORDER BY e.last_completed_date DESC NULLS LAST, d.created_at DESC`,
		buildingID, constants.StatusProcessed)
	if err != nil {
		return nil, fmt.Errorf("list register entries: %w", err)
	}
	defer rows.Close()

	var out []entity.RegisterEntry
	for rows.Next() {
		var re entity.RegisterEntry
		ex := &re.Extraction
		if err := rows.Scan(&re.BuildingID, &re.Filename, &re.AssetID,
			&ex.DocumentID, &ex.DocType, &ex.AssetTitle, &ex.Summary,
			&ex.FrequencyMonths, &ex.LastCompletedDate, &ex.NextDueDate,
			&ex.Provider, &ex.Reference, &ex.Confidence); err != nil {
			return nil, fmt.Errorf("scan register entry: %w", err)
		}
		out = append(out, re)
	}
	return out, rows.Err()
}
