package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/propertyops/compliance-docs/constants"
	"github.com/propertyops/compliance-docs/internal/entity"
)

// MemoryDocumentRepository implements DocumentRepository in process memory
// with the same transition rules as the Postgres implementation. Used by
// the one-shot CLI and by tests.
type MemoryDocumentRepository struct {
	mu          sync.RWMutex
	documents   map[uuid.UUID]*entity.Document
	pages       map[uuid.UUID]map[int]entity.Page
	extractions map[uuid.UUID]entity.ComplianceDocExtraction
	matches     map[uuid.UUID]*string
}

func NewMemoryDocumentRepository() *MemoryDocumentRepository {
	return &MemoryDocumentRepository{
		documents:   map[uuid.UUID]*entity.Document{},
		pages:       map[uuid.UUID]map[int]entity.Page{},
		extractions: map[uuid.UUID]entity.ComplianceDocExtraction{},
		matches:     map[uuid.UUID]*string{},
	}
}

func (m *MemoryDocumentRepository) Create(_ context.Context, doc *entity.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	now := time.Now().UTC()
	doc.Status = constants.StatusQueued
	doc.CreatedAt = now
	doc.StatusChangedAt = now
	cp := *doc
	m.documents[doc.ID] = &cp
	return nil
}

func (m *MemoryDocumentRepository) Get(_ context.Context, id uuid.UUID) (*entity.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.documents[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

func (m *MemoryDocumentRepository) MarkProcessing(_ context.Context, id uuid.UUID) error {
	return m.setStatus(id, constants.StatusProcessing, nil)
}

func (m *MemoryDocumentRepository) SetPagesTotal(_ context.Context, id uuid.UUID, total int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.documents[id]
	if !ok {
		return ErrNotFound
	}
	doc.PagesTotal = total
	return nil
}

func (m *MemoryDocumentRepository) UpsertPage(_ context.Context, page entity.Page) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.documents[page.DocumentID]
	if !ok {
		return ErrNotFound
	}
	byNum, ok := m.pages[page.DocumentID]
	if !ok {
		byNum = map[int]entity.Page{}
		m.pages[page.DocumentID] = byNum
	}
	byNum[page.Number] = page

	processed := 0
	for _, p := range byNum {
		if p.Status != constants.PageStatusPending {
			processed++
		}
	}
	doc.PagesProcessed = processed
	return nil
}

func (m *MemoryDocumentRepository) FinishProcessed(_ context.Context, id uuid.UUID, pagesProcessed int) error {
	if err := m.setStatus(id, constants.StatusProcessed, nil); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[id].PagesProcessed = pagesProcessed
	return nil
}

func (m *MemoryDocumentRepository) FinishFailed(_ context.Context, id uuid.UUID, reason constants.FailureReason) error {
	return m.setStatus(id, constants.StatusFailed, &reason)
}

func (m *MemoryDocumentRepository) setStatus(id uuid.UUID, to constants.ProcessingStatus, reason *constants.FailureReason) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.documents[id]
	if !ok {
		return ErrNotFound
	}
	if !constants.CanTransition(doc.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, doc.Status, to)
	}
	doc.Status = to
	doc.FailureReason = reason
	doc.StatusChangedAt = time.Now().UTC()
	return nil
}

func (m *MemoryDocumentRepository) SaveExtraction(_ context.Context, ex entity.ComplianceDocExtraction, assetID *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.documents[ex.DocumentID]; !ok {
		return ErrNotFound
	}
	m.extractions[ex.DocumentID] = ex
	m.matches[ex.DocumentID] = assetID
	return nil
}

func (m *MemoryDocumentRepository) GetStatus(_ context.Context, id uuid.UUID) (*entity.JobStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.documents[id]
	if !ok {
		return nil, ErrNotFound
	}

	pages := m.sortedPages(id)
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

func (m *MemoryDocumentRepository) ListStale(_ context.Context, olderThan time.Duration) ([]uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cutoff := time.Now().UTC().Add(-olderThan)
	var ids []uuid.UUID
	for id, doc := range m.documents {
		if !doc.Status.Terminal() && doc.StatusChangedAt.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		return m.documents[ids[i]].StatusChangedAt.Before(m.documents[ids[j]].StatusChangedAt)
	})
	return ids, nil
}

func (m *MemoryDocumentRepository) ListRegisterEntries(_ context.Context, buildingID uuid.UUID) ([]entity.RegisterEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []entity.RegisterEntry
	for id, ex := range m.extractions {
		doc := m.documents[id]
		if doc == nil || doc.BuildingID != buildingID || doc.Status != constants.StatusProcessed {
			continue
		}
		out = append(out, entity.RegisterEntry{
			BuildingID: doc.BuildingID,
			Filename:   doc.Filename,
			AssetID:    m.matches[id],
			Extraction: ex,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Extraction.DocumentID.String() < out[j].Extraction.DocumentID.String()
	})
	return out, nil
}

// Extraction returns the saved extraction and match for assertions in tests.
func (m *MemoryDocumentRepository) Extraction(id uuid.UUID) (entity.ComplianceDocExtraction, *string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ex, ok := m.extractions[id]
	return ex, m.matches[id], ok
}

func (m *MemoryDocumentRepository) sortedPages(id uuid.UUID) []entity.Page {
	byNum := m.pages[id]
	nums := make([]int, 0, len(byNum))
	for n := range byNum {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	pages := make([]entity.Page, 0, len(nums))
	for _, n := range nums {
		pages = append(pages, byNum[n])
	}
	return pages
}
