package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/propertyops/compliance-docs/constants"
	"github.com/propertyops/compliance-docs/internal/entity"
)

func newDoc(t *testing.T, repo *MemoryDocumentRepository) *entity.Document {
	t.Helper()
	doc := &entity.Document{
		BuildingID: uuid.New(),
		Filename:   "fra.pdf",
		MIMEType:   "application/pdf",
	}
	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return doc
}

func TestTransitionRules(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryDocumentRepository()
	doc := newDoc(t, repo)

	// queued -> processed is not legal; processing must come first.
	if err := repo.FinishProcessed(ctx, doc.ID, 1); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("queued->processed err = %v; want ErrIllegalTransition", err)
	}

	if err := repo.MarkProcessing(ctx, doc.ID); err != nil {
		t.Fatalf("MarkProcessing: %v", err)
	}
	if err := repo.FinishProcessed(ctx, doc.ID, 1); err != nil {
		t.Fatalf("FinishProcessed: %v", err)
	}

	// Terminal rows refuse further moves.
	if err := repo.FinishFailed(ctx, doc.ID, constants.ReasonStorageError); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("processed->failed err = %v; want ErrIllegalTransition", err)
	}
	if err := repo.MarkProcessing(ctx, doc.ID); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("processed->processing err = %v; want ErrIllegalTransition", err)
	}
}

func TestGetStatusAggregates(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryDocumentRepository()
	doc := newDoc(t, repo)

	if err := repo.MarkProcessing(ctx, doc.ID); err != nil {
		t.Fatal(err)
	}
	if err := repo.SetPagesTotal(ctx, doc.ID, 3); err != nil {
		t.Fatal(err)
	}

	conf := func(v float32) *float32 { return &v }
	pages := []entity.Page{
		{DocumentID: doc.ID, Number: 1, Status: constants.PageStatusExtracted, Confidence: nil},
		{DocumentID: doc.ID, Number: 2, Status: constants.PageStatusExtracted, Confidence: conf(0.9)},
		{DocumentID: doc.ID, Number: 3, Status: constants.PageStatusExtracted, Confidence: conf(0.3)},
	}
	for _, p := range pages {
		if err := repo.UpsertPage(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	st, err := repo.GetStatus(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	// Page 1 has a native text layer and no score; the mean covers pages 2
	// and 3 only.
	if st.ConfidenceAvg == nil || *st.ConfidenceAvg < 0.59 || *st.ConfidenceAvg > 0.61 {
		t.Errorf("confidence_avg = %v; want ~0.6", st.ConfidenceAvg)
	}
	if len(st.LowConfPages) != 1 || st.LowConfPages[0] != 3 {
		t.Errorf("low_conf_pages = %v; want [3]", st.LowConfPages)
	}
	if st.PagesProcessed != 3 || st.PagesTotal != 3 {
		t.Errorf("pages %d/%d; want 3/3", st.PagesProcessed, st.PagesTotal)
	}
}

func TestGetStatusNoScoredPages(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryDocumentRepository()
	doc := newDoc(t, repo)

	st, err := repo.GetStatus(ctx, doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if st.ConfidenceAvg != nil {
		t.Errorf("confidence_avg = %v; want nil with no scored pages", st.ConfidenceAvg)
	}
	if st.LowConfPages == nil || len(st.LowConfPages) != 0 {
		t.Errorf("low_conf_pages = %v; want empty list, not null", st.LowConfPages)
	}
}

func TestFailureReasonIsHumanReadable(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryDocumentRepository()
	doc := newDoc(t, repo)

	if err := repo.MarkProcessing(ctx, doc.ID); err != nil {
		t.Fatal(err)
	}
	if err := repo.FinishFailed(ctx, doc.ID, constants.ReasonExtractionEmpty); err != nil {
		t.Fatal(err)
	}

	st, err := repo.GetStatus(ctx, doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if st.FailureReason == nil || *st.FailureReason != "no readable text" {
		t.Errorf("failure_reason = %v", st.FailureReason)
	}
}

func TestListStale(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryDocumentRepository()
	stuck := newDoc(t, repo)
	done := newDoc(t, repo)

	if err := repo.MarkProcessing(ctx, done.ID); err != nil {
		t.Fatal(err)
	}
	if err := repo.FinishProcessed(ctx, done.ID, 1); err != nil {
		t.Fatal(err)
	}

	ids, err := repo.ListStale(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != stuck.ID {
		t.Errorf("stale = %v; want just %s", ids, stuck.ID)
	}
}
