package export

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/propertyops/compliance-docs/internal/entity"
	"github.com/propertyops/compliance-docs/internal/repository"
)

func processedDoc(t *testing.T, repo *repository.MemoryDocumentRepository, buildingID uuid.UUID, filename string, ex entity.ComplianceDocExtraction, assetID *string) {
	t.Helper()
	ctx := context.Background()
	doc := &entity.Document{BuildingID: buildingID, Filename: filename, MIMEType: "application/pdf"}
	if err := repo.Create(ctx, doc); err != nil {
		t.Fatal(err)
	}
	if err := repo.MarkProcessing(ctx, doc.ID); err != nil {
		t.Fatal(err)
	}
	ex.DocumentID = doc.ID
	if err := repo.SaveExtraction(ctx, ex, assetID); err != nil {
		t.Fatal(err)
	}
	if err := repo.FinishProcessed(ctx, doc.ID, 1); err != nil {
		t.Fatal(err)
	}
}

func TestExportRegisterXLSX(t *testing.T) {
	repo := repository.NewMemoryDocumentRepository()
	buildingID := uuid.New()

	fraID := "fire-risk-assessment"
	date := "2024-03-15"
	processedDoc(t, repo, buildingID, "fra.pdf", entity.ComplianceDocExtraction{
		DocType:           "Fire Risk Assessment",
		AssetTitle:        "Fire Risk Assessment",
		Summary:           "• ok",
		LastCompletedDate: &date,
		Confidence:        0.9,
	}, &fraID)
	processedDoc(t, repo, buildingID, "mystery.pdf", entity.ComplianceDocExtraction{
		DocType:    "Unknown Survey",
		AssetTitle: "Some Obscure Survey",
		Summary:    "• unclear",
		Confidence: 0.3,
	}, nil)

	data, err := NewService(repo, nil).ExportRegisterXLSX(context.Background(), buildingID)
	if err != nil {
		t.Fatalf("ExportRegisterXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Compliance Register")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d; want header + 2", len(rows))
	}
	if rows[0][0] != "Compliance Asset" {
		t.Errorf("header = %v", rows[0])
	}

	byFile := map[string][]string{}
	for _, r := range rows[1:] {
		byFile[r[8]] = r
	}
	fra, ok := byFile["fra.pdf"]
	if !ok {
		t.Fatalf("fra.pdf row missing: %v", byFile)
	}
	if fra[0] != "Fire Risk Assessment" || fra[1] != "Fire Safety" || fra[9] != "matched" {
		t.Errorf("fra row = %v", fra)
	}
	if fra[3] != "2024-03-15" {
		t.Errorf("last completed = %q", fra[3])
	}

	mystery, ok := byFile["mystery.pdf"]
	if !ok {
		t.Fatal("unmatched document must still appear in the register")
	}
	if mystery[9] != "needs review" {
		t.Errorf("match column = %q", mystery[9])
	}
}

func TestExportEmptyBuilding(t *testing.T) {
	repo := repository.NewMemoryDocumentRepository()
	data, err := NewService(repo, nil).ExportRegisterXLSX(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("ExportRegisterXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Compliance Register")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Errorf("rows = %d; want header only", len(rows))
	}
}
