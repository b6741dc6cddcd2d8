package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/propertyops/compliance-docs/internal/entity"
	"github.com/propertyops/compliance-docs/internal/repository"
	"github.com/propertyops/compliance-docs/internal/taxonomy"
)

// Service is a tiny façade over the repository that produces XLSX bytes
// for the compliance register export.
type Service struct {
	repo   repository.DocumentRepository
	logger *slog.Logger
}

func NewService(repo repository.DocumentRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// ExportRegisterXLSX returns the compliance register for one building as an
// XLSX workbook. Unmatched documents get a "review" row rather than being
// silently dropped.
func (s *Service) ExportRegisterXLSX(ctx context.Context, buildingID uuid.UUID) ([]byte, error) {
	start := time.Now()

	entries, err := s.repo.ListRegisterEntries(ctx, buildingID)
	if err != nil {
		return nil, fmt.Errorf("query register entries: %w", err)
	}

	assetsByID := map[string]entity.CanonicalAsset{}
	for _, a := range taxonomy.ListAssets() {
		assetsByID[a.ID] = a
	}

	f := excelize.NewFile()
	const sheet = "Compliance Register"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	// Drop the default sheet excelize creates.
	if index, _ := f.GetSheetIndex("Sheet1"); index != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{
		"Compliance Asset",
		"Category",
		"Document Type",
		"Last Completed",
		"Next Due",
		"Frequency (months)",
		"Provider",
		"Reference",
		"Source File",
		"Match",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, e := range entries {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		assetTitle := e.Extraction.AssetTitle
		category := ""
		match := "needs review"
		if e.AssetID != nil {
			if a, ok := assetsByID[*e.AssetID]; ok {
				assetTitle = a.Title
				category = a.Category
				match = "matched"
			}
		}

		write(1, assetTitle)
		write(2, category)
		write(3, e.Extraction.DocType)
		write(4, deref(e.Extraction.LastCompletedDate))
		write(5, deref(e.Extraction.NextDueDate))
		if e.Extraction.FrequencyMonths != nil {
			write(6, *e.Extraction.FrequencyMonths)
		} else {
			write(6, "")
		}
		write(7, deref(e.Extraction.Provider))
		write(8, deref(e.Extraction.Reference))
		write(9, e.Filename)
		write(10, match)
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("register export complete",
		"building_id", buildingID,
		"rows", len(entries),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
