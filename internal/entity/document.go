package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/propertyops/compliance-docs/constants"
)

// Document represents a document processing job for data transfer between
// layers. Created at upload; mutated only by the pipeline; never deleted by
// this subsystem.
type Document struct {
	ID              uuid.UUID                  `json:"id"`
	BuildingID      uuid.UUID                  `json:"building_id"`
	Filename        string                     `json:"filename"`
	MIMEType        string                     `json:"mime_type"`
	StoragePath     string                     `json:"storage_path"`
	Status          constants.ProcessingStatus `json:"status"`
	FailureReason   *constants.FailureReason   `json:"failure_reason,omitempty"`
	PagesTotal      int                        `json:"pages_total"`
	PagesProcessed  int                        `json:"pages_processed"`
	CreatedAt       time.Time                  `json:"created_at"`
	StatusChangedAt time.Time                  `json:"status_changed_at"`
}

// Page is a per-page sub-record of a Document. Page numbers are 1-indexed
// and contiguous. Confidence is nil until the page has been scored and is
// excluded from aggregates while nil.
type Page struct {
	DocumentID uuid.UUID            `json:"document_id"`
	Number     int                  `json:"number"`
	Status     constants.PageStatus `json:"status"`
	Confidence *float32             `json:"confidence,omitempty"`
}

// JobStatus is the read model returned by status polls. ConfidenceAvg is
// the mean of non-nil page confidences, nil when no page has been scored.
// LowConfPages is computed on read, never stored.
type JobStatus struct {
	DocumentID      uuid.UUID                  `json:"document_id"`
	Status          constants.ProcessingStatus `json:"status"`
	FailureReason   *string                    `json:"failure_reason,omitempty"`
	PagesTotal      int                        `json:"pages_total"`
	PagesProcessed  int                        `json:"pages_processed"`
	ConfidenceAvg   *float32                   `json:"confidence_avg"`
	LowConfPages    []int                      `json:"low_conf_pages"`
	StatusChangedAt time.Time                  `json:"status_changed_at"`
}
