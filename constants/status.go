package constants

// ProcessingStatus is the canonical status for rows in documents.
type ProcessingStatus string

// Stable values (store these exact strings in DB).
const (
	StatusQueued     ProcessingStatus = "queued"     // created at upload, waiting for pickup
	StatusProcessing ProcessingStatus = "processing" // pipeline is running
	StatusProcessed  ProcessingStatus = "processed"  // terminal success
	StatusFailed     ProcessingStatus = "failed"     // terminal failure, see reason
)

// Terminal reports whether no further transition may leave s.
func (s ProcessingStatus) Terminal() bool {
	return s == StatusProcessed || s == StatusFailed
}

// CanTransition reports whether from -> to is a legal move in the job
// state machine: queued -> processing -> {processed, failed}.
func CanTransition(from, to ProcessingStatus) bool {
	switch from {
	case StatusQueued:
		return to == StatusProcessing
	case StatusProcessing:
		return to == StatusProcessed || to == StatusFailed
	case StatusProcessed, StatusFailed:
		return false
	}
	return false
}

// PageStatus tracks extraction progress for a single page.
type PageStatus string

const (
	PageStatusPending   PageStatus = "pending"
	PageStatusExtracted PageStatus = "extracted"
	PageStatusEmpty     PageStatus = "empty" // no strategy produced text for this page
)

// FailureReason is the machine-readable reason recorded when a document
// transitions to failed. match_unresolved is deliberately not listed: an
// unmatched document is still processed.
type FailureReason string

const (
	ReasonStorageError    FailureReason = "storage_error"    // blob get/put failed; retryable
	ReasonExtractionEmpty FailureReason = "extraction_empty" // no strategy produced usable text
	ReasonSchemaViolation FailureReason = "schema_violation" // AI output failed structural validation

	// ReasonOCRUnavailable is logged per page, never stored on a document:
	// OCR loss degrades the affected pages to empty zero-confidence rows,
	// and only a document with no text at all fails (as extraction_empty).
	ReasonOCRUnavailable FailureReason = "ocr_unavailable"
)

// HumanReason maps a failure reason to the message surfaced on status polls.
func HumanReason(r FailureReason) string {
	switch r {
	case ReasonStorageError:
		return "document could not be read from storage"
	case ReasonExtractionEmpty:
		return "no readable text"
	case ReasonSchemaViolation:
		return "could not extract structured data"
	}
	return string(r)
}
