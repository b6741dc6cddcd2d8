package llm

import (
	"context"
	"fmt"

	"github.com/propertyops/compliance-docs/constants"
)

// ComplianceFields is the normalized shape we want from the model. Optional
// fields are omitted when the source text does not support them — never
// null, never an empty string, never a guessed value.
type ComplianceFields struct {
	DocType           string  `json:"doc_type"`
	AssetTitle        string  `json:"asset_title"`
	Summary           string  `json:"summary"`
	FrequencyMonths   *int    `json:"frequency_months,omitempty"`
	LastCompletedDate *string `json:"last_completed_date,omitempty"` // YYYY-MM-DD
	NextDueDate       *string `json:"next_due_date,omitempty"`       // YYYY-MM-DD
	Provider          *string `json:"provider,omitempty"`
	Reference         *string `json:"reference,omitempty"`
	Confidence        float32 `json:"confidence"` // 0..1 realism score
}

type ExtractRequest struct {
	Text         string   // extracted document text, already truncated upstream
	FilenameHint string
	AssetTitles  []string // canonical taxonomy titles the model should align to
}

// FieldExtractor is the interface the pipeline depends on.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, req ExtractRequest) (ComplianceFields, []byte /*rawJSON*/, error)
}

// ExtractionError is the typed failure the orchestrator turns into a
// document failure reason instead of a crash.
type ExtractionError struct {
	Reason constants.FailureReason
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

func SchemaViolation(err error) *ExtractionError {
	return &ExtractionError{Reason: constants.ReasonSchemaViolation, Err: err}
}
