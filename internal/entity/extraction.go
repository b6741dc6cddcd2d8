package entity

import (
	"github.com/google/uuid"
)

// ComplianceDocExtraction is the structured record produced by the AI
// extraction step for a successfully processed document. Optional fields
// are pointers: absent means the source text did not support them, never a
// guessed value. Dates are YYYY-MM-DD strings (day defaults to 01 when only
// month/year was stated).
type ComplianceDocExtraction struct {
	DocumentID        uuid.UUID `json:"document_id"`
	DocType           string    `json:"doc_type"`
	AssetTitle        string    `json:"asset_title"`
	Summary           string    `json:"summary"`
	FrequencyMonths   *int      `json:"frequency_months,omitempty"`
	LastCompletedDate *string   `json:"last_completed_date,omitempty"`
	NextDueDate       *string   `json:"next_due_date,omitempty"`
	Provider          *string   `json:"provider,omitempty"`
	Reference         *string   `json:"reference,omitempty"`
	Confidence        float32   `json:"confidence"`
}
