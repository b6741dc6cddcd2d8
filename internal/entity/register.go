package entity

import "github.com/google/uuid"

// RegisterEntry joins a processed document's extraction with its matched
// canonical asset for the compliance register export. AssetID is nil when
// matching did not resolve; the row still appears, flagged for review.
type RegisterEntry struct {
	BuildingID uuid.UUID               `json:"building_id"`
	Filename   string                  `json:"filename"`
	AssetID    *string                 `json:"asset_id,omitempty"`
	Extraction ComplianceDocExtraction `json:"extraction"`
}
