package entity

// CanonicalAsset is a fixed taxonomy entry. Read-only to this subsystem.
type CanonicalAsset struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Category        string `json:"category"`
	FrequencyMonths int    `json:"frequency_months"`
}

