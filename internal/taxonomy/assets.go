package taxonomy

import "github.com/propertyops/compliance-docs/internal/entity"

// masterAssets is the canonical compliance register for UK leasehold block
// management. The list is fixed at build time and read-only at runtime, so
// it is safely shared across concurrent matches without locking.
var masterAssets = []entity.CanonicalAsset{
	// Fire Safety
	{ID: "fire-risk-assessment", Title: "Fire Risk Assessment", Category: "Fire Safety", FrequencyMonths: 12},
	{ID: "fire-alarm-system-test", Title: "Fire Alarm System Test", Category: "Fire Safety", FrequencyMonths: 1},
	{ID: "fire-extinguisher-inspection", Title: "Fire Extinguisher Inspection", Category: "Fire Safety", FrequencyMonths: 1},
	{ID: "fire-door-inspection", Title: "Fire Door Inspection", Category: "Fire Safety", FrequencyMonths: 3},
	{ID: "emergency-lighting-test", Title: "Emergency Lighting Test", Category: "Fire Safety", FrequencyMonths: 1},

	// Electrical Safety
	{ID: "eicr", Title: "Electrical Installation Condition Report (EICR)", Category: "Electrical Safety", FrequencyMonths: 60},
	{ID: "pat-testing", Title: "PAT Testing", Category: "Electrical Safety", FrequencyMonths: 12},
	{ID: "lightning-protection-test", Title: "Lightning Protection Test", Category: "Electrical Safety", FrequencyMonths: 12},

	// Gas Safety
	{ID: "gas-safety-certificate", Title: "Gas Safety Certificate", Category: "Gas Safety", FrequencyMonths: 12},
	{ID: "gas-appliance-service", Title: "Gas Appliance Service", Category: "Gas Safety", FrequencyMonths: 12},

	// Water Hygiene
	{ID: "legionella-risk-assessment", Title: "Legionella Risk Assessment", Category: "Water Hygiene", FrequencyMonths: 24},
	{ID: "water-tank-inspection", Title: "Water Tank Inspection", Category: "Water Hygiene", FrequencyMonths: 12},

	// Structural & Condition
	{ID: "asbestos-management-survey", Title: "Asbestos Management Survey", Category: "Structural & Condition", FrequencyMonths: 12},
	{ID: "building-condition-survey", Title: "Building Condition Survey", Category: "Structural & Condition", FrequencyMonths: 60},
	{ID: "external-wall-survey", Title: "External Wall System Survey (EWS1)", Category: "Structural & Condition", FrequencyMonths: 60},

	// Operational & Contracts
	{ID: "lift-loler-inspection", Title: "Lift LOLER Inspection", Category: "Operational & Contracts", FrequencyMonths: 6},
	{ID: "lift-maintenance", Title: "Lift Maintenance Certificate", Category: "Operational & Contracts", FrequencyMonths: 6},
	{ID: "heating-system-service", Title: "Communal Heating System Service", Category: "Operational & Contracts", FrequencyMonths: 12},

	// Insurance
	{ID: "building-insurance", Title: "Building Insurance Certificate", Category: "Insurance", FrequencyMonths: 12},
	{ID: "engineering-insurance", Title: "Engineering Insurance Inspection", Category: "Insurance", FrequencyMonths: 12},
}

// ListAssets returns the full canonical register. The returned slice is a
// copy; callers may not mutate the taxonomy.
func ListAssets() []entity.CanonicalAsset {
	out := make([]entity.CanonicalAsset, len(masterAssets))
	copy(out, masterAssets)
	return out
}
