package llm

// BuildComplianceJSONSchema returns the JSON Schema the model output must
// satisfy. The schema is deliberately strict: closed property set, bounded
// confidence, ISO dates only. Anything outside it is a schema violation,
// not a value to be repaired into shape.
func BuildComplianceJSONSchema() map[string]any {
	datePattern := `^\d{4}-\d{2}-\d{2}$`

	return map[string]any{
		"$schema":              "https://json-schema.org/draft/2020-12/schema",
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"doc_type", "asset_title", "summary", "confidence"},
		"properties": map[string]any{
			"doc_type": map[string]any{
				"type":      "string",
				"minLength": 1,
			},
			"asset_title": map[string]any{
				"type":      "string",
				"minLength": 1,
			},
			"summary": map[string]any{
				"type":      "string",
				"minLength": 1,
			},
			"frequency_months": map[string]any{
				"type":    "integer",
				"minimum": 1,
			},
			"last_completed_date": map[string]any{
				"type":    "string",
				"pattern": datePattern,
			},
			"next_due_date": map[string]any{
				"type":    "string",
				"pattern": datePattern,
			},
			"provider": map[string]any{
				"type":      "string",
				"minLength": 1,
			},
			"reference": map[string]any{
				"type":      "string",
				"minLength": 1,
			},
			"confidence": map[string]any{
				"type":    "number",
				"minimum": 0,
				"maximum": 1,
			},
		},
	}
}
