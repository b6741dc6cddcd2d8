package llm

import (
	"encoding/json"
	"testing"
)

func sanitizeMap(t *testing.T, in string) map[string]any {
	t.Helper()
	out, err := SanitizeFields(json.RawMessage(in))
	if err != nil {
		t.Fatalf("SanitizeFields: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatalf("unmarshal sanitized: %v", err)
	}
	return m
}

func TestSanitizeDropsEmptyOptionals(t *testing.T) {
	m := sanitizeMap(t, `{
		"doc_type": " Fire Risk Assessment ",
		"asset_title": "Fire Risk Assessment",
		"summary": "• done",
		"provider": "",
		"reference": null,
		"last_completed_date": "unknown",
		"confidence": 0.8
	}`)

	if m["doc_type"] != "Fire Risk Assessment" {
		t.Errorf("doc_type = %v", m["doc_type"])
	}
	for _, key := range []string{"provider", "reference", "last_completed_date"} {
		if _, ok := m[key]; ok {
			t.Errorf("%s should have been dropped", key)
		}
	}
}

func TestSanitizeCoercesFrequency(t *testing.T) {
	if m := sanitizeMap(t, `{"frequency_months": 12.0}`); m["frequency_months"] != float64(12) {
		t.Errorf("whole float: %v", m["frequency_months"])
	}
	if m := sanitizeMap(t, `{"frequency_months": "12"}`); m["frequency_months"] != float64(12) {
		t.Errorf("digit string: %v", m["frequency_months"])
	}
	if m := sanitizeMap(t, `{"frequency_months": 12.5}`); m["frequency_months"] != nil {
		t.Errorf("fractional months kept: %v", m["frequency_months"])
	}
	if m := sanitizeMap(t, `{"frequency_months": "annually"}`); m["frequency_months"] != nil {
		t.Errorf("prose kept: %v", m["frequency_months"])
	}
}

func TestSanitizeDates(t *testing.T) {
	cases := map[string]any{
		"2024-03-15": "2024-03-15",
		"2024-03":    "2024-03-01", // month known, day defaults to the 1st
		"2024-13-01": nil,
		"2024-02-30": nil,
		"15/03/2024": nil,
	}
	for in, want := range cases {
		m := sanitizeMap(t, `{"next_due_date": "`+in+`"}`)
		if got := m["next_due_date"]; got != want {
			t.Errorf("date %q -> %v; want %v", in, got, want)
		}
	}
}

func TestSanitizeClampsConfidence(t *testing.T) {
	if m := sanitizeMap(t, `{"confidence": 1.4}`); m["confidence"] != float64(1) {
		t.Errorf("confidence = %v; want clamped 1", m["confidence"])
	}
	if m := sanitizeMap(t, `{"confidence": -0.1}`); m["confidence"] != float64(0) {
		t.Errorf("confidence = %v; want clamped 0", m["confidence"])
	}
}

func TestSanitizedOutputValidates(t *testing.T) {
	out, err := SanitizeFields(json.RawMessage(`{
		"doc_type": "Gas Safety Record",
		"asset_title": "Gas Safety Certificate",
		"summary": "• no defects",
		"frequency_months": "12",
		"last_completed_date": "2024-05",
		"confidence": 0.92,
		"made_up_field": true
	}`))
	if err != nil {
		t.Fatalf("SanitizeFields: %v", err)
	}
	if err := ValidateAgainstSchema(out, BuildComplianceJSONSchema()); err != nil {
		t.Fatalf("sanitized output should validate: %v", err)
	}
}

func TestValidateRejectsMissingRequired(t *testing.T) {
	err := ValidateAgainstSchema(json.RawMessage(`{"doc_type": "EICR"}`), BuildComplianceJSONSchema())
	if err == nil {
		t.Fatal("want validation error for missing required fields")
	}
}
