package llm

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	isoDate   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	yearMonth = regexp.MustCompile(`^\d{4}-\d{2}$`)
)

// SanitizeFields applies the lenient repairs that are safe to make before
// strict validation: dropped nulls, trimmed strings, numeric coercion for
// frequency_months, and a year-month date padded to the first of the month.
// It never invents values — a field that cannot be repaired is removed so
// validation reports it honestly.
func SanitizeFields(data json.RawMessage) (json.RawMessage, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("sanitize: %w", err)
	}

	out := map[string]any{}

	for _, key := range []string{"doc_type", "asset_title", "summary", "provider", "reference"} {
		if s, ok := cleanString(raw[key]); ok {
			out[key] = s
		}
	}

	if months, ok := coerceMonths(raw["frequency_months"]); ok {
		out["frequency_months"] = months
	}

	for _, key := range []string{"last_completed_date", "next_due_date"} {
		if d, ok := cleanDate(raw[key]); ok {
			out[key] = d
		}
	}

	if c, ok := raw["confidence"].(float64); ok {
		out["confidence"] = math.Min(1, math.Max(0, c))
	}

	return json.Marshal(out)
}

func cleanString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "unknown") || strings.EqualFold(s, "n/a") {
		return "", false
	}
	return s, true
}

// coerceMonths accepts the shapes models actually emit for a month count:
// a whole number, a whole float, or a digit string.
func coerceMonths(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n > 0 && n == math.Trunc(n) {
			return int(n), true
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil && i > 0 {
			return i, true
		}
	}
	return 0, false
}

// cleanDate keeps only dates the calendar accepts. A bare YYYY-MM means the
// document named the month but not the day; the first of the month is the
// conventional register entry for that. Anything else is dropped rather
// than guessed.
func cleanDate(v any) (string, bool) {
	s, ok := cleanString(v)
	if !ok {
		return "", false
	}
	if yearMonth.MatchString(s) {
		s += "-01"
	}
	if !isoDate.MatchString(s) {
		return "", false
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return "", false
	}
	return s, true
}
