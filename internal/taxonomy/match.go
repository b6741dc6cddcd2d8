package taxonomy

import (
	"log/slog"
	"strings"

	"github.com/propertyops/compliance-docs/internal/entity"
)

// synonym pairs tried during matching, in fixed order. Each pair generates
// substituted variants of the input in both directions so that both
// abbreviation-first and long-form-first documents resolve. An ordered
// slice, not a map: map iteration would break match determinism.
var synonyms = []struct{ a, b string }{
	{"fire risk assessment", "fra"},
	{"electrical installation condition report", "eicr"},
	{"electrical installation certificate", "eicr"},
	{"portable appliance testing", "pat testing"},
	{"gas safety record", "gas safety certificate"},
	{"cp12", "gas safety certificate"},
	{"legionella assessment", "legionella risk assessment"},
	{"l8 risk assessment", "legionella risk assessment"},
	{"loler", "lift loler inspection"},
	{"asbestos survey", "asbestos management survey"},
	{"ews1", "external wall system survey"},
	{"buildings insurance", "building insurance"},
}

// Matcher resolves free-text asset titles to canonical register entries.
// It is a deterministic ordered rule chain, not a scored fuzzy match: the
// same input against an unchanged taxonomy always yields the same result,
// which the compliance audit trail depends on.
type Matcher struct {
	assets []entity.CanonicalAsset
	logger *slog.Logger
}

func NewMatcher(logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{assets: ListAssets(), logger: logger}
}

// Match resolves assetTitle to a canonical asset, or nil when no rule
// fires. Rule order, first hit wins:
//  1. case-insensitive substring match against canonical titles
//  2. normalized input (whitespace collapsed, dash variants unified) retried
//  3. synonym-substituted variants retried
//
// Returning nil is not an error: mis-linking corrupts the audit trail, so
// the matcher never guesses.
func (m *Matcher) Match(assetTitle string) *entity.CanonicalAsset {
	raw := strings.ToLower(strings.TrimSpace(assetTitle))
	if raw == "" {
		return nil
	}

	if hit := m.substring(raw); hit != nil {
		return hit
	}

	norm := Normalize(assetTitle)
	if norm != raw {
		if hit := m.substring(norm); hit != nil {
			return hit
		}
	}

	// Titles like "Legionella - Risk Assessment" only differ from the
	// register by punctuation; retry with dashes collapsed to spaces.
	stripped := strings.Join(strings.Fields(strings.ReplaceAll(norm, "-", " ")), " ")
	if stripped != norm {
		if hit := m.substring(stripped); hit != nil {
			return hit
		}
	}

	for _, v := range synonymVariants(stripped) {
		if hit := m.substring(v); hit != nil {
			m.logger.Debug("asset matched via synonym", "input", assetTitle, "variant", v, "asset_id", hit.ID)
			return hit
		}
	}

	m.logger.Info("asset title unresolved", "input", assetTitle)
	return nil
}

// substring scans the register in fixed order. Containment is checked both
// ways: an extracted title may be a fragment of the canonical title or wrap
// it in extra words ("Annual Fire Risk Assessment 2024").
func (m *Matcher) substring(needle string) *entity.CanonicalAsset {
	if len(needle) < 3 {
		return nil
	}
	for i := range m.assets {
		title := strings.ToLower(m.assets[i].Title)
		if strings.Contains(title, needle) || strings.Contains(needle, title) {
			a := m.assets[i]
			return &a
		}
		if normTitle := Normalize(m.assets[i].Title); normTitle != title &&
			(strings.Contains(normTitle, needle) || strings.Contains(needle, normTitle)) {
			a := m.assets[i]
			return &a
		}
	}
	return nil
}

// Normalize lowercases, collapses runs of whitespace, and unifies dash
// variants (en dash, em dash, minus) to "-".
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, dash := range []string{"–", "—", "−"} {
		s = strings.ReplaceAll(s, dash, "-")
	}
	return strings.Join(strings.Fields(s), " ")
}

func synonymVariants(norm string) []string {
	var out []string
	for _, syn := range synonyms {
		if strings.Contains(norm, syn.a) {
			out = append(out, strings.ReplaceAll(norm, syn.a, syn.b))
		}
		if strings.Contains(norm, syn.b) {
			out = append(out, strings.ReplaceAll(norm, syn.b, syn.a))
		}
	}
	return out
}
