package llm

import (
	"fmt"
	"strings"
)

// BuildSystemPrompt sets the house rules for compliance field extraction.
// The date rule is the one that matters most: a fabricated inspection date
// in a compliance register is worse than a blank one.
func BuildSystemPrompt(assetTitles []string) string {
	var b strings.Builder
	b.WriteString("You are a UK leasehold block management assistant. ")
	b.WriteString("You read compliance documents (fire risk assessments, EICRs, gas safety certificates, insurance schedules and similar) ")
	b.WriteString("and extract structured register fields.\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Respond with a single JSON object and nothing else.\n")
	b.WriteString("- Use British English in the summary.\n")
	b.WriteString("- The summary is 4 to 8 short bullet points covering findings, actions and deadlines.\n")
	b.WriteString("- NEVER invent a date. If the document does not state a date, omit the field entirely.\n")
	b.WriteString("- Dates are YYYY-MM-DD.\n")
	b.WriteString("- Omit any optional field you are not confident about; do not emit null or empty strings.\n")
	b.WriteString("- confidence is your honest 0 to 1 estimate of how well the fields reflect the document.\n")

	if len(assetTitles) > 0 {
		b.WriteString("\nWhen the document matches one of these compliance assets, use the exact title for asset_title:\n")
		for _, t := range assetTitles {
			b.WriteString("- ")
			b.WriteString(t)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func BuildUserPrompt(req ExtractRequest) string {
	var b strings.Builder
	if req.FilenameHint != "" {
		fmt.Fprintf(&b, "Filename: %s\n\n", req.FilenameHint)
	}
	b.WriteString("Extract the compliance register fields from this document text:\n\n")
	b.WriteString(req.Text)
	return b.String()
}
