package llm

import "strings"

const sourceSeparator = "\n\n---\n\n"

// TruncateDocument bounds a single document's text for prompt cost. The
// head of a compliance document carries the certificate metadata, so the
// tail is what gets cut.
func TruncateDocument(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	return text[:max]
}

// ConcatSources is the entry point for extraction calls that combine
// several source documents, most recent last. Each source is bounded
// individually, then the batch is bounded as a whole by dropping the
// least-recent content first, so the newest material always survives.
// The single-document pipeline uses TruncateDocument instead: there the
// head of the text is what must survive.
func ConcatSources(sources []string, perDocMax, batchMax int) string {
	parts := make([]string, 0, len(sources))
	for _, s := range sources {
		if s = strings.TrimSpace(TruncateDocument(s, perDocMax)); s != "" {
			parts = append(parts, s)
		}
	}
	joined := strings.Join(parts, sourceSeparator)
	if batchMax <= 0 || len(joined) <= batchMax {
		return joined
	}
	return joined[len(joined)-batchMax:]
}
