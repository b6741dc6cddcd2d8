package extract

import "context"

// Input is one uploaded file handed to the extraction chain.
type Input struct {
	Filename string
	MIME     string
	Data     []byte
}

// PageText is the extraction output for a single page. Confidence is nil
// for pages read from a native text layer (there is no signal to report)
// and set for OCR-scored pages, including 0 for pages OCR could not read.
type PageText struct {
	Number     int
	Text       string
	Confidence *float32
}

// Result is the chain output for a whole document. Pages are 1-indexed and
// contiguous; a document always has at least one page.
type Result struct {
	Pages  []PageText
	Method string // "pdf-text" | "pdf-text+ocr" | "pdf-ocr" | "docx" | "docx-ocr" | "image-ocr" | "plain-text"
}

// Text concatenates page texts in page order.
func (r Result) Text() string {
	var out string
	for i, p := range r.Pages {
		if i > 0 {
			out += "\n"
		}
		out += p.Text
	}
	return out
}

// TextExtractor is Stage 1 of the pipeline: file bytes -> normalized text.
type TextExtractor interface {
	Extract(ctx context.Context, in Input) Result
}
