package extract

import (
	"context"
	"log/slog"
	"strings"

	"github.com/propertyops/compliance-docs/constants"
	"github.com/propertyops/compliance-docs/internal/ocr"
)

// Chain is the ordered extraction strategy list from the design notes:
// native PDF text layer, DOCX body text, OCR fallback, raw decode. Each
// branch is wrapped so that third-party parser failures degrade to empty
// text instead of aborting the pipeline; an empty page becomes a
// zero-confidence page requiring manual attention, not an error.
type Chain struct {
	ocr          ocr.Client
	logger       *slog.Logger
	minNativeLen int
}

func NewChain(ocrClient ocr.Client, logger *slog.Logger) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{
		ocr:          ocrClient,
		logger:       logger,
		minNativeLen: constants.MinNativeTextLen,
	}
}

// Extract routes on the detected format and never returns an error: the
// worst outcome is a single empty, zero-confidence page.
func (c *Chain) Extract(ctx context.Context, in Input) Result {
	switch constants.DetectFormat(in.Filename, in.MIME) {
	case constants.PDF:
		return c.extractPDF(ctx, in)
	case constants.DOCX:
		return c.extractDOCX(ctx, in)
	case constants.IMAGE:
		return c.extractImage(ctx, in)
	default:
		return singlePage(plainText(in.Data), "plain-text")
	}
}

// extractPDF tries the text layer first. The native result counts as
// sufficient only above the configured cut-off; below it the whole
// document goes to OCR. Individual empty pages inside an otherwise
// sufficient document are OCR'd selectively so scanned appendix pages
// don't drag a born-digital report through full OCR.
func (c *Chain) extractPDF(ctx context.Context, in Input) Result {
	native, err := pdfPages(in.Data, c.logger)
	if err != nil {
		c.logger.Warn("native pdf parse unusable, falling back to ocr",
			"filename", in.Filename, "error", err)
		native = nil
	}

	total := 0
	for _, p := range native {
		total += len(strings.TrimSpace(p))
	}
	if total <= c.minNativeLen {
		// Insufficient text layer; treat the native result as empty.
		return c.ocrWholeDocument(ctx, in, len(native), "pdf-ocr")
	}

	pages := make([]PageText, len(native))
	var missing []int
	for i, text := range native {
		pages[i] = PageText{Number: i + 1, Text: text}
		if strings.TrimSpace(text) == "" {
			missing = append(missing, i)
		}
	}
	if len(missing) == 0 {
		return Result{Pages: pages, Method: "pdf-text"}
	}

	ocrPages := c.recognizePages(ctx, in)
	for _, i := range missing {
		conf := float32(0)
		if i < len(ocrPages) {
			pages[i].Text = strings.TrimSpace(ocrPages[i].Text)
			conf = ocrPages[i].Confidence
		}
		pages[i].Confidence = &conf
	}
	return Result{Pages: pages, Method: "pdf-text+ocr"}
}

// extractDOCX falls through to OCR when the document cannot be parsed: a
// corrupt or scanned-then-renamed upload is image-like, and decoding its
// raw bytes would only produce mojibake marked as extracted text.
func (c *Chain) extractDOCX(ctx context.Context, in Input) Result {
	text, err := docxText(in.Data, c.logger)
	if err != nil {
		c.logger.Warn("docx extraction failed, falling back to ocr",
			"filename", in.Filename, "error", err)
		return c.ocrWholeDocument(ctx, in, 1, "docx-ocr")
	}
	return singlePage(text, "docx")
}

func (c *Chain) extractImage(ctx context.Context, in Input) Result {
	return c.ocrWholeDocument(ctx, in, 1, "image-ocr")
}

// ocrWholeDocument runs OCR over the full upload and scores every page.
// minPages keeps the page count honest when OCR fails outright: a 3-page
// PDF with an unreachable OCR service still records 3 empty pages.
func (c *Chain) ocrWholeDocument(ctx context.Context, in Input, minPages int, method string) Result {
	if minPages < 1 {
		minPages = 1
	}
	ocrPages := c.recognizePages(ctx, in)

	n := len(ocrPages)
	if n < minPages {
		n = minPages
	}
	pages := make([]PageText, n)
	for i := 0; i < n; i++ {
		conf := float32(0)
		text := ""
		if i < len(ocrPages) {
			text = strings.TrimSpace(ocrPages[i].Text)
			conf = ocrPages[i].Confidence
		}
		pages[i] = PageText{Number: i + 1, Text: text, Confidence: &conf}
	}
	return Result{Pages: pages, Method: method}
}

// recognizePages calls the OCR service and degrades every failure mode —
// transport error, timeout, empty body — to "no pages".
func (c *Chain) recognizePages(ctx context.Context, in Input) []ocr.Page {
	if c.ocr == nil {
		return nil
	}
	res, err := c.ocr.Recognize(ctx, in.Data)
	if err != nil {
		c.logger.Warn("ocr unavailable, treating as empty text",
			"filename", in.Filename, "reason", constants.ReasonOCRUnavailable, "error", err)
		return nil
	}
	return ocr.SplitPages(res)
}

func singlePage(text, method string) Result {
	page := PageText{Number: 1, Text: strings.TrimSpace(text)}
	return Result{Pages: []PageText{page}, Method: method}
}
