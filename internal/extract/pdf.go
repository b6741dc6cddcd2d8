package extract

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pdfPages runs the native text-layer parse, one entry per page. Pages
// whose text layer is missing or unreadable come back empty rather than
// erroring: a scanned page is normal input, not a failure. Malformed
// embedded fonts are known to panic inside the parser, so both the reader
// setup and each page read are recover-guarded.
func pdfPages(data []byte, logger *slog.Logger) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("pdf reader panic", "panic", fmt.Sprint(r))
			pages, err = nil, fmt.Errorf("pdf parse panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	numPages := reader.NumPage()
	if numPages < 1 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	pages = make([]string, numPages)
	for i := 1; i <= numPages; i++ {
		pages[i-1] = pdfPageText(reader, i, logger)
	}
	return pages, nil
}

func pdfPageText(reader *pdf.Reader, num int, logger *slog.Logger) (text string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("pdf page panic", "page", num, "panic", fmt.Sprint(r))
			text = ""
		}
	}()

	page := reader.Page(num)
	if page.V.IsNull() {
		return ""
	}
	content, err := page.GetPlainText(nil)
	if err != nil {
		logger.Debug("pdf page text-layer unreadable", "page", num, "error", err)
		return ""
	}
	return strings.TrimSpace(content)
}
