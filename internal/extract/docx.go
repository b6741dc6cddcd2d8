package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lu4p/cat"
)

// docxText extracts the raw text of a word-processor document. The cat
// library only takes paths, so the bytes go through a temp file. If cat
// fails, a direct read of word/document.xml is attempted before giving up.
func docxText(data []byte, logger *slog.Logger) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("docx parse panic", "panic", fmt.Sprint(r))
			text, err = "", fmt.Errorf("docx parse panic: %v", r)
		}
	}()

	tmp, err := os.CreateTemp("", "upload-*.docx")
	if err == nil {
		path := tmp.Name()
		_, werr := tmp.Write(data)
		cerr := tmp.Close()
		defer func() {
			if rerr := os.Remove(path); rerr != nil {
				logger.Debug("temp docx cleanup failed", "path", filepath.Base(path), "error", rerr)
			}
		}()
		if werr == nil && cerr == nil {
			if out, cerr := cat.File(path); cerr == nil && strings.TrimSpace(out) != "" {
				return strings.TrimSpace(out), nil
			}
		}
	}

	return docxBodyText(data)
}

type wordDocument struct {
	XMLName xml.Name `xml:"document"`
	Body    struct {
		Paragraphs []struct {
			Runs []struct {
				Text string `xml:"t"`
			} `xml:"r"`
		} `xml:"p"`
	} `xml:"body"`
}

// docxBodyText parses word/document.xml out of the DOCX zip directly.
func docxBodyText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read docx as zip: %w", err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("document.xml not found in docx")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read document.xml: %w", err)
	}

	var doc wordDocument
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("parse document.xml: %w", err)
	}

	var b strings.Builder
	for _, para := range doc.Body.Paragraphs {
		for _, run := range para.Runs {
			b.WriteString(run.Text)
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String()), nil
}
