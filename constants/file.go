package constants

import (
	"path/filepath"
	"strings"
)

// FileFormat is the coarse routing decision for the extraction chain.
type FileFormat string

const (
	PDF   FileFormat = "PDF"
	DOCX  FileFormat = "DOCX"
	IMAGE FileFormat = "IMAGE"
	TEXT  FileFormat = "TEXT"
)

// AllowedMIMETypes holds the upload content types accepted by the submit
// endpoint. Browsers are inconsistent about DOCX, hence the variants.
var AllowedMIMETypes = map[string]struct{}{
	"application/pdf": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml":          {},
	"text/plain": {},
	"image/png":  {},
	"image/jpeg": {},
	"image/tiff": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// DetectFormat routes on MIME type first, then falls back to the filename
// extension. Unknown inputs are treated as plain text so the raw-decode
// strategy still gets a chance.
func DetectFormat(filename, mime string) FileFormat {
	m := strings.ToLower(strings.TrimSpace(mime))
	switch {
	case strings.Contains(m, "pdf"):
		return PDF
	case strings.Contains(m, "wordprocessingml"), strings.Contains(m, "msword"):
		return DOCX
	case strings.HasPrefix(m, "image/"):
		return IMAGE
	}
	switch NormalizeExt(filepath.Ext(filename)) {
	case "pdf":
		return PDF
	case "docx":
		return DOCX
	case "png", "jpg", "jpeg", "tif", "tiff":
		return IMAGE
	}
	return TEXT
}
