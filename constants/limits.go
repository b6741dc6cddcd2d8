package constants

// Empirical thresholds carried over from production tuning. Treat as
// defaults, not correctness invariants; config may override all of them
// except where a fixed, consistently applied threshold is required.
const (
	// LowConfidenceThreshold marks a page as needing manual attention.
	// A page is low confidence iff confidence < this value.
	LowConfidenceThreshold float32 = 0.55

	// MinNativeTextLen is the sufficiency cut-off for the native PDF text
	// layer: trimmed output at or below this length falls through to OCR.
	MinNativeTextLen = 50

	// MaxDocChars bounds the text sent to the completion service for a
	// single document.
	MaxDocChars = 15000

	// MaxBatchChars bounds a multi-document concatenated extraction call.
	// Least-recent content is truncated first.
	MaxBatchChars = 50000

	// MaxUploadBytes caps the submit endpoint request body.
	MaxUploadBytes = 25 << 20 // 25MB
)
