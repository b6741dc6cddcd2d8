package llm

import (
	"strings"
	"testing"
)

func TestTruncateDocumentKeepsHead(t *testing.T) {
	text := "HEADER " + strings.Repeat("x", 100)
	got := TruncateDocument(text, 20)
	if len(got) != 20 || !strings.HasPrefix(got, "HEADER") {
		t.Errorf("got %q", got)
	}
	if TruncateDocument("short", 20) != "short" {
		t.Error("under-limit text must pass through unchanged")
	}
}

func TestConcatSourcesDropsLeastRecentFirst(t *testing.T) {
	old := strings.Repeat("o", 60)
	recent := strings.Repeat("r", 60)

	got := ConcatSources([]string{old, recent}, 1000, 80)
	if len(got) != 80 {
		t.Fatalf("len = %d; want 80", len(got))
	}
	if !strings.HasSuffix(got, recent) {
		t.Error("most recent source must survive whole")
	}
	if strings.Count(got, "o") >= 60 {
		t.Error("least recent source should have been cut")
	}
}

func TestConcatSourcesSkipsEmpty(t *testing.T) {
	got := ConcatSources([]string{"", "  ", "real text"}, 1000, 1000)
	if got != "real text" {
		t.Errorf("got %q", got)
	}
}
