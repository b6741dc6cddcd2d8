package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/propertyops/compliance-docs/constants"
	"github.com/propertyops/compliance-docs/internal/llm"
)

func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestExtractFieldsHappyPath(t *testing.T) {
	srv := completionServer(t, "```json\n{\n"+
		`"doc_type": "Fire Risk Assessment",`+
		`"asset_title": "Fire Risk Assessment",`+
		`"summary": "• no significant findings",`+
		`"frequency_months": 12,`+
		`"last_completed_date": "2024-03-15",`+
		`"confidence": 0.9`+
		"\n}\n```")
	defer srv.Close()

	c := NewClient(Config{APIKey: "test", BaseURL: srv.URL}, nil)
	out, _, err := c.ExtractFields(context.Background(), llm.ExtractRequest{Text: "FRA carried out 15 March 2024"})
	if err != nil {
		t.Fatalf("ExtractFields: %v", err)
	}
	if out.DocType != "Fire Risk Assessment" || out.Confidence != 0.9 {
		t.Errorf("fields = %+v", out)
	}
	if out.LastCompletedDate == nil || *out.LastCompletedDate != "2024-03-15" {
		t.Errorf("last_completed_date = %v", out.LastCompletedDate)
	}
}

func TestExtractFieldsNoDatesStayAbsent(t *testing.T) {
	// Model follows the never-invent-dates rule; nulls from a sloppier model
	// must be sanitized away, not surfaced as zero values.
	srv := completionServer(t, `{
		"doc_type": "EICR",
		"asset_title": "Electrical Installation Condition Report (EICR)",
		"summary": "• satisfactory",
		"last_completed_date": null,
		"next_due_date": "",
		"confidence": 0.8
	}`)
	defer srv.Close()

	c := NewClient(Config{APIKey: "test", BaseURL: srv.URL}, nil)
	out, _, err := c.ExtractFields(context.Background(), llm.ExtractRequest{Text: "no dates in this one"})
	if err != nil {
		t.Fatalf("ExtractFields: %v", err)
	}
	if out.LastCompletedDate != nil || out.NextDueDate != nil {
		t.Errorf("dates should be absent: %+v", out)
	}
}

func TestExtractFieldsSchemaViolation(t *testing.T) {
	srv := completionServer(t, `{"summary": "missing everything else"}`)
	defer srv.Close()

	c := NewClient(Config{APIKey: "test", BaseURL: srv.URL}, nil)
	_, _, err := c.ExtractFields(context.Background(), llm.ExtractRequest{Text: "x"})

	var ee *llm.ExtractionError
	if !errors.As(err, &ee) || ee.Reason != constants.ReasonSchemaViolation {
		t.Fatalf("err = %v; want schema violation", err)
	}
}

func TestExtractFieldsNonJSONResponse(t *testing.T) {
	srv := completionServer(t, "I'm sorry, I can't help with that.")
	defer srv.Close()

	c := NewClient(Config{APIKey: "test", BaseURL: srv.URL}, nil)
	_, _, err := c.ExtractFields(context.Background(), llm.ExtractRequest{Text: "x"})

	var ee *llm.ExtractionError
	if !errors.As(err, &ee) || ee.Reason != constants.ReasonSchemaViolation {
		t.Fatalf("err = %v; want schema violation", err)
	}
}
