package llm

import (
	"errors"
	"strings"
	"testing"
)

func TestParseModelJSONFenced(t *testing.T) {
	raw := "Here you go:\n```json\n{\"doc_type\": \"Fire Risk Assessment\"}\n```\nLet me know if you need anything else."
	got, err := ParseModelJSON(raw)
	if err != nil {
		t.Fatalf("ParseModelJSON: %v", err)
	}
	if !strings.Contains(string(got), "Fire Risk Assessment") {
		t.Errorf("parsed %s", got)
	}
}

func TestParseModelJSONBareFence(t *testing.T) {
	raw := "```\n{\"a\": 1}\n```"
	got, err := ParseModelJSON(raw)
	if err != nil {
		t.Fatalf("ParseModelJSON: %v", err)
	}
	if string(got) != `{"a": 1}` {
		t.Errorf("parsed %s", got)
	}
}

func TestParseModelJSONBraceSpan(t *testing.T) {
	raw := `The extracted fields are {"doc_type": "EICR", "confidence": 0.9} as requested.`
	got, err := ParseModelJSON(raw)
	if err != nil {
		t.Fatalf("ParseModelJSON: %v", err)
	}
	if !strings.HasPrefix(string(got), `{"doc_type"`) {
		t.Errorf("parsed %s", got)
	}
}

func TestParseModelJSONNoObject(t *testing.T) {
	for _, raw := range []string{"", "no json here", "{broken"} {
		_, err := ParseModelJSON(raw)
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("ParseModelJSON(%q) err = %v; want ParseError", raw, err)
		}
	}
}
