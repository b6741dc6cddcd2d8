package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ParseError means the completion service response carried no usable JSON.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string { return "parse model response: " + e.Msg }

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ParseModelJSON digs the JSON object out of a raw completion. Chat models
// wrap output unpredictably, so two shapes are tried in order: a fenced
// code block, then the outermost {...} span of the whole response. This is
// the single place raw model text is handled; everything downstream sees
// parsed bytes only.
func ParseModelJSON(raw string) (json.RawMessage, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, &ParseError{Msg: "empty response"}
	}

	if m := fencedJSON.FindStringSubmatch(raw); m != nil {
		if valid(m[1]) {
			return json.RawMessage(m[1]), nil
		}
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, &ParseError{Msg: "no JSON object in response"}
	}
	span := raw[start : end+1]
	if !valid(span) {
		return nil, &ParseError{Msg: fmt.Sprintf("brace span is not valid JSON (%d bytes)", len(span))}
	}
	return json.RawMessage(span), nil
}

func valid(s string) bool {
	var v any
	return json.Unmarshal([]byte(s), &v) == nil
}
