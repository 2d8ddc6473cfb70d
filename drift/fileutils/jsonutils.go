package fileutils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoJSONObject is returned when a model reply carries no {...} object.
var ErrNoJSONObject = errors.New("no JSON object in model output")

// DecodeModelJSON unmarshals the JSON object in a model reply into v. The reply
// may wrap the object in a markdown code fence or surround it with prose.
func DecodeModelJSON(outputText string, v any) error {
	s := stripCodeFence(strings.TrimSpace(outputText))
	if s == "" {
		return io.ErrUnexpectedEOF
	}
	if json.Valid([]byte(s)) {
		return json.Unmarshal([]byte(s), v)
	}

	obj, ok := outermostObject(s)
	if !ok {
		return fmt.Errorf("%w (len=%d)", ErrNoJSONObject, len(s))
	}
	if err := json.Unmarshal([]byte(obj), v); err != nil {
		return fmt.Errorf("decode model JSON (len=%d): %w", len(obj), err)
	}
	return nil
}

// stripCodeFence drops a leading ``` line (with optional language tag) and the
// closing fence. Text without a leading fence is returned unchanged.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	body := s[3:]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = ""
	}
	if end := strings.LastIndex(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

func outermostObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
