package llm

import (
	"encoding/json"
	"strings"
)

const snippetLen = 200

// StripCodeFence removes a leading ``` line and a trailing ``` line from
// model output, when present.
func StripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	lines := strings.Split(trimmed, "\n")
	lines = lines[1:]
	if n := len(lines); n > 0 && strings.TrimSpace(lines[n-1]) == "```" {
		lines = lines[:n-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// ParseJSON decodes s into a generic value. On failure the error carries
// the first 200 characters of s.
func ParseJSON(s, context string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, &ParseError{Context: context, Snippet: snippet(s), Err: err}
	}
	return v, nil
}

func snippet(s string) string {
	r := []rune(s)
	if len(r) <= snippetLen {
		return s
	}
	return string(r[:snippetLen])
}
