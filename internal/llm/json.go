package llm

import (
	"encoding/json"
	"strings"
)

// extractJSON unmarshals the first JSON document found in text into v.
// Model responses sometimes wrap the payload in prose or a code fence, so
// a direct parse is tried first and then the outermost balanced object or
// array is located by scanning.
func extractJSON(text string, v any) error {
	text = stripFence(text)

	if err := json.Unmarshal([]byte(text), v); err == nil {
		return nil
	}

	if doc, ok := balancedSlice(text, '{', '}'); ok {
		if err := json.Unmarshal([]byte(doc), v); err == nil {
			return nil
		}
	}
	if doc, ok := balancedSlice(text, '[', ']'); ok {
		if err := json.Unmarshal([]byte(doc), v); err == nil {
			return nil
		}
	}

	return json.Unmarshal([]byte(strings.TrimSpace(text)), v)
}

// stripFence removes a surrounding markdown code fence, if present.
func stripFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// balancedSlice returns the first balanced region delimited by open and
// close, tracking JSON string literals so braces inside strings do not
// affect the depth count.
func balancedSlice(text string, open, close byte) (string, bool) {
	start := strings.IndexByte(text, open)
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == open:
			depth++
		case ch == close:
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}

	return "", false
}
