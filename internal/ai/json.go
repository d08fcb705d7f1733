package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripFences removes a surrounding markdown code fence, if any.
func StripFences(response string) string {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```JSON")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	return strings.TrimSpace(response)
}

// DecodeJSON parses response into target after stripping code fences. When
// the response carries prose around the JSON value, each balanced span
// delimited by open/close is tried in turn until one parses.
func DecodeJSON(response string, open, close byte, target any) error {
	cleaned := StripFences(response)

	// First try direct parsing
	if err := json.Unmarshal([]byte(cleaned), target); err == nil {
		return nil
	}

	start := strings.IndexByte(cleaned, open)
	if start == -1 {
		return fmt.Errorf("no JSON %c...%c found in response", open, close)
	}

	var lastErr error
	for start != -1 {
		end := matchingClose(cleaned, start, open, close)
		if end == -1 {
			if lastErr == nil {
				lastErr = fmt.Errorf("no matching closing %c found", close)
			}
			break
		}
		err := json.Unmarshal([]byte(cleaned[start:end]), target)
		if err == nil {
			return nil
		}
		lastErr = err

		next := strings.IndexByte(cleaned[start+1:], open)
		if next == -1 {
			break
		}
		start += next + 1
	}
	return fmt.Errorf("failed to parse extracted JSON: %w", lastErr)
}

// matchingClose returns the index just past the bracket closing the one at
// start, ignoring brackets inside strings, or -1.
func matchingClose(text string, start int, open, close byte) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}
