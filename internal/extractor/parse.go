package extractor

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseResult tries the response as straight JSON first, then falls
// back to scanning for the first balanced {...} span, since models
// occasionally wrap their JSON in prose or a markdown fence despite
// being asked not to — the same fallback the original extractor
// applies before giving up.
func parseResult(raw string) (Result, error) {
	raw = strings.TrimSpace(raw)

	var r Result
	if err := json.Unmarshal([]byte(raw), &r); err == nil {
		return r, nil
	}

	span, ok := balancedJSONObject(raw)
	if !ok {
		return Result{}, fmt.Errorf("no JSON object found in response")
	}
	if err := json.Unmarshal([]byte(span), &r); err != nil {
		return Result{}, fmt.Errorf("salvaged span is not valid JSON: %w", err)
	}
	return r, nil
}

// balancedJSONObject returns the text between the first "{" and its
// matching "}", tracking string literals so braces inside quoted
// values don't throw off the depth count.
func balancedJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case inString:
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
		case c == '"':
			inString = true
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
