// Package parser extracts structured JSON payloads from raw model output.
// Models wrap JSON in prose, markdown code fences, or reasoning tags, and
// occasionally emit small syntax defects; this package is the single
// boundary where those irregularities are tolerated.
package parser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// fencePattern matches a markdown code fence opener with an optional
// language tag, e.g. ```json
var fencePattern = regexp.MustCompile("(?m)^```[a-zA-Z]*[ \t]*$")

// thinkPattern matches <think>...</think> reasoning blocks some models
// prepend to their answer
var thinkPattern = regexp.MustCompile(`(?s)<think>.*?</think>`)

// trailingCommaPattern matches a comma immediately before a closing brace
// or bracket, the most common model syntax defect
var trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)

// Extract locates the outermost JSON object or array in raw model output.
// Leading prose, code fences, and reasoning tags are stripped first. If the
// strict candidate is invalid, a permissive repair pass (trailing-comma
// removal, brace balancing) is attempted before giving up.
func Extract(text string) (string, error) {
	cleaned := thinkPattern.ReplaceAllString(text, "")
	cleaned = fencePattern.ReplaceAllString(cleaned, "")

	objStart := strings.IndexByte(cleaned, '{')
	arrStart := strings.IndexByte(cleaned, '[')
	if objStart < 0 && arrStart < 0 {
		return "", fmt.Errorf("no JSON object or array in response")
	}

	openChar, closeChar := byte('{'), byte('}')
	if objStart < 0 || (arrStart >= 0 && arrStart < objStart) {
		openChar, closeChar = '[', ']'
	}

	candidate, balanced := extractBalanced(cleaned, openChar, closeChar)
	if !balanced {
		// Unbalanced output, usually a truncated response. Take everything
		// from the opening bracket and let the repair pass close it.
		start := strings.IndexByte(cleaned, openChar)
		candidate = cleaned[start:]
	}

	if json.Valid([]byte(candidate)) {
		return candidate, nil
	}

	repaired := repair(candidate, openChar)
	if json.Valid([]byte(repaired)) {
		return repaired, nil
	}

	return "", fmt.Errorf("no valid JSON found in response")
}

// Decode extracts JSON from raw model output and unmarshals it into T
func Decode[T any](text string) (T, error) {
	var result T

	jsonStr, err := Extract(text)
	if err != nil {
		return result, err
	}

	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return result, fmt.Errorf("unmarshal extracted JSON: %w", err)
	}

	return result, nil
}

// extractBalanced finds the first balanced JSON structure starting with open.
// Nested structures are handled by tracking bracket depth; brackets inside
// string literals are ignored.
func extractBalanced(s string, openChar, closeChar byte) (string, bool) {
	start := strings.IndexByte(s, openChar)
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch c {
		case openChar:
			depth++
		case closeChar:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}

// repair applies the permissive fix-ups: trailing commas are removed and
// unclosed braces/brackets are balanced at the end of the candidate
func repair(candidate string, openChar byte) string {
	repaired := trailingCommaPattern.ReplaceAllString(candidate, "$1")
	repaired = strings.TrimSpace(repaired)
	repaired = strings.TrimSuffix(repaired, ",")

	// Count unclosed brackets outside string literals and close them.
	depth := 0
	curlyDepth := 0
	inString := false
	escaped := false
	for i := 0; i < len(repaired); i++ {
		c := repaired[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch c {
		case '{':
			curlyDepth++
		case '}':
			curlyDepth--
		case '[':
			depth++
		case ']':
			depth--
		}
	}

	if inString {
		repaired += `"`
	}
	// Inner objects close before outer arrays and vice versa; with model
	// truncation the innermost structure is the curly one in practice.
	if openChar == '[' {
		for ; curlyDepth > 0; curlyDepth-- {
			repaired += "}"
		}
		for ; depth > 0; depth-- {
			repaired += "]"
		}
	} else {
		for ; depth > 0; depth-- {
			repaired += "]"
		}
		for ; curlyDepth > 0; curlyDepth-- {
			repaired += "}"
		}
	}

	return repaired
}
