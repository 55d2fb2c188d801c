// Package extract locates and isolates the embedded structured edit block
// inside raw model output. Strategies are tried in fixed priority order,
// first success wins; failures and warnings are returned as values.
package extract

import (
	"encoding/json"
	"strings"
)

// Markers delimiting the embedded block in model responses.
const (
	StartMarker = "[RESUME_DATA]"
	EndMarker   = "[/RESUME_DATA]"
)

// FailureCode identifies a definite extraction failure.
type FailureCode string

// Failure codes returned when no block could be recovered.
const (
	// FailureNone means extraction succeeded.
	FailureNone FailureCode = ""
	// FailureNoBlock means no candidate substring was found in the text.
	FailureNoBlock FailureCode = "NO_BLOCK_FOUND"
	// FailureParse means a candidate substring was found but failed JSON
	// parsing even after recovery normalization.
	FailureParse FailureCode = "PARSE_ERROR"
)

// WarningCode tags a successful parse obtained via a lower-confidence
// strategy.
type WarningCode string

// Warning codes attached to degraded recoveries.
const (
	// WarningNone means the block parsed via the highest-confidence strategy.
	WarningNone WarningCode = ""
	// WarningUnterminated means the block was recovered without a closing marker.
	WarningUnterminated WarningCode = "recovered without closing marker"
	// WarningFencedFallback means a generic fenced code block was used.
	WarningFencedFallback WarningCode = "used fenced fallback"
	// WarningUntagged means the first bare object span was used.
	WarningUntagged WarningCode = "untagged fallback, may be unreliable"
)

// Result is the outcome of one extraction attempt. Exactly one of Data and
// Failure is meaningful: on success Data holds the parsed generic object and
// Raw the sanitized JSON it was parsed from.
type Result struct {
	Data    map[string]any
	Raw     []byte
	Warning WarningCode
	Failure FailureCode
}

// Extract isolates the structured edit block from raw model output. It is a
// pure function; errors are returned as values, never thrown past this
// boundary.
func Extract(rawText string) Result {
	candidateFound := false

	// Strategy 1: well-formed marker pair.
	if span, ok := taggedSpan(rawText); ok {
		candidateFound = true
		if res, ok := parseCandidate(span, WarningNone); ok {
			return res
		}
	}

	// Strategy 2: start marker with no matching end marker.
	if span, ok := unterminatedSpan(rawText); ok {
		candidateFound = true
		if res, ok := parseCandidate(span, WarningUnterminated); ok {
			return res
		}
	}

	// Strategy 3: generic fenced code block.
	for _, span := range fencedSpans(rawText) {
		candidateFound = true
		if res, ok := parseCandidate(span, WarningFencedFallback); ok {
			return res
		}
	}

	// Strategy 4: first bare { ... } span, greedy to the last }.
	if span, ok := bareObjectSpan(rawText); ok {
		candidateFound = true
		if res, ok := parseCandidate(span, WarningUntagged); ok {
			return res
		}
	}

	if candidateFound {
		return Result{Failure: FailureParse}
	}
	return Result{Failure: FailureNoBlock}
}

// parseCandidate applies recovery normalization and strict JSON parsing to a
// candidate span. The parsed value must be a JSON object.
func parseCandidate(span string, warning WarningCode) (Result, bool) {
	cleaned := Sanitize(span)
	if cleaned == "" {
		return Result{}, false
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return Result{}, false
	}

	return Result{
		Data:    data,
		Raw:     []byte(cleaned),
		Warning: warning,
	}, true
}

// taggedSpan returns the substring enclosed by a well-formed marker pair.
func taggedSpan(text string) (string, bool) {
	start := strings.Index(text, StartMarker)
	if start < 0 {
		return "", false
	}
	rest := text[start+len(StartMarker):]
	end := strings.Index(rest, EndMarker)
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

// unterminatedSpan recovers a block that has a start marker but no matching
// end marker by brace-depth counting from the first { after the marker.
// String literals are treated opaquely; the format is not expected to contain
// unbalanced braces inside strings.
func unterminatedSpan(text string) (string, bool) {
	start := strings.Index(text, StartMarker)
	if start < 0 {
		return "", false
	}
	rest := text[start+len(StartMarker):]
	if strings.Contains(rest, EndMarker) {
		// A marker pair exists; that is strategy 1 territory.
		return "", false
	}
	open := strings.Index(rest, "{")
	if open < 0 {
		return "", false
	}

	depth := 0
	for i := open; i < len(rest); i++ {
		switch rest[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return rest[open : i+1], true
			}
		}
	}
	return "", false
}

// fencedSpans returns the interiors of fenced code blocks whose content looks
// like an object, in document order. A language identifier on the opening
// fence line is skipped.
func fencedSpans(text string) []string {
	var spans []string
	rest := text
	for {
		open := strings.Index(rest, "```")
		if open < 0 {
			return spans
		}
		rest = rest[open+3:]
		closeIdx := strings.Index(rest, "```")
		if closeIdx < 0 {
			return spans
		}
		interior := rest[:closeIdx]
		rest = rest[closeIdx+3:]

		// Drop a leading language identifier line (e.g. "json").
		if nl := strings.Index(interior, "\n"); nl >= 0 {
			firstLine := strings.TrimSpace(interior[:nl])
			if firstLine != "" && !strings.Contains(firstLine, "{") {
				interior = interior[nl+1:]
			}
		}
		if strings.HasPrefix(strings.TrimSpace(interior), "{") {
			spans = append(spans, interior)
		}
	}
}

// StripBlock removes a marker-delimited block from response text, leaving the
// conversational remainder for display. Text without a complete marker pair
// is returned unchanged.
func StripBlock(text string) string {
	start := strings.Index(text, StartMarker)
	if start < 0 {
		return text
	}
	rest := text[start+len(StartMarker):]
	end := strings.Index(rest, EndMarker)
	if end < 0 {
		return text
	}
	remainder := text[:start] + rest[end+len(EndMarker):]
	return strings.TrimSpace(remainder)
}

// bareObjectSpan takes the first { in the entire text, greedy to the last }.
func bareObjectSpan(text string) (string, bool) {
	open := strings.Index(text, "{")
	if open < 0 {
		return "", false
	}
	closeIdx := strings.LastIndex(text, "}")
	if closeIdx <= open {
		return "", false
	}
	return text[open : closeIdx+1], true
}
