package extract

import (
	"regexp"
	"strings"
)

// trailingCommaRe matches a comma followed only by whitespace before a
// closing brace or bracket.
var trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

// smartQuoteReplacer maps curly/smart quotes to their straight equivalents.
// LLMs occasionally emit typographic quotes inside otherwise valid JSON.
var smartQuoteReplacer = strings.NewReplacer(
	"“", `"`, // left double quotation mark
	"”", `"`, // right double quotation mark
	"‘", "'", // left single quotation mark
	"’", "'", // right single quotation mark
)

// Sanitize applies light recovery normalization to a candidate block before
// strict JSON parsing: trims surrounding whitespace and stray code-fence
// backticks, normalizes smart quotes, and removes trailing commas before a
// closing brace or bracket.
func Sanitize(span string) string {
	cleaned := strings.TrimSpace(span)

	// Strip a stray fence that survived span isolation.
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		if nl := strings.Index(cleaned, "\n"); nl >= 0 {
			firstLine := strings.TrimSpace(cleaned[:nl])
			if firstLine != "" && !strings.Contains(firstLine, "{") {
				cleaned = cleaned[nl+1:]
			}
		}
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	cleaned = strings.Trim(cleaned, "`")
	cleaned = strings.TrimSpace(cleaned)

	cleaned = smartQuoteReplacer.Replace(cleaned)
	cleaned = trailingCommaRe.ReplaceAllString(cleaned, "$1")

	return cleaned
}
