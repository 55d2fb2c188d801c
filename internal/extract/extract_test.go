package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTaggedBlock(t *testing.T) {
	raw := `Sure! [RESUME_DATA]{"summary": "Backend engineer"}[/RESUME_DATA]`

	res := Extract(raw)

	require.Equal(t, FailureNone, res.Failure)
	assert.Equal(t, WarningNone, res.Warning)
	assert.Equal(t, "Backend engineer", res.Data["summary"])
}

func TestExtractUnterminatedBlock(t *testing.T) {
	raw := `[RESUME_DATA]{"skills": ["Go","Rust"]} here is more text`

	res := Extract(raw)

	require.Equal(t, FailureNone, res.Failure)
	assert.Equal(t, WarningUnterminated, res.Warning)
	skills, ok := res.Data["skills"].([]any)
	require.True(t, ok, "skills should be an array")
	assert.Equal(t, []any{"Go", "Rust"}, skills)
}

func TestExtractUnterminatedNestedBraces(t *testing.T) {
	raw := `[RESUME_DATA]{"experience": {"company": "Acme"}} trailing prose`

	res := Extract(raw)

	require.Equal(t, FailureNone, res.Failure)
	assert.Equal(t, WarningUnterminated, res.Warning)
	exp, ok := res.Data["experience"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Acme", exp["company"])
}

func TestExtractFencedBlock(t *testing.T) {
	raw := "Here you go:\n```json\n{\"summary\": \"Platform engineer\"}\n```\nLet me know."

	res := Extract(raw)

	require.Equal(t, FailureNone, res.Failure)
	assert.Equal(t, WarningFencedFallback, res.Warning)
	assert.Equal(t, "Platform engineer", res.Data["summary"])
}

func TestExtractFencedBlockWithoutLanguage(t *testing.T) {
	raw := "```\n{\"skills\": [\"Kubernetes\"]}\n```"

	res := Extract(raw)

	require.Equal(t, FailureNone, res.Failure)
	assert.Equal(t, WarningFencedFallback, res.Warning)
}

func TestExtractBareObjectFallback(t *testing.T) {
	raw := `I updated your resume. {"skills": ["Terraform"]} Anything else?`

	res := Extract(raw)

	require.Equal(t, FailureNone, res.Failure)
	assert.Equal(t, WarningUntagged, res.Warning)
}

func TestExtractNoBlockFound(t *testing.T) {
	raw := "I have a question, can you clarify the role?"

	res := Extract(raw)

	assert.Equal(t, FailureNoBlock, res.Failure)
	assert.Nil(t, res.Data)
}

func TestExtractParseError(t *testing.T) {
	// A candidate brace span exists but never parses, even after recovery.
	raw := `The block {"summary": "unclosed string} is broken`

	res := Extract(raw)

	assert.Equal(t, FailureParse, res.Failure)
}

func TestExtractStrategyPriority(t *testing.T) {
	// A tagged block and a bare object coexist; the tagged block must win.
	raw := `{"summary": "wrong"} then [RESUME_DATA]{"summary": "right"}[/RESUME_DATA]`

	res := Extract(raw)

	require.Equal(t, FailureNone, res.Failure)
	assert.Equal(t, WarningNone, res.Warning)
	assert.Equal(t, "right", res.Data["summary"])
}

func TestExtractMalformedTaggedFallsThrough(t *testing.T) {
	// The tagged interior is unparseable garbage; the fenced block after it
	// should still be recovered.
	raw := "[RESUME_DATA]not json at all[/RESUME_DATA]\n```json\n{\"summary\": \"ok\"}\n```"

	res := Extract(raw)

	require.Equal(t, FailureNone, res.Failure)
	assert.Equal(t, WarningFencedFallback, res.Warning)
	assert.Equal(t, "ok", res.Data["summary"])
}

func TestExtractRecoversTrailingComma(t *testing.T) {
	raw := `[RESUME_DATA]{"skills": ["Go", "Rust",],}[/RESUME_DATA]`

	res := Extract(raw)

	require.Equal(t, FailureNone, res.Failure)
	assert.Equal(t, WarningNone, res.Warning)
}

func TestExtractRecoversSmartQuotes(t *testing.T) {
	raw := "[RESUME_DATA]{“summary”: “SRE”}[/RESUME_DATA]"

	res := Extract(raw)

	require.Equal(t, FailureNone, res.Failure)
	assert.Equal(t, "SRE", res.Data["summary"])
}

func TestExtractRejectsNonObject(t *testing.T) {
	raw := `[RESUME_DATA]["just", "an", "array"][/RESUME_DATA]`

	res := Extract(raw)

	// Arrays are not a valid block; the bare-object fallback finds nothing.
	assert.NotEqual(t, FailureNone, res.Failure)
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"trims whitespace", "  {\"a\": 1}  ", `{"a": 1}`},
		{"strips fence with language", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"strips bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"strips stray backticks", "`{\"a\": 1}`", `{"a": 1}`},
		{"removes trailing comma in object", `{"a": 1,}`, `{"a": 1}`},
		{"removes trailing comma in array", `{"a": [1, 2,]}`, `{"a": [1, 2]}`},
		{"normalizes double smart quotes", "{“a”: 1}", `{"a": 1}`},
		{"empty input", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Sanitize(tt.input))
		})
	}
}
