package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-chat-builder/internal/llm"
	"github.com/jonathan/resume-chat-builder/internal/types"
)

// stubClient returns canned responses in order, or an error.
type stubClient struct {
	responses []string
	err       error
	prompts   []string
}

func (s *stubClient) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "", fmt.Errorf("no stub response configured")
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

func TestProcessAppliesTaggedBlock(t *testing.T) {
	doc := types.NewResumeDocument()
	raw := `Done! [RESUME_DATA]{"skills": ["Go", "Rust"]}[/RESUME_DATA]`

	outcome := Process(raw, doc)

	require.True(t, outcome.Applied())
	assert.Empty(t, outcome.Warnings)
	assert.Equal(t, []string{"Go", "Rust"}, outcome.Document.Skills)
	assert.Empty(t, doc.Skills, "input document untouched")
}

func TestProcessNoBlockLeavesDocumentUnchanged(t *testing.T) {
	doc := types.NewResumeDocument()
	doc.Skills = []string{"Go"}

	outcome := Process("I have a question, can you clarify the role?", doc)

	assert.Equal(t, CodeNoBlockFound, outcome.Code)
	assert.Same(t, doc, outcome.Document)
}

func TestProcessParseError(t *testing.T) {
	doc := types.NewResumeDocument()

	outcome := Process(`broken {"summary": "unclosed string} block`, doc)

	assert.Equal(t, CodeParseError, outcome.Code)
	assert.Same(t, doc, outcome.Document)
}

func TestProcessEmptyPatch(t *testing.T) {
	doc := types.NewResumeDocument()
	doc.Summary = "Engineer"

	outcome := Process(`[RESUME_DATA]{"operation": "patch"}[/RESUME_DATA]`, doc)

	assert.Equal(t, CodeEmptyPatch, outcome.Code)
	assert.Equal(t, "Engineer", outcome.Document.Summary)
}

func TestProcessCollectsDegradedRecoveryWarning(t *testing.T) {
	doc := types.NewResumeDocument()

	outcome := Process(`[RESUME_DATA]{"skills": ["Go"]} trailing prose`, doc)

	require.True(t, outcome.Applied())
	assert.Contains(t, outcome.Warnings, "recovered without closing marker")
}

func TestProcessIdempotentForAdditivePatch(t *testing.T) {
	raw := `[RESUME_DATA]{"experience": {"company": "Acme", "description": ["Shipped X"]}, "skills": ["Go"]}[/RESUME_DATA]`

	once := Process(raw, types.NewResumeDocument())
	require.True(t, once.Applied())
	twice := Process(raw, once.Document)
	require.True(t, twice.Applied())

	// IDs are generated per insert, so compare the merged content.
	assert.Equal(t, once.Document.Skills, twice.Document.Skills)
	require.Len(t, twice.Document.Experiences, 1)
	assert.Equal(t, once.Document.Experiences[0].Description, twice.Document.Experiences[0].Description)
}

func TestChatTurnAppliesResponse(t *testing.T) {
	stub := &stubClient{responses: []string{
		`Added! [RESUME_DATA]{"skills": ["Go"]}[/RESUME_DATA] Anything else?`,
	}}
	chat := NewChat(stub, nil)
	doc := types.NewResumeDocument()

	result, err := chat.Turn(context.Background(), doc, "add Go to my skills")

	require.NoError(t, err)
	require.True(t, result.Applied())
	assert.Equal(t, []string{"Go"}, result.Document.Skills)
	assert.Equal(t, "Added!  Anything else?", result.Reply)

	// The prompt carries the current document and the user message.
	require.Len(t, stub.prompts, 1)
	assert.Contains(t, stub.prompts[0], "add Go to my skills")
	assert.Contains(t, stub.prompts[0], `"experiences"`)
}

func TestChatTurnModelFailureIsNoBlock(t *testing.T) {
	stub := &stubClient{err: fmt.Errorf("deadline exceeded")}
	chat := NewChat(stub, nil)
	doc := types.NewResumeDocument()
	doc.Skills = []string{"Go"}

	result, err := chat.Turn(context.Background(), doc, "hello")

	require.Error(t, err)
	var apiErr *APICallError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, CodeNoBlockFound, result.Code)
	assert.Same(t, doc, result.Document)
}

func TestChatImportReplacesDocument(t *testing.T) {
	stub := &stubClient{responses: []string{
		`[RESUME_DATA]{"operation": "replace", "completeResume": {"summary": "Engineer", "skills": ["Go"], "contact": {"fullName": "Ada"}}}[/RESUME_DATA]`,
	}}
	chat := NewChat(stub, nil)
	doc := types.NewResumeDocument()
	doc.Skills = []string{"Stale"}

	result, err := chat.Import(context.Background(), doc, "Ada. Engineer. Go.")

	require.NoError(t, err)
	require.True(t, result.Applied())
	assert.Equal(t, []string{"Go"}, result.Document.Skills)
	assert.Equal(t, "Ada", result.Document.Contact.FullName)
}

func TestNeedsContactName(t *testing.T) {
	assert.False(t, NeedsContactName(nil))
	assert.False(t, NeedsContactName(types.NewResumeDocument()), "empty document needs no follow-up")

	doc := types.NewResumeDocument()
	doc.Skills = []string{"Go"}
	assert.True(t, NeedsContactName(doc))

	doc.Contact.FullName = "Ada"
	assert.False(t, NeedsContactName(doc))
}
