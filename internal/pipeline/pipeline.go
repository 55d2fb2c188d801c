// Package pipeline runs raw model output through the extract, normalize, and
// apply stages, producing the next resume document. It also owns the prompts
// sent to the model collaborator for chat turns, resume imports, and the
// missing-name follow-up.
package pipeline

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/jonathan/resume-chat-builder/internal/extract"
	"github.com/jonathan/resume-chat-builder/internal/llm"
	"github.com/jonathan/resume-chat-builder/internal/merge"
	"github.com/jonathan/resume-chat-builder/internal/normalize"
	"github.com/jonathan/resume-chat-builder/internal/prompts"
	"github.com/jonathan/resume-chat-builder/internal/schemas"
	"github.com/jonathan/resume-chat-builder/internal/types"
)

// Code classifies the outcome of one pipeline run. None of these are fatal:
// the conversation continues with the document unchanged.
type Code string

// Outcome codes.
const (
	// CodeApplied means a patch was recovered and applied.
	CodeApplied Code = ""
	// CodeNoBlockFound means every extraction strategy was exhausted.
	CodeNoBlockFound Code = "NO_BLOCK_FOUND"
	// CodeParseError means a candidate block was found but never parsed.
	CodeParseError Code = "PARSE_ERROR"
	// CodeEmptyPatch means the normalized patch had no actionable fields.
	CodeEmptyPatch Code = "EMPTY_PATCH"
)

// Outcome is the result of running one raw response through the pipeline.
// Document always holds the current state: the new document on success, the
// input document otherwise.
type Outcome struct {
	Document *types.ResumeDocument
	Patch    *types.Patch
	Warnings []string
	Code     Code
}

// Applied reports whether the document changed state.
func (o Outcome) Applied() bool {
	return o.Code == CodeApplied
}

// Process runs raw model output through extraction, normalization, and
// application against the given document. It is pure: the input document is
// never mutated, and all failures are returned as outcome codes.
func Process(rawText string, doc *types.ResumeDocument) Outcome {
	if doc == nil {
		doc = types.NewResumeDocument()
	}

	res := extract.Extract(rawText)
	switch res.Failure {
	case extract.FailureNoBlock:
		return Outcome{Document: doc, Code: CodeNoBlockFound}
	case extract.FailureParse:
		return Outcome{Document: doc, Code: CodeParseError}
	}

	var warnings []string
	if res.Warning != extract.WarningNone {
		warnings = append(warnings, string(res.Warning))
	}
	warnings = append(warnings, schemas.ValidatePatchSource(res.Raw)...)

	patch := normalize.Normalize(res.Raw)
	if patch.IsEmpty() {
		return Outcome{Document: doc, Patch: patch, Warnings: warnings, Code: CodeEmptyPatch}
	}

	return Outcome{
		Document: merge.Apply(doc, patch),
		Patch:    patch,
		Warnings: warnings,
		Code:     CodeApplied,
	}
}

// Generator is the narrow model-call surface the pipeline needs. llm.Client
// satisfies it.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
}

// Chat drives model-backed pipeline runs: each method issues one model call
// and merges the response through Process.
type Chat struct {
	client Generator
	logger *zap.Logger
}

// NewChat creates a Chat around a model client.
func NewChat(client Generator, logger *zap.Logger) *Chat {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chat{client: client, logger: logger}
}

// TurnResult pairs a pipeline outcome with the conversational text of the
// model response, block stripped for display.
type TurnResult struct {
	Outcome
	Reply string
}

// GenerateTurn issues the model call for one user message against a document
// snapshot and returns the raw response text. The snapshot only shapes the
// prompt; the response must be applied against whatever document is current
// at apply time.
func (c *Chat) GenerateTurn(ctx context.Context, doc *types.ResumeDocument, message string) (string, error) {
	prompt := prompts.Format(prompts.MustGet("chat.json", "chat-turn"), map[string]string{
		"Document": documentJSON(doc),
		"Message":  message,
	})
	return c.generate(ctx, prompt, llm.TierStandard)
}

// GenerateImport issues the model call converting extracted resume text into
// a replace block.
func (c *Chat) GenerateImport(ctx context.Context, resumeText string) (string, error) {
	prompt := prompts.Format(prompts.MustGet("chat.json", "import-resume"), map[string]string{
		"ResumeText": resumeText,
	})
	return c.generate(ctx, prompt, llm.TierAdvanced)
}

// GenerateFollowUpName issues the automatic follow-up requesting a missing
// contact name. Its result is merged through the identical pipeline; it is
// not a special case at the applicator level.
func (c *Chat) GenerateFollowUpName(ctx context.Context) (string, error) {
	return c.generate(ctx, prompts.MustGet("chat.json", "followup-name"), llm.TierLite)
}

// Turn sends one user message to the model and applies the embedded edit to
// the document. A model-call failure surfaces as NO_BLOCK_FOUND with the
// document unchanged, plus the wrapped error for caller messaging.
func (c *Chat) Turn(ctx context.Context, doc *types.ResumeDocument, message string) (TurnResult, error) {
	raw, err := c.GenerateTurn(ctx, doc, message)
	return c.apply(doc, raw, err)
}

// Import asks the model to convert extracted resume text into a replace
// block and applies it through the identical pipeline.
func (c *Chat) Import(ctx context.Context, doc *types.ResumeDocument, resumeText string) (TurnResult, error) {
	raw, err := c.GenerateImport(ctx, resumeText)
	return c.apply(doc, raw, err)
}

// NeedsContactName reports whether a document has content but no candidate
// name, the trigger for the automatic follow-up.
func NeedsContactName(doc *types.ResumeDocument) bool {
	return doc != nil && !doc.IsEmpty() && doc.Contact.FullName == ""
}

func (c *Chat) generate(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	raw, err := c.client.GenerateContent(ctx, prompt, tier)
	if err != nil {
		c.logger.Warn("model call failed", zap.Error(err))
		return "", &APICallError{Message: "generate content", Cause: err}
	}
	return raw, nil
}

func (c *Chat) apply(doc *types.ResumeDocument, raw string, err error) (TurnResult, error) {
	if err != nil {
		return TurnResult{
			Outcome: Outcome{Document: doc, Code: CodeNoBlockFound},
		}, err
	}

	outcome := Process(raw, doc)
	c.logger.Debug("pipeline run",
		zap.String("code", string(outcome.Code)),
		zap.Strings("warnings", outcome.Warnings),
	)

	return TurnResult{
		Outcome: outcome,
		Reply:   extract.StripBlock(raw),
	}, nil
}

func documentJSON(doc *types.ResumeDocument) string {
	if doc == nil {
		doc = types.NewResumeDocument()
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
