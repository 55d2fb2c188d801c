package types

import (
	"github.com/go-playground/validator/v10"
)

// SendMessageRequest represents one conversational turn from the user.
type SendMessageRequest struct {
	Message string `json:"message" validate:"required,min=1,max=8000"`
}

// ImportResumeRequest carries raw resume text to be converted into a
// structured document. Text is the already-extracted plain text.
type ImportResumeRequest struct {
	Text string `json:"text" validate:"required,min=1"`
}

// SessionResponse is returned when a session is created or fetched.
type SessionResponse struct {
	SessionID string          `json:"session_id"`
	Document  *ResumeDocument `json:"document"`
}

// TurnResponse is returned after a message or import is processed.
type TurnResponse struct {
	SessionID string          `json:"session_id"`
	Reply     string          `json:"reply,omitempty"`
	Applied   bool            `json:"applied"`
	Code      string          `json:"code,omitempty"`
	Warnings  []string        `json:"warnings,omitempty"`
	Document  *ResumeDocument `json:"document"`
}

// ErrorResponse is the JSON error body for API failures.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Validate validates the SendMessageRequest using the validator.
func (r *SendMessageRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the ImportResumeRequest using the validator.
func (r *ImportResumeRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
