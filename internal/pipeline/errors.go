package pipeline

import "fmt"

// APICallError represents a failure of the external model call. The pipeline
// treats any such failure as "no structured block found" and leaves the
// document unchanged; the caller decides user-facing messaging.
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("model call failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("model call failed: %s", e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}
