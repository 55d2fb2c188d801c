// Package schemas provides JSON Schema validation for extracted edit blocks.
// Validation is advisory: the normalizer tolerates shapes the schema rejects,
// so results surface as warnings, never as failures.
package schemas

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed patch_source.schema.json
var patchSourceSchema string

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// ValidatePatchSource validates an extracted block against the patch-source
// schema and returns one human-readable warning per violation. A schema load
// or evaluation error yields no warnings; advisory validation must never
// block the pipeline.
func ValidatePatchSource(raw []byte) []string {
	err := ValidateJSONString(patchSourceSchema, string(raw))
	if err == nil {
		return nil
	}

	validationErr, ok := err.(*ValidationError)
	if !ok {
		return nil
	}

	warnings := make([]string, 0, len(validationErr.Errors))
	for _, fieldErr := range validationErr.Errors {
		warnings = append(warnings, fmt.Sprintf("block field %s: %s", fieldErr.Field, fieldErr.Message))
	}
	return warnings
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation failed during load: %w", err)
	}

	if result.Valid() {
		return nil
	}

	// Build structured error
	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}

	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}
