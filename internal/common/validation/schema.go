package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schema is a JSON schema document expressed as Go values.
type Schema map[string]interface{}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// GetErrorMessages returns "field: message" strings.
func (r *ValidationResult) GetErrorMessages() []string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return msgs
}

// Err folds the result into a single error, nil when valid.
func (r *ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return fmt.Errorf("document does not match schema: %s", strings.Join(r.GetErrorMessages(), "; "))
}

// ValidateJSON checks a raw JSON document against schema. Malformed JSON is
// reported as a single INVALID_JSON error.
func ValidateJSON(schema Schema, document []byte) *ValidationResult {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(map[string]interface{}(schema)),
		gojsonschema.NewBytesLoader(document),
	)
	if err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "(root)",
				Message: err.Error(),
				Code:    "INVALID_JSON",
			}},
		}
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out
}

// ActivityListSchema describes the GET /activities payload.
func ActivityListSchema() Schema {
	return Schema{
		"type": "array",
		"items": map[string]interface{}{
			"type": "object",
			"required": []interface{}{
				"id", "name", "description", "schedule", "max_participants", "current_participants",
			},
			"properties": map[string]interface{}{
				"id":                   map[string]interface{}{"type": []interface{}{"integer", "string"}},
				"name":                 map[string]interface{}{"type": "string"},
				"description":          map[string]interface{}{"type": "string"},
				"schedule":             map[string]interface{}{"type": "string"},
				"max_participants":     map[string]interface{}{"type": "integer"},
				"current_participants": map[string]interface{}{"type": "integer"},
			},
		},
	}
}
