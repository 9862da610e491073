// Package validation provides custom validation rules for the application.
package validation

import (
	"encoding/json"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/hash066/biavault/internal/errors"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// JSONObject validates that a byte slice holds a well-formed JSON object.
var JSONObject = validation.By(func(value interface{}) error {
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case json.RawMessage:
		b = v
	default:
		return validation.NewError("validation_json_type", "must be a byte slice")
	}
	if len(b) == 0 {
		return nil // Let Required handle empty payloads
	}
	if !json.Valid(b) {
		return validation.NewError("validation_json", "must be a well-formed JSON document")
	}
	trimmed := strings.TrimLeft(string(b), " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return validation.NewError("validation_json_object", "must be a JSON object")
	}
	return nil
})
