package apperrors

import (
	"errors"
	"strings"
)

// ValidationError describes a single field that failed validation.
type ValidationError struct {
	Field  string // request field name as the client sent it
	Value  any    // offending value, if any
	ErrStr string // human readable message
	Type   string // machine readable category, e.g. "missing" or "int_parsing"
}

func (ve ValidationError) Error() string {
	if len(ve.Field) > 0 {
		return ve.Field + ": " + ve.ErrStr
	}
	return ve.ErrStr
}

// ValidationErrors is a collection of field failures reported together.
type ValidationErrors []ValidationError

func (ves ValidationErrors) Error() string {
	parts := make([]string, 0, len(ves))
	for _, ve := range ves {
		parts = append(parts, ve.Error())
	}
	return strings.Join(parts, "; ")
}

// FieldErrors extracts the validation errors carried anywhere in err's chain.
func FieldErrors(err error) ValidationErrors {
	if err == nil {
		return nil
	}
	var ves ValidationErrors
	if errors.As(err, &ves) {
		return ves
	}
	var ve ValidationError
	if errors.As(err, &ve) {
		return ValidationErrors{ve}
	}
	return nil
}
