package usecase

import (
	"fmt"
	"strings"
	"unicode/utf8"

	apperrors "edwin/internal/shared/errors"
)

const (
	maxTitle       = 200
	maxDescription = 5000
)

func fieldError(field, msg string) error {
	return apperrors.NewValidationError(msg).WithDetail("field", field)
}

// requireText trims *v in place and checks it is non-empty and at most max
// runes. A nil pointer is accepted so PATCH bodies can omit the field.
func requireText(field string, v *string, max int) error {
	if v == nil {
		return nil
	}
	*v = strings.TrimSpace(*v)
	if *v == "" {
		return fieldError(field, fmt.Sprintf("%s is required", field))
	}
	if utf8.RuneCountInString(*v) > max {
		return fieldError(field, fmt.Sprintf("%s must be at most %d characters", field, max))
	}
	return nil
}

func limitText(field string, v *string, max int) error {
	if v != nil && utf8.RuneCountInString(*v) > max {
		return fieldError(field, fmt.Sprintf("%s must be at most %d characters", field, max))
	}
	return nil
}

func oneOf(field string, v *string, valid func(string) bool) error {
	if v != nil && !valid(*v) {
		return fieldError(field, fmt.Sprintf("invalid %s", field))
	}
	return nil
}

func strPtr(s string) *string { return &s }
