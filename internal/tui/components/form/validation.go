package form

import (
	"fmt"
	"regexp"
	"strings"
)

// FieldValidation holds runtime validation rules for a text field.
type FieldValidation struct {
	Required  bool
	MaxLength int
	Pattern   *regexp.Regexp
	// Hint replaces the default pattern mismatch message.
	Hint string
	// Check runs last on non-empty values, e.g. to parse an amount.
	Check func(string) error
}

// ValidateText checks a text value against the validation rules and
// returns a message, or "" when the value is valid.
func (v FieldValidation) ValidateText(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		if v.Required {
			return "required"
		}
		return ""
	}
	if v.MaxLength > 0 && len(value) > v.MaxLength {
		return fmt.Sprintf("maximum %d characters", v.MaxLength)
	}
	if v.Pattern != nil && !v.Pattern.MatchString(value) {
		if v.Hint != "" {
			return v.Hint
		}
		return fmt.Sprintf("must match pattern: %s", v.Pattern.String())
	}
	if v.Check != nil {
		if err := v.Check(value); err != nil {
			return err.Error()
		}
	}
	return ""
}
