package schema

import (
	"fmt"
	"regexp"
	"strconv"
)

// ValidationError reports the first field of a payload that failed its
// schema constraint.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks payload against the table schema. Fields are evaluated
// in schema order and the first failure is returned; nil means the payload
// is insertable.
func (s *TableSchema) Validate(payload map[string]any) *ValidationError {
	for _, f := range s.Fields {
		value, present := payload[f.Name]

		if f.Required && isEmpty(value) {
			return &ValidationError{
				Field:   f.Name,
				Message: fmt.Sprintf("%s is required", f.Label),
			}
		}
		if !present || isEmpty(value) {
			continue
		}

		if err := f.checkConstraints(value); err != nil {
			return err
		}
	}
	return nil
}

// checkConstraints enforces pattern/min/max only for the field types they
// are defined on.
func (f *FieldSchema) checkConstraints(value any) *ValidationError {
	v := f.Validation
	if v == nil {
		return nil
	}

	fail := func(fallback string) *ValidationError {
		msg := v.Message
		if msg == "" {
			msg = fallback
		}
		return &ValidationError{Field: f.Name, Message: msg}
	}

	switch f.Type {
	case FieldText, FieldEmail:
		s, ok := value.(string)
		if !ok || v.Pattern == "" {
			return nil
		}
		re, err := regexp.Compile(v.Pattern)
		if err != nil {
			return nil
		}
		if !re.MatchString(s) {
			return fail(fmt.Sprintf("%s has an invalid value", f.Label))
		}
	case FieldNumber:
		n, ok := toFloat(value)
		if !ok {
			return fail(fmt.Sprintf("%s must be a number", f.Label))
		}
		if v.Min != nil && n < *v.Min {
			return fail(fmt.Sprintf("%s must be at least %g", f.Label, *v.Min))
		}
		if v.Max != nil && n > *v.Max {
			return fail(fmt.Sprintf("%s must be at most %g", f.Label, *v.Max))
		}
	}
	return nil
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	default:
		return false
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		n, err := strconv.ParseFloat(v, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
