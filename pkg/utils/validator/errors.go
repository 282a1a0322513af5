package validator

import "strings"

// ValidationError describes one failed rule.
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, tag, message string) *ValidationError {
	return &ValidationError{Field: field, Tag: tag, Message: message}
}

// ValidationErrors collects validation failures.
type ValidationErrors struct {
	Errors []*ValidationError `json:"errors"`
}

// NewValidationErrors creates a collection from errs.
func NewValidationErrors(errs ...*ValidationError) *ValidationErrors {
	return &ValidationErrors{Errors: errs}
}

// Error joins all messages.
func (e *ValidationErrors) Error() string {
	return strings.Join(e.Messages(), "; ")
}

// Append adds err.
func (e *ValidationErrors) Append(err *ValidationError) {
	e.Errors = append(e.Errors, err)
}

// Count returns the number of failures.
func (e *ValidationErrors) Count() int {
	if e == nil {
		return 0
	}
	return len(e.Errors)
}

// First returns the first failure or nil.
func (e *ValidationErrors) First() *ValidationError {
	if e.Count() == 0 {
		return nil
	}
	return e.Errors[0]
}

// Messages returns every message in order.
func (e *ValidationErrors) Messages() []string {
	if e == nil {
		return nil
	}
	msgs := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		msgs = append(msgs, err.Message)
	}
	return msgs
}

// ForField returns the failures of one field.
func (e *ValidationErrors) ForField(field string) []*ValidationError {
	if e == nil {
		return nil
	}
	var out []*ValidationError
	for _, err := range e.Errors {
		if err.Field == field {
			out = append(out, err)
		}
	}
	return out
}
