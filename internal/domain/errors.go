package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrNotCancelable = errors.New("order can only be canceled while awaiting payment")
)

// ValidationError carries structured field/form errors the way the API
// reports them: per-field messages plus an optional form-level message.
type ValidationError struct {
	Fields    map[string]string
	FormError string
}

func (e *ValidationError) Error() string {
	if e.FormError != "" {
		return e.FormError
	}
	for _, msg := range e.Fields {
		return msg
	}
	return "validation failed"
}

func FieldError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func FormError(msg string) *ValidationError {
	return &ValidationError{FormError: msg}
}

// AsValidation unwraps err into a *ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
