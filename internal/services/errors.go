package services

import "errors"

// InputError is a request the caller has to fix. Its message is returned to
// the client verbatim and background tasks do not retry it.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

func inputError(msg string) error { return &InputError{Message: msg} }

// IsInputError reports whether err is or wraps an InputError.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}
