package domain

import "errors"

var (
	ErrValidation     = errors.New("validation failed")
	ErrSessionMissing = errors.New("session missing")
)

// ValidationError envuelve los errores de campos detectados antes de llamar a la API.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return ErrValidation.Error()
	}
	return ErrValidation.Error() + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
