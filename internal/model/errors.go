package model

import (
	"errors"
	"fmt"
)

// Таксономия ошибок рабочего процесса.
var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrStore             = errors.New("store failure")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError оборачивает ErrValidation с указанием поля.
func ValidationError(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrValidation, field, reason)
}

// PartialWorkflowError: шаг, выполненный после фиксации основной операции, упал.
// Основная операция при этом уже успешна.
type PartialWorkflowError struct {
	Step string
	Err  error
}

func (e *PartialWorkflowError) Error() string {
	return fmt.Sprintf("workflow step %q failed: %v", e.Step, e.Err)
}

func (e *PartialWorkflowError) Unwrap() error { return e.Err }
