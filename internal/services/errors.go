package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Common service errors
var (
	ErrNotFound           = errors.New("registro no encontrado")
	ErrInvalidCredentials = errors.New("credenciales inválidas")
	ErrInactiveAccount    = errors.New("cuenta inactiva")
	ErrInvalidState       = errors.New("transición de estado inválida")
)

// ValidationError is bad user input. Its message is shown to the operator as is.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// NotFoundError is a lookup that matched nothing.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s no encontrado", e.Entity)
}

// Is lets errors.Is(err, ErrNotFound) match any NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// PersistenceError is a failed database step. The transaction it ran in was rolled back.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func notFound(entity string) error {
	return &NotFoundError{Entity: entity}
}

// persist wraps a database error, turning a missing row into NotFoundError.
func persist(op, entity string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity)
	}
	var verr *ValidationError
	var nerr *NotFoundError
	var perr *PersistenceError
	if errors.As(err, &verr) || errors.As(err, &nerr) || errors.As(err, &perr) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// IsNotFound reports whether err is a NotFoundError or ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
