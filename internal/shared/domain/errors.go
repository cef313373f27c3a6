package domain

import (
	"errors"
	"fmt"
)

// Taxonomía de errores de almacenamiento que ve el motor de proyecciones.
// Los adaptadores clasifican los errores del driver en su frontera.
var (
	ErrTransientStore = errors.New("transient store error")
	ErrPermanentStore = errors.New("permanent store error")
	ErrDuplicate      = errors.New("duplicate row")
	ErrNotFound       = errors.New("read model row not found")
)

// storeError envuelve la causa original y la marca con su categoría.
type storeError struct {
	kind  error
	cause error
}

func (e *storeError) Error() string {
	return fmt.Sprintf("%s: %v", e.kind, e.cause)
}

func (e *storeError) Unwrap() []error {
	return []error{e.kind, e.cause}
}

// Transient marca err como reintentable. nil se devuelve tal cual.
func Transient(err error) error {
	if err == nil || errors.Is(err, ErrTransientStore) {
		return err
	}
	return &storeError{kind: ErrTransientStore, cause: err}
}

// Permanent marca err como no reintentable. nil se devuelve tal cual.
func Permanent(err error) error {
	if err == nil || errors.Is(err, ErrPermanentStore) {
		return err
	}
	return &storeError{kind: ErrPermanentStore, cause: err}
}

// IsTransient indica si merece la pena reintentar la unidad de trabajo.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransientStore)
}
