package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrValidation   = errors.New("validación fallida")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrStore        = errors.New("error del almacén de datos")
	ErrUnauthorized = errors.New("no autorizado")
)

// Validation envuelve ErrValidation con un mensaje legible para el cliente.
func Validation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// StoreFailure envuelve un fallo del almacén conservando la causa original para errors.Is/As.
func StoreFailure(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStore, op, err)
}

// IsClientError indica si el error se debe a la entrada del cliente (validación o cuerpo inválido).
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrInvalidInput)
}
