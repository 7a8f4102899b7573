package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrUserNotFound         = errors.New("usuario no encontrado")
	ErrUsernameExists       = errors.New("el nombre de usuario ya existe")
	ErrEmailAlreadyExists   = errors.New("el email ya está registrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrDuplicate            = errors.New("recurso duplicado")
	ErrUnauthorized         = errors.New("no autorizado")
	ErrForbidden            = errors.New("acceso denegado")
	ErrConflict             = errors.New("conflicto con el estado actual")
	ErrInsufficientStock    = errors.New("stock insuficiente")
	ErrAlertaTerminal       = errors.New("la alerta ya fue resuelta o ignorada")
	ErrDesafioExpirado      = errors.New("el desafío de confirmación expiró")
	ErrConfirmacionInvalida = errors.New("el texto de confirmación no coincide")
	ErrUsuarioReferenciado  = errors.New("el usuario tiene movimientos o alertas asociados y no puede eliminarse")
)

// ValidationError transporta errores por campo de forma estructurada,
// en lugar de codificar JSON dentro del mensaje. La clave "general"
// se reserva para errores que no pertenecen a un campo concreto.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError construye un ValidationError vacío listo para agregar campos.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

// Add registra el mensaje para un campo. Conserva el primer mensaje por campo.
func (e *ValidationError) Add(field, message string) *ValidationError {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
	return e
}

// HasErrors indica si se registró al menos un campo.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// Error implementa error con un resumen legible y determinista.
func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validación: " + strings.Join(parts, "; ")
}

// AsValidation devuelve el ValidationError si err lo es (directo o envuelto).
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
