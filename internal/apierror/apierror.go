// Package apierror provides standardized error response structures for the API
// plus the typed domain errors shared by the business core. All errors returned
// to clients go through this package to ensure consistency and to prevent
// leaking internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ── Validation ────────────────────────────────────────────────────────────────

// FieldError is one violated business rule on a document field.
// Campo uses dotted paths ("cliente.correo", "items[2].cantidad").
type FieldError struct {
	Campo   string `json:"campo"`
	Mensaje string `json:"mensaje"`
}

// ValidationErrors is the full batch of violations for a submission.
// Always returned whole — callers render one consolidated list.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validacion fallida"
	}
	return fmt.Sprintf("validacion fallida: %d errores (%s)", len(v), v[0].Mensaje)
}

// ValidationError wraps multiple field errors for the HTTP envelope.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

// FromFieldErrors converts a domain batch into the HTTP envelope.
func FromFieldErrors(errs ValidationErrors) *ValidationError {
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[fe.Campo] = fe.Mensaje
	}
	return NewValidation(fields)
}

// ── Domain taxonomy ───────────────────────────────────────────────────────────

// StockWarning flags an insufficient-stock condition on a line. Advisory:
// the line is still added and calculated, the caller decides how to surface it.
type StockWarning struct {
	ProductoID uuid.UUID `json:"producto_id"`
	Deficit    int       `json:"deficit"`
}

func (w StockWarning) String() string {
	return fmt.Sprintf("stock insuficiente para producto %s (faltan %d)", w.ProductoID, w.Deficit)
}

// IllegalTransition rejects a lifecycle change the state machine does not allow.
// Never silently coerced into another transition.
type IllegalTransition struct {
	Desde  string
	Hacia  string
	Motivo string
}

func (e *IllegalTransition) Error() string {
	if e.Motivo != "" {
		return fmt.Sprintf("transicion ilegal %s → %s: %s", e.Desde, e.Hacia, e.Motivo)
	}
	return fmt.Sprintf("transicion ilegal %s → %s", e.Desde, e.Hacia)
}

// ParentInactive rejects an activation whose ancestor chain is not fully active.
// Surfaced verbatim to the caller.
type ParentInactive struct {
	AncestroID uuid.UUID
}

func (e *ParentInactive) Error() string {
	return fmt.Sprintf("no se puede activar: el nodo padre %s está inactivo", e.AncestroID)
}

// ErrConflictoConcurrencia is surfaced after the single internal retry of a
// duplicate sequence code also fails. The caller may retry the whole operation.
var ErrConflictoConcurrencia = errors.New("conflicto de concurrencia al emitir el código de documento")

// ErrStockInsuficiente replaces the advisory warning only when the central
// blocking policy (STOCK_BLOQUEANTE) is enabled.
var ErrStockInsuficiente = errors.New("stock insuficiente para completar el documento")
