package dto

import (
	"github.com/shopspring/decimal"

	"github.com/CSKCREATIONS/ola-sub000/internal/apierror"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ClienteInfoRequest is the client snapshot submitted with a document.
// Business rules (required fields, email format) are enforced by the
// validation engine, not by binding tags, so the caller always receives the
// complete consolidated error list.
type ClienteInfoRequest struct {
	Nombre    string `json:"nombre"`
	Ciudad    string `json:"ciudad"`
	Direccion string `json:"direccion"`
	Telefono  string `json:"telefono"`
	Correo    string `json:"correo"`
}

type ItemDocumentoRequest struct {
	ProductoID   string          `json:"producto_id"   validate:"required,uuid"`
	Cantidad     int             `json:"cantidad"`
	DescuentoPct decimal.Decimal `json:"descuento_pct" validate:"min=0,max=100"`
}

type CrearDocumentoRequest struct {
	Tipo          string                 `json:"tipo" validate:"required,oneof=cotizacion pedido remision"`
	Cliente       ClienteInfoRequest     `json:"cliente"`
	Items         []ItemDocumentoRequest `json:"items"`
	FechaAgendada *string                `json:"fecha_agendada"` // YYYY-MM-DD
	FechaEntrega  *string                `json:"fecha_entrega"`  // YYYY-MM-DD
}

type ActualizarDocumentoRequest struct {
	Cliente       *ClienteInfoRequest    `json:"cliente"`
	Items         []ItemDocumentoRequest `json:"items"`
	FechaAgendada *string                `json:"fecha_agendada"`
	FechaEntrega  *string                `json:"fecha_entrega"`
}

// TransicionRequest drives the state machine.
// Accion: "enviar" | "cancelar" | "remisionar" | "cerrar".
// Confirmado must be true for "cancelar" — the UI confirmation dialog result
// travels with the request instead of being assumed.
type TransicionRequest struct {
	Accion     string `json:"accion" validate:"required,oneof=enviar cancelar remisionar cerrar"`
	Confirmado bool   `json:"confirmado"`
}

type DocumentoFilter struct {
	Tipo   string `form:"tipo"`
	Estado string `form:"estado"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemDocumentoResponse struct {
	ID             string          `json:"id"`
	ProductoID     string          `json:"producto_id"`
	Producto       string          `json:"producto"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	DescuentoPct   decimal.Decimal `json:"descuento_pct"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	ConflictoStock bool            `json:"conflicto_stock"`
}

type DocumentoResponse struct {
	ID                string                  `json:"id"`
	Tipo              string                  `json:"tipo"`
	Codigo            string                  `json:"codigo"`
	Estado            string                  `json:"estado"`
	Cliente           ClienteInfoRequest      `json:"cliente"`
	Items             []ItemDocumentoResponse `json:"items"`
	Total             decimal.Decimal         `json:"total"`
	FechaAgendada     *string                 `json:"fecha_agendada,omitempty"`
	FechaEntrega      *string                 `json:"fecha_entrega,omitempty"`
	FechaRemision     *string                 `json:"fecha_remision,omitempty"`
	DocumentoOrigenID *string                 `json:"documento_origen_id,omitempty"`
	// Advertencias carries the advisory stock warnings for the caller to render.
	Advertencias []apierror.StockWarning `json:"advertencias,omitempty"`
	CreatedAt    string                  `json:"created_at"`
}

type DocumentoListResponse struct {
	Data  []DocumentoResponse `json:"data"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}
