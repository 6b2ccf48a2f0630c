package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tipos de documento.
const (
	TipoCotizacion = "cotizacion"
	TipoPedido     = "pedido"
	TipoRemision   = "remision"
)

// Estados por tipo. Cotización: borrador → enviada | cancelada.
// Pedido: agendado → remisionado | cancelado.
// Remisión: activa → cerrada | cancelada.
const (
	EstadoBorrador    = "borrador"
	EstadoEnviada     = "enviada"
	EstadoCancelada   = "cancelada"
	EstadoAgendado    = "agendado"
	EstadoRemisionado = "remisionado"
	EstadoCancelado   = "cancelado"
	EstadoActiva      = "activa"
	EstadoCerrada     = "cerrada"
)

// ClienteInfo is the client snapshot embedded in every document.
type ClienteInfo struct {
	Nombre    string `gorm:"column:cliente_nombre;not null"`
	Ciudad    string `gorm:"column:cliente_ciudad"`
	Direccion string `gorm:"column:cliente_direccion"`
	Telefono  string `gorm:"column:cliente_telefono"`
	Correo    string `gorm:"column:cliente_correo"`
}

// Documento is a cotización, pedido agendado or remisión. Código is the
// human-readable sequential identifier (COT-00001, PED-00001, REM-00001),
// unique per prefix. Estado changes only through the documento service;
// cancelled documents may be hard-deleted, closed ones are immutable.
type Documento struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Tipo   string    `gorm:"type:varchar(20);index;not null"`
	Codigo string    `gorm:"uniqueIndex;not null"`
	Estado string    `gorm:"type:varchar(20);index;not null"`

	Cliente ClienteInfo `gorm:"embedded"`

	Total decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	FechaAgendada *time.Time
	FechaEntrega  *time.Time
	FechaRemision *time.Time

	// DocumentoOrigenID links a remisión back to the pedido (or cotización)
	// it was created from.
	DocumentoOrigenID *uuid.UUID `gorm:"type:uuid;index"`

	Items []DocumentoItem `gorm:"foreignKey:DocumentoID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Documento) TableName() string { return "documentos" }

// DocumentoItem is one product line. Cantidad and PrecioUnitario are snapshots
// captured at line-add time, not live-linked to the catalog. Posicion keeps
// insertion order for display only.
type DocumentoItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentoID    uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	NombreProducto string          `gorm:"not null"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DescuentoPct   decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Posicion       int             `gorm:"not null"`
	// ConflictoStock marks an advisory insufficient-stock condition at add time.
	ConflictoStock bool `gorm:"not null;default:false"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (DocumentoItem) TableName() string { return "documento_items" }

// EsTerminal reports whether the document reached a soft-terminal state.
func (d *Documento) EsTerminal() bool {
	switch d.Estado {
	case EstadoEnviada, EstadoCancelada, EstadoRemisionado, EstadoCancelado, EstadoCerrada:
		return true
	}
	return false
}

// EsCancelado reports whether the document sits in its kind's cancelled state,
// the only state from which hard deletion is permitted.
func (d *Documento) EsCancelado() bool {
	return d.Estado == EstadoCancelada || d.Estado == EstadoCancelado
}

// PrefijoPorTipo maps a document kind to its sequence prefix.
func PrefijoPorTipo(tipo string) string {
	switch tipo {
	case TipoCotizacion:
		return "COT"
	case TipoPedido:
		return "PED"
	case TipoRemision:
		return "REM"
	}
	return ""
}

// EstadoInicialPorTipo maps a document kind to its creation state.
func EstadoInicialPorTipo(tipo string) string {
	switch tipo {
	case TipoCotizacion:
		return EstadoBorrador
	case TipoPedido:
		return EstadoAgendado
	case TipoRemision:
		return EstadoActiva
	}
	return ""
}
