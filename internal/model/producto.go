package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is a sellable catalog item hanging from a Subcategoria.
// PrecioUnitario is the live catalog price; documents snapshot it into their
// lines at add time, so later changes here never rewrite existing documents.
type Producto struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre         string    `gorm:"index;not null"`
	Descripcion    *string
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	StockActual    int             `gorm:"not null;default:0"`
	StockMinimo    int             `gorm:"not null;default:5"`
	SubcategoriaID uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProveedorID    *uuid.UUID      `gorm:"type:uuid;index"`
	Activo         bool            `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Subcategoria *Subcategoria `gorm:"foreignKey:SubcategoriaID"`
	Proveedor    *Proveedor    `gorm:"foreignKey:ProveedorID"`
}

func (Producto) TableName() string { return "productos" }
