package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	Nombre         string          `json:"nombre"          validate:"required,min=2,max=120"`
	Descripcion    *string         `json:"descripcion"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" validate:"required,min=0"`
	StockActual    int             `json:"stock_actual"    validate:"min=0"`
	StockMinimo    int             `json:"stock_minimo"    validate:"min=0"`
	SubcategoriaID string          `json:"subcategoria_id" validate:"required,uuid"`
	ProveedorID    *string         `json:"proveedor_id"    validate:"omitempty,uuid"`
}

type ActualizarProductoRequest struct {
	Nombre         *string          `json:"nombre"          validate:"omitempty,min=2,max=120"`
	Descripcion    *string          `json:"descripcion"`
	PrecioUnitario *decimal.Decimal `json:"precio_unitario"`
	StockMinimo    *int             `json:"stock_minimo"    validate:"omitempty,min=0"`
	SubcategoriaID *string          `json:"subcategoria_id" validate:"omitempty,uuid"`
	ProveedorID    *string          `json:"proveedor_id"    validate:"omitempty,uuid"`
}

type AjustarStockRequest struct {
	Delta  int    `json:"delta"  validate:"required"`
	Motivo string `json:"motivo" validate:"required,min=3"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductoFilter struct {
	Nombre         string `form:"nombre"`
	SubcategoriaID string `form:"subcategoria_id"`
	ProveedorID    string `form:"proveedor_id"`
	Activo         string `form:"activo"` // "false" | "all" | default activos
	Page           int    `form:"page,default=1"   validate:"min=1"`
	Limit          int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID             string          `json:"id"`
	Nombre         string          `json:"nombre"`
	Descripcion    *string         `json:"descripcion"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	StockActual    int             `json:"stock_actual"`
	StockMinimo    int             `json:"stock_minimo"`
	SubcategoriaID string          `json:"subcategoria_id"`
	ProveedorID    *string         `json:"proveedor_id"`
	Activo         bool            `json:"activo"`
}

type ProductoListResponse struct {
	Data       []ProductoResponse `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

// ConsultaCatalogoResponse is returned by the cached catalog lookup endpoint.
type ConsultaCatalogoResponse struct {
	Nombre          string          `json:"nombre"`
	PrecioUnitario  decimal.Decimal `json:"precio_unitario"`
	StockDisponible int             `json:"stock_disponible"`
	Activo          bool            `json:"activo"`
}

type HistorialPrecioResponse struct {
	ID            string          `json:"id"`
	ProductoID    string          `json:"producto_id"`
	PrecioAntes   decimal.Decimal `json:"precio_antes"`
	PrecioDespues decimal.Decimal `json:"precio_despues"`
	Motivo        string          `json:"motivo"`
	CreatedAt     string          `json:"created_at"`
}
