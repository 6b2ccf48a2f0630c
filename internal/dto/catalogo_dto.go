package dto

import "github.com/google/uuid"

// ── Request DTOs ──────────────────────────────────────────────────────────────

type CrearCategoriaRequest struct {
	Nombre      string  `json:"nombre"      validate:"required,min=2,max=100"`
	Descripcion *string `json:"descripcion"`
}

type ActualizarCategoriaRequest struct {
	Nombre      *string `json:"nombre"      validate:"omitempty,min=2,max=100"`
	Descripcion *string `json:"descripcion"`
}

type CrearSubcategoriaRequest struct {
	Nombre      string  `json:"nombre"       validate:"required,min=2,max=100"`
	Descripcion *string `json:"descripcion"`
	CategoriaID string  `json:"categoria_id" validate:"required,uuid"`
}

type ActualizarSubcategoriaRequest struct {
	Nombre      *string `json:"nombre"      validate:"omitempty,min=2,max=100"`
	Descripcion *string `json:"descripcion"`
}

// CambiarActivacionRequest toggles activation for any catalog node.
// Nivel: "categoria" | "subcategoria" | "producto".
type CambiarActivacionRequest struct {
	Activo bool `json:"activo"`
}

// ── Response DTOs ─────────────────────────────────────────────────────────────

type CategoriaResponse struct {
	ID          uuid.UUID `json:"id"`
	Nombre      string    `json:"nombre"`
	Descripcion *string   `json:"descripcion,omitempty"`
	Activo      bool      `json:"activo"`
}

type SubcategoriaResponse struct {
	ID          uuid.UUID `json:"id"`
	Nombre      string    `json:"nombre"`
	Descripcion *string   `json:"descripcion,omitempty"`
	CategoriaID uuid.UUID `json:"categoria_id"`
	Activo      bool      `json:"activo"`
}

// CascadaResponse reports what a deactivation touched, mirroring the audit log.
type CascadaResponse struct {
	Nivel                    string      `json:"nivel"`
	NodoID                   uuid.UUID   `json:"nodo_id"`
	SubcategoriasDesactivadas []uuid.UUID `json:"subcategorias_desactivadas,omitempty"`
	ProductosDesactivados    []uuid.UUID `json:"productos_desactivados,omitempty"`
}
