package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearClienteRequest struct {
	Nombre    string `json:"nombre"    validate:"required,min=2,max=150"`
	Ciudad    string `json:"ciudad"`
	Direccion string `json:"direccion"`
	Telefono  string `json:"telefono"  validate:"required"`
	Correo    string `json:"correo"    validate:"required,email"`
}

type ActualizarClienteRequest struct {
	Nombre    *string `json:"nombre"    validate:"omitempty,min=2,max=150"`
	Ciudad    *string `json:"ciudad"`
	Direccion *string `json:"direccion"`
	Telefono  *string `json:"telefono"`
	Correo    *string `json:"correo"    validate:"omitempty,email"`
}

type ClienteFilter struct {
	Buscar string `form:"buscar"` // autocomplete by name
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ClienteResponse struct {
	ID        string `json:"id"`
	Nombre    string `json:"nombre"`
	Ciudad    string `json:"ciudad"`
	Direccion string `json:"direccion"`
	Telefono  string `json:"telefono"`
	Correo    string `json:"correo"`
	Activo    bool   `json:"activo"`
	// Origen distinguishes local records from external directory hits
	Origen string `json:"origen"` // "local" | "directorio"
}

type ClienteListResponse struct {
	Data  []ClienteResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
