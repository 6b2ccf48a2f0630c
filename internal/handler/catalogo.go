package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/CSKCREATIONS/ola-sub000/internal/apierror"
	"github.com/CSKCREATIONS/ola-sub000/internal/dto"
	"github.com/CSKCREATIONS/ola-sub000/internal/service"
)

// CatalogoHandler exposes the categoria/subcategoria hierarchy and its
// activation cascade.
type CatalogoHandler struct{ svc service.CatalogoService }

func NewCatalogoHandler(svc service.CatalogoService) *CatalogoHandler {
	return &CatalogoHandler{svc: svc}
}

// ── Categorías ────────────────────────────────────────────────────────────────

// CrearCategoria POST /v1/catalogo/categorias
func (h *CatalogoHandler) CrearCategoria(c *gin.Context) {
	var req dto.CrearCategoriaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearCategoria(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarCategorias GET /v1/catalogo/categorias
func (h *CatalogoHandler) ListarCategorias(c *gin.Context) {
	resp, err := h.svc.ListarCategorias(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar categorías"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ActualizarCategoria PUT /v1/catalogo/categorias/:id
func (h *CatalogoHandler) ActualizarCategoria(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.ActualizarCategoriaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, svcErr := h.svc.ActualizarCategoria(c.Request.Context(), id, req)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ActivacionCategoria PATCH /v1/catalogo/categorias/:id/activacion
// Deactivation cascades down to subcategorías and productos; reactivation
// touches only the categoría itself.
func (h *CatalogoHandler) ActivacionCategoria(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.CambiarActivacionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, svcErr := h.svc.CambiarActivacionCategoria(c.Request.Context(), id, req.Activo)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Subcategorías ─────────────────────────────────────────────────────────────

// CrearSubcategoria POST /v1/catalogo/subcategorias
func (h *CatalogoHandler) CrearSubcategoria(c *gin.Context) {
	var req dto.CrearSubcategoriaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearSubcategoria(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarSubcategorias GET /v1/catalogo/subcategorias?categoria_id=
func (h *CatalogoHandler) ListarSubcategorias(c *gin.Context) {
	var categoriaID *uuid.UUID
	if q := c.Query("categoria_id"); q != "" {
		id, err := uuid.Parse(q)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("categoria_id inválido"))
			return
		}
		categoriaID = &id
	}
	resp, err := h.svc.ListarSubcategorias(c.Request.Context(), categoriaID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar subcategorías"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ActualizarSubcategoria PUT /v1/catalogo/subcategorias/:id
func (h *CatalogoHandler) ActualizarSubcategoria(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.ActualizarSubcategoriaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, svcErr := h.svc.ActualizarSubcategoria(c.Request.Context(), id, req)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ActivacionSubcategoria PATCH /v1/catalogo/subcategorias/:id/activacion
func (h *CatalogoHandler) ActivacionSubcategoria(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.CambiarActivacionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, svcErr := h.svc.CambiarActivacionSubcategoria(c.Request.Context(), id, req.Activo)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, resp)
}
