package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/CSKCREATIONS/ola-sub000/internal/apierror"
	"github.com/CSKCREATIONS/ola-sub000/internal/dto"
	"github.com/CSKCREATIONS/ola-sub000/internal/service"
)

// DocumentosHandler exposes cotizaciones, pedidos and remisiones over one
// uniform surface; the tipo discriminator travels in the payload and filters.
type DocumentosHandler struct{ svc service.DocumentoService }

func NewDocumentosHandler(svc service.DocumentoService) *DocumentosHandler {
	return &DocumentosHandler{svc: svc}
}

// Crear godoc
// @Summary Crear documento (cotización, pedido o remisión)
// @Tags documentos
// @Accept json
// @Produce json
// @Param body body dto.CrearDocumentoRequest true "Documento"
// @Success 201 {object} dto.DocumentoResponse
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/documentos [post]
func (h *DocumentosHandler) Crear(c *gin.Context) {
	var req dto.CrearDocumentoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Obtener GET /v1/documentos/:id
func (h *DocumentosHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, svcErr := h.svc.Obtener(c.Request.Context(), id)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar GET /v1/documentos?tipo=&estado=&page=&limit=
func (h *DocumentosHandler) Listar(c *gin.Context) {
	var filter dto.DocumentoFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Filtros inválidos"))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar documentos"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Actualizar PUT /v1/documentos/:id — replaces client data, fechas and lines.
func (h *DocumentosHandler) Actualizar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.ActualizarDocumentoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, svcErr := h.svc.Actualizar(c.Request.Context(), id, req)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Transicionar godoc
// @Summary Transición de estado (enviar | cancelar | remisionar | cerrar)
// @Tags documentos
// @Accept json
// @Produce json
// @Param id path string true "ID del documento"
// @Param body body dto.TransicionRequest true "Acción"
// @Success 200 {object} dto.DocumentoResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/documentos/{id}/transicion [post]
func (h *DocumentosHandler) Transicionar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.TransicionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, svcErr := h.svc.Transicionar(c.Request.Context(), id, req)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Eliminar DELETE /v1/documentos/:id — only cancelled documents.
func (h *DocumentosHandler) Eliminar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	if svcErr := h.svc.Eliminar(c.Request.Context(), id); svcErr != nil {
		respondError(c, svcErr)
		return
	}
	c.JSON(http.StatusNoContent, nil)
}
