package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/CSKCREATIONS/ola-sub000/internal/apierror"
	"github.com/CSKCREATIONS/ola-sub000/internal/dto"
	"github.com/CSKCREATIONS/ola-sub000/internal/repository"
)

const catalogoCacheTTL = 4 * time.Hour

// ConsultaCatalogoHandler serves the read-only price/stock lookup.
// No authentication required — no side effects whatsoever. The entry is
// invalidated by the producto service on price or activation changes.
type ConsultaCatalogoHandler struct {
	repo repository.ProductoRepository
	rdb  *redis.Client
}

func NewConsultaCatalogoHandler(repo repository.ProductoRepository, rdb *redis.Client) *ConsultaCatalogoHandler {
	return &ConsultaCatalogoHandler{repo: repo, rdb: rdb}
}

// GetPrecio godoc
// @Summary Consulta de precio y stock por producto (sin autenticacion)
// @Tags catalogo
// @Produce json
// @Param id path string true "ID del producto"
// @Success 200 {object} dto.ConsultaCatalogoResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/catalogo/precio/{id} [get]
func (h *ConsultaCatalogoHandler) GetPrecio(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	ctx := c.Request.Context()
	cacheKey := "catalogo:" + id.String()

	// 1. Try Redis cache
	if cached, cacheErr := h.rdb.Get(ctx, cacheKey).Bytes(); cacheErr == nil {
		var resp dto.ConsultaCatalogoResponse
		if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
			c.JSON(http.StatusOK, resp)
			return
		}
	}

	// 2. Cache miss — query DB
	producto, err := h.repo.FindByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Producto no encontrado"))
		return
	}

	resp := dto.ConsultaCatalogoResponse{
		Nombre:          producto.Nombre,
		PrecioUnitario:  producto.PrecioUnitario,
		StockDisponible: producto.StockActual,
		Activo:          producto.Activo,
	}

	// 3. Populate cache — best effort, ignore errors
	if b, jsonErr := json.Marshal(resp); jsonErr == nil {
		_ = h.rdb.Set(context.Background(), cacheKey, b, catalogoCacheTTL).Err()
	}

	c.JSON(http.StatusOK, resp)
}
