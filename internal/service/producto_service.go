package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/CSKCREATIONS/ola-sub000/internal/dto"
	"github.com/CSKCREATIONS/ola-sub000/internal/model"
	"github.com/CSKCREATIONS/ola-sub000/internal/repository"
)

// ProductoService defines the business logic contract for products.
// Price changes leave a historial row; activation is gated on the catalog
// hierarchy; stock adjustments always leave a movimiento.
type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	CambiarActivacion(ctx context.Context, id uuid.UUID, activo bool) error
	AjustarStock(ctx context.Context, id uuid.UUID, req dto.AjustarStockRequest) (*dto.ProductoResponse, error)
	HistorialPrecios(ctx context.Context, productoID uuid.UUID, page, limit int) ([]dto.HistorialPrecioResponse, int64, error)
}

type productoService struct {
	repo        repository.ProductoRepository
	historial   repository.HistorialPrecioRepository
	movimientos repository.MovimientoStockRepository
	catalogo    CatalogoService
	rdb         *redis.Client
}

func NewProductoService(
	repo repository.ProductoRepository,
	historial repository.HistorialPrecioRepository,
	movimientos repository.MovimientoStockRepository,
	catalogo CatalogoService,
	rdb *redis.Client,
) ProductoService {
	return &productoService{
		repo:        repo,
		historial:   historial,
		movimientos: movimientos,
		catalogo:    catalogo,
		rdb:         rdb,
	}
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	subID, err := uuid.Parse(req.SubcategoriaID)
	if err != nil {
		return nil, fmt.Errorf("subcategoria_id inválido: %w", err)
	}
	// A new product is born active, so its ancestor chain must be active.
	if err := s.catalogo.PuedeActivarProducto(ctx, subID); err != nil {
		return nil, err
	}

	p := &model.Producto{
		Nombre:         req.Nombre,
		Descripcion:    req.Descripcion,
		PrecioUnitario: req.PrecioUnitario,
		StockActual:    req.StockActual,
		StockMinimo:    req.StockMinimo,
		SubcategoriaID: subID,
		Activo:         true,
	}
	if req.ProveedorID != nil {
		provID, err := uuid.Parse(*req.ProveedorID)
		if err != nil {
			return nil, fmt.Errorf("proveedor_id inválido: %w", err)
		}
		p.ProveedorID = &provID
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return productoToResponse(p), nil
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("producto no encontrado")
	}
	return productoToResponse(p), nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		data = append(data, *productoToResponse(&productos[i]))
	}
	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &dto.ProductoListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("producto no encontrado")
	}

	precioAntes := p.PrecioUnitario
	cambioPrecio := req.PrecioUnitario != nil && !req.PrecioUnitario.Equal(precioAntes)

	if req.Nombre != nil {
		p.Nombre = *req.Nombre
	}
	if req.Descripcion != nil {
		p.Descripcion = req.Descripcion
	}
	if req.PrecioUnitario != nil {
		p.PrecioUnitario = *req.PrecioUnitario
	}
	if req.StockMinimo != nil {
		p.StockMinimo = *req.StockMinimo
	}
	if req.SubcategoriaID != nil {
		subID, err := uuid.Parse(*req.SubcategoriaID)
		if err != nil {
			return nil, fmt.Errorf("subcategoria_id inválido: %w", err)
		}
		// Moving an active product keeps the same rule as activating it:
		// the destination subcategoría and its ancestors must be active.
		if subID != p.SubcategoriaID && p.Activo {
			if err := s.catalogo.PuedeActivarProducto(ctx, subID); err != nil {
				return nil, err
			}
		}
		p.SubcategoriaID = subID
	}
	if req.ProveedorID != nil {
		provID, err := uuid.Parse(*req.ProveedorID)
		if err != nil {
			return nil, fmt.Errorf("proveedor_id inválido: %w", err)
		}
		p.ProveedorID = &provID
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	if cambioPrecio {
		h := &model.HistorialPrecio{
			ProductoID:    p.ID,
			PrecioAntes:   precioAntes,
			PrecioDespues: p.PrecioUnitario,
			Motivo:        "manual",
		}
		if err := s.historial.Create(ctx, h); err != nil {
			log.Error().Err(err).Str("producto_id", p.ID.String()).
				Msg("no se pudo registrar el historial de precio")
		}
		s.invalidarCache(ctx, p.ID)
	}

	return productoToResponse(p), nil
}

func (s *productoService) CambiarActivacion(ctx context.Context, id uuid.UUID, activo bool) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return errors.New("producto no encontrado")
	}
	if activo {
		if err := s.catalogo.PuedeActivarProducto(ctx, p.SubcategoriaID); err != nil {
			return err
		}
	}
	if err := s.repo.SetActivo(ctx, id, activo); err != nil {
		return err
	}
	s.invalidarCache(ctx, id)
	return nil
}

// AjustarStock applies a manual delta and records the movimiento. Negative
// resulting stock is rejected here — manual adjustments have no advisory mode.
func (s *productoService) AjustarStock(ctx context.Context, id uuid.UUID, req dto.AjustarStockRequest) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("producto no encontrado")
	}
	if p.StockActual+req.Delta < 0 {
		return nil, fmt.Errorf("el ajuste dejaría el stock de %s en negativo", p.Nombre)
	}

	stockAntes := p.StockActual
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateStockTx(tx, id, req.Delta); err != nil {
			return err
		}
		mov := &model.MovimientoStock{
			ProductoID:    id,
			Tipo:          "ajuste_manual",
			Cantidad:      req.Delta,
			StockAnterior: stockAntes,
			StockNuevo:    stockAntes + req.Delta,
			Motivo:        req.Motivo,
		}
		return s.movimientos.CreateTx(tx, mov)
	})
	if txErr != nil {
		return nil, txErr
	}

	p.StockActual = stockAntes + req.Delta
	s.invalidarCache(ctx, id)
	return productoToResponse(p), nil
}

func (s *productoService) HistorialPrecios(ctx context.Context, productoID uuid.UUID, page, limit int) ([]dto.HistorialPrecioResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	rows, total, err := s.historial.ListByProducto(ctx, productoID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.HistorialPrecioResponse, 0, len(rows))
	for _, h := range rows {
		out = append(out, dto.HistorialPrecioResponse{
			ID:            h.ID.String(),
			ProductoID:    h.ProductoID.String(),
			PrecioAntes:   h.PrecioAntes,
			PrecioDespues: h.PrecioDespues,
			Motivo:        h.Motivo,
			CreatedAt:     h.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
	return out, total, nil
}

// invalidarCache drops the cached catalog lookup entry. Best effort.
func (s *productoService) invalidarCache(ctx context.Context, id uuid.UUID) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, "catalogo:"+id.String()).Err(); err != nil {
		log.Debug().Err(err).Msg("no se pudo invalidar el cache de catálogo")
	}
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	var provID *string
	if p.ProveedorID != nil {
		s := p.ProveedorID.String()
		provID = &s
	}
	return &dto.ProductoResponse{
		ID:             p.ID.String(),
		Nombre:         p.Nombre,
		Descripcion:    p.Descripcion,
		PrecioUnitario: p.PrecioUnitario,
		StockActual:    p.StockActual,
		StockMinimo:    p.StockMinimo,
		SubcategoriaID: p.SubcategoriaID.String(),
		ProveedorID:    provID,
		Activo:         p.Activo,
	}
}
