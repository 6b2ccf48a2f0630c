package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/CSKCREATIONS/ola-sub000/internal/apierror"
	"github.com/CSKCREATIONS/ola-sub000/internal/dto"
	"github.com/CSKCREATIONS/ola-sub000/internal/model"
	"github.com/CSKCREATIONS/ola-sub000/internal/repository"
)

// CatalogoService governs the categoria → subcategoria → producto hierarchy.
// Deactivation cascades down the whole subtree in one transaction; activation
// never cascades and is gated on every ancestor being active.
type CatalogoService interface {
	CrearCategoria(ctx context.Context, req dto.CrearCategoriaRequest) (*dto.CategoriaResponse, error)
	ListarCategorias(ctx context.Context) ([]dto.CategoriaResponse, error)
	ActualizarCategoria(ctx context.Context, id uuid.UUID, req dto.ActualizarCategoriaRequest) (*dto.CategoriaResponse, error)

	CrearSubcategoria(ctx context.Context, req dto.CrearSubcategoriaRequest) (*dto.SubcategoriaResponse, error)
	ListarSubcategorias(ctx context.Context, categoriaID *uuid.UUID) ([]dto.SubcategoriaResponse, error)
	ActualizarSubcategoria(ctx context.Context, id uuid.UUID, req dto.ActualizarSubcategoriaRequest) (*dto.SubcategoriaResponse, error)

	CambiarActivacionCategoria(ctx context.Context, id uuid.UUID, activo bool) (*dto.CascadaResponse, error)
	CambiarActivacionSubcategoria(ctx context.Context, id uuid.UUID, activo bool) (*dto.CascadaResponse, error)

	// PuedeActivarProducto gates product activation on its ancestors.
	PuedeActivarProducto(ctx context.Context, subcategoriaID uuid.UUID) error
}

type catalogoService struct {
	repo repository.CatalogoRepository
}

func NewCatalogoService(repo repository.CatalogoRepository) CatalogoService {
	return &catalogoService{repo: repo}
}

// ── Categorías ────────────────────────────────────────────────────────────────

func (s *catalogoService) CrearCategoria(ctx context.Context, req dto.CrearCategoriaRequest) (*dto.CategoriaResponse, error) {
	if existing, err := s.repo.CategoriaPorNombre(ctx, req.Nombre); err == nil && existing != nil {
		return nil, fmt.Errorf("ya existe una categoría con el nombre %q", req.Nombre)
	}
	c := &model.Categoria{
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		Activo:      true,
	}
	if err := s.repo.CrearCategoria(ctx, c); err != nil {
		return nil, err
	}
	return categoriaToResponse(c), nil
}

func (s *catalogoService) ListarCategorias(ctx context.Context) ([]dto.CategoriaResponse, error) {
	cats, err := s.repo.ListarCategorias(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoriaResponse, 0, len(cats))
	for i := range cats {
		out = append(out, *categoriaToResponse(&cats[i]))
	}
	return out, nil
}

func (s *catalogoService) ActualizarCategoria(ctx context.Context, id uuid.UUID, req dto.ActualizarCategoriaRequest) (*dto.CategoriaResponse, error) {
	c, err := s.repo.CategoriaPorID(ctx, id)
	if err != nil {
		return nil, errors.New("categoría no encontrada")
	}
	if req.Nombre != nil {
		c.Nombre = *req.Nombre
	}
	if req.Descripcion != nil {
		c.Descripcion = req.Descripcion
	}
	if err := s.repo.ActualizarCategoria(ctx, c); err != nil {
		return nil, err
	}
	return categoriaToResponse(c), nil
}

// ── Subcategorías ─────────────────────────────────────────────────────────────

func (s *catalogoService) CrearSubcategoria(ctx context.Context, req dto.CrearSubcategoriaRequest) (*dto.SubcategoriaResponse, error) {
	categoriaID, err := uuid.Parse(req.CategoriaID)
	if err != nil {
		return nil, fmt.Errorf("categoria_id inválido: %w", err)
	}
	cat, err := s.repo.CategoriaPorID(ctx, categoriaID)
	if err != nil {
		return nil, errors.New("categoría no encontrada")
	}
	if !cat.Activo {
		return nil, &apierror.ParentInactive{AncestroID: cat.ID}
	}
	sub := &model.Subcategoria{
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		CategoriaID: categoriaID,
		Activo:      true,
	}
	if err := s.repo.CrearSubcategoria(ctx, sub); err != nil {
		return nil, err
	}
	return subcategoriaToResponse(sub), nil
}

func (s *catalogoService) ListarSubcategorias(ctx context.Context, categoriaID *uuid.UUID) ([]dto.SubcategoriaResponse, error) {
	subs, err := s.repo.ListarSubcategorias(ctx, categoriaID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SubcategoriaResponse, 0, len(subs))
	for i := range subs {
		out = append(out, *subcategoriaToResponse(&subs[i]))
	}
	return out, nil
}

func (s *catalogoService) ActualizarSubcategoria(ctx context.Context, id uuid.UUID, req dto.ActualizarSubcategoriaRequest) (*dto.SubcategoriaResponse, error) {
	sub, err := s.repo.SubcategoriaPorID(ctx, id)
	if err != nil {
		return nil, errors.New("subcategoría no encontrada")
	}
	if req.Nombre != nil {
		sub.Nombre = *req.Nombre
	}
	if req.Descripcion != nil {
		sub.Descripcion = req.Descripcion
	}
	if err := s.repo.ActualizarSubcategoria(ctx, sub); err != nil {
		return nil, err
	}
	return subcategoriaToResponse(sub), nil
}

// ── Activación ────────────────────────────────────────────────────────────────

func (s *catalogoService) CambiarActivacionCategoria(ctx context.Context, id uuid.UUID, activo bool) (*dto.CascadaResponse, error) {
	if _, err := s.repo.CategoriaPorID(ctx, id); err != nil {
		return nil, errors.New("categoría no encontrada")
	}

	resp := &dto.CascadaResponse{Nivel: "categoria", NodoID: id}

	if activo {
		// Reactivation touches only this node; children stay as they are.
		if err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			return s.repo.SetActivoCategoriaTx(tx, id, true)
		}); err != nil {
			return nil, err
		}
		return resp, nil
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.SetActivoCategoriaTx(tx, id, false); err != nil {
			return err
		}
		subIDs, err := s.repo.DesactivarSubcategoriasDeCategoriaTx(tx, id)
		if err != nil {
			return err
		}
		prodIDs, err := s.repo.DesactivarProductosDeSubcategoriasTx(tx, subIDs)
		if err != nil {
			return err
		}
		resp.SubcategoriasDesactivadas = subIDs
		resp.ProductosDesactivados = prodIDs
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("categoria_id", id.String()).
		Int("subcategorias", len(resp.SubcategoriasDesactivadas)).
		Int("productos", len(resp.ProductosDesactivados)).
		Msg("categoría desactivada en cascada")
	return resp, nil
}

func (s *catalogoService) CambiarActivacionSubcategoria(ctx context.Context, id uuid.UUID, activo bool) (*dto.CascadaResponse, error) {
	sub, err := s.repo.SubcategoriaPorID(ctx, id)
	if err != nil {
		return nil, errors.New("subcategoría no encontrada")
	}

	resp := &dto.CascadaResponse{Nivel: "subcategoria", NodoID: id}

	if activo {
		cat, err := s.repo.CategoriaPorID(ctx, sub.CategoriaID)
		if err != nil {
			return nil, errors.New("categoría no encontrada")
		}
		if !cat.Activo {
			return nil, &apierror.ParentInactive{AncestroID: cat.ID}
		}
		if err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			return s.repo.SetActivoSubcategoriaTx(tx, id, true)
		}); err != nil {
			return nil, err
		}
		return resp, nil
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.SetActivoSubcategoriaTx(tx, id, false); err != nil {
			return err
		}
		prodIDs, err := s.repo.DesactivarProductosDeSubcategoriasTx(tx, []uuid.UUID{id})
		if err != nil {
			return err
		}
		resp.ProductosDesactivados = prodIDs
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("subcategoria_id", id.String()).
		Int("productos", len(resp.ProductosDesactivados)).
		Msg("subcategoría desactivada en cascada")
	return resp, nil
}

// PuedeActivarProducto checks that the product's subcategoría and its
// categoría are both active. Returns ParentInactive naming the nearest
// inactive ancestor.
func (s *catalogoService) PuedeActivarProducto(ctx context.Context, subcategoriaID uuid.UUID) error {
	sub, err := s.repo.SubcategoriaPorID(ctx, subcategoriaID)
	if err != nil {
		return errors.New("subcategoría no encontrada")
	}
	if !sub.Activo {
		return &apierror.ParentInactive{AncestroID: sub.ID}
	}
	cat, err := s.repo.CategoriaPorID(ctx, sub.CategoriaID)
	if err != nil {
		return errors.New("categoría no encontrada")
	}
	if !cat.Activo {
		return &apierror.ParentInactive{AncestroID: cat.ID}
	}
	return nil
}

func categoriaToResponse(c *model.Categoria) *dto.CategoriaResponse {
	return &dto.CategoriaResponse{
		ID:          c.ID,
		Nombre:      c.Nombre,
		Descripcion: c.Descripcion,
		Activo:      c.Activo,
	}
}

func subcategoriaToResponse(s *model.Subcategoria) *dto.SubcategoriaResponse {
	return &dto.SubcategoriaResponse{
		ID:          s.ID,
		Nombre:      s.Nombre,
		Descripcion: s.Descripcion,
		CategoriaID: s.CategoriaID,
		Activo:      s.Activo,
	}
}
