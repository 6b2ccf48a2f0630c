package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/CSKCREATIONS/ola-sub000/internal/model"
)

// CatalogoRepository is the data access contract for the catalog hierarchy
// (categorias, subcategorias and the activation flags of their productos).
// The cascade helpers take a live *gorm.DB so the service can deactivate a
// whole subtree inside one transaction.
type CatalogoRepository interface {
	CrearCategoria(ctx context.Context, c *model.Categoria) error
	ListarCategorias(ctx context.Context) ([]model.Categoria, error)
	CategoriaPorID(ctx context.Context, id uuid.UUID) (*model.Categoria, error)
	CategoriaPorNombre(ctx context.Context, nombre string) (*model.Categoria, error)
	ActualizarCategoria(ctx context.Context, c *model.Categoria) error

	CrearSubcategoria(ctx context.Context, s *model.Subcategoria) error
	ListarSubcategorias(ctx context.Context, categoriaID *uuid.UUID) ([]model.Subcategoria, error)
	SubcategoriaPorID(ctx context.Context, id uuid.UUID) (*model.Subcategoria, error)
	ActualizarSubcategoria(ctx context.Context, s *model.Subcategoria) error

	// Tx cascade helpers — each returns the ids it touched, for the audit log.
	SetActivoCategoriaTx(tx *gorm.DB, id uuid.UUID, activo bool) error
	SetActivoSubcategoriaTx(tx *gorm.DB, id uuid.UUID, activo bool) error
	DesactivarSubcategoriasDeCategoriaTx(tx *gorm.DB, categoriaID uuid.UUID) ([]uuid.UUID, error)
	DesactivarProductosDeSubcategoriasTx(tx *gorm.DB, subcategoriaIDs []uuid.UUID) ([]uuid.UUID, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type catalogoRepo struct{ db *gorm.DB }

func NewCatalogoRepository(db *gorm.DB) CatalogoRepository { return &catalogoRepo{db: db} }

func (r *catalogoRepo) DB() *gorm.DB { return r.db }

func (r *catalogoRepo) CrearCategoria(ctx context.Context, c *model.Categoria) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *catalogoRepo) ListarCategorias(ctx context.Context) ([]model.Categoria, error) {
	var list []model.Categoria
	err := r.db.WithContext(ctx).Order("nombre asc").Find(&list).Error
	return list, err
}

func (r *catalogoRepo) CategoriaPorID(ctx context.Context, id uuid.UUID) (*model.Categoria, error) {
	var c model.Categoria
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *catalogoRepo) CategoriaPorNombre(ctx context.Context, nombre string) (*model.Categoria, error) {
	var c model.Categoria
	if err := r.db.WithContext(ctx).Where("lower(nombre) = lower(?)", nombre).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *catalogoRepo) ActualizarCategoria(ctx context.Context, c *model.Categoria) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *catalogoRepo) CrearSubcategoria(ctx context.Context, s *model.Subcategoria) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *catalogoRepo) ListarSubcategorias(ctx context.Context, categoriaID *uuid.UUID) ([]model.Subcategoria, error) {
	q := r.db.WithContext(ctx).Order("nombre asc")
	if categoriaID != nil {
		q = q.Where("categoria_id = ?", *categoriaID)
	}
	var list []model.Subcategoria
	err := q.Find(&list).Error
	return list, err
}

func (r *catalogoRepo) SubcategoriaPorID(ctx context.Context, id uuid.UUID) (*model.Subcategoria, error) {
	var s model.Subcategoria
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *catalogoRepo) ActualizarSubcategoria(ctx context.Context, s *model.Subcategoria) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *catalogoRepo) SetActivoCategoriaTx(tx *gorm.DB, id uuid.UUID, activo bool) error {
	return tx.Model(&model.Categoria{}).Where("id = ?", id).Update("activo", activo).Error
}

func (r *catalogoRepo) SetActivoSubcategoriaTx(tx *gorm.DB, id uuid.UUID, activo bool) error {
	return tx.Model(&model.Subcategoria{}).Where("id = ?", id).Update("activo", activo).Error
}

func (r *catalogoRepo) DesactivarSubcategoriasDeCategoriaTx(tx *gorm.DB, categoriaID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := tx.Model(&model.Subcategoria{}).
		Where("categoria_id = ? AND activo = true", categoriaID).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return ids, nil
	}
	err := tx.Model(&model.Subcategoria{}).Where("id IN ?", ids).Update("activo", false).Error
	return ids, err
}

func (r *catalogoRepo) DesactivarProductosDeSubcategoriasTx(tx *gorm.DB, subcategoriaIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(subcategoriaIDs) == 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	if err := tx.Model(&model.Producto{}).
		Where("subcategoria_id IN ? AND activo = true", subcategoriaIDs).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return ids, nil
	}
	err := tx.Model(&model.Producto{}).Where("id IN ?", ids).Update("activo", false).Error
	return ids, err
}
