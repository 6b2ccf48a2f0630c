package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/CSKCREATIONS/ola-sub000/internal/dto"
	"github.com/CSKCREATIONS/ola-sub000/internal/model"
)

// DocumentoRepository is the data access contract for cotizaciones, pedidos
// and remisiones. State-changing writes take a live *gorm.DB so the documento
// service can commit a transition and its side effects as one unit.
type DocumentoRepository interface {
	CreateTx(tx *gorm.DB, d *model.Documento) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Documento, error)
	FindByCodigo(ctx context.Context, codigo string) (*model.Documento, error)
	List(ctx context.Context, filter dto.DocumentoFilter) ([]model.Documento, int64, error)
	UpdateTx(tx *gorm.DB, d *model.Documento) error
	UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string) error
	ReplaceItemsTx(tx *gorm.DB, documentoID uuid.UUID, items []model.DocumentoItem) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	DB() *gorm.DB
}

type documentoRepo struct{ db *gorm.DB }

func NewDocumentoRepository(db *gorm.DB) DocumentoRepository { return &documentoRepo{db: db} }

func (r *documentoRepo) DB() *gorm.DB { return r.db }

func (r *documentoRepo) CreateTx(tx *gorm.DB, d *model.Documento) error {
	return tx.Create(d).Error
}

func (r *documentoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Documento, error) {
	var d model.Documento
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("posicion ASC") }).
		First(&d, id).Error
	return &d, err
}

func (r *documentoRepo) FindByCodigo(ctx context.Context, codigo string) (*model.Documento, error) {
	var d model.Documento
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("posicion ASC") }).
		Where("codigo = ?", codigo).First(&d).Error
	return &d, err
}

func (r *documentoRepo) List(ctx context.Context, filter dto.DocumentoFilter) ([]model.Documento, int64, error) {
	var docs []model.Documento
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Documento{})
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}
	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("posicion ASC") }).
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&docs).Error
	return docs, total, err
}

// UpdateTx persists the document row. Items are replaced separately via
// ReplaceItemsTx, so the association is omitted here.
func (r *documentoRepo) UpdateTx(tx *gorm.DB, d *model.Documento) error {
	return tx.Omit("Items").Save(d).Error
}

func (r *documentoRepo) UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, estado string) error {
	return tx.Model(&model.Documento{}).Where("id = ?", id).Update("estado", estado).Error
}

// ReplaceItemsTx swaps the full line set of a document. Item snapshots are
// recalculated by the service before this is called.
func (r *documentoRepo) ReplaceItemsTx(tx *gorm.DB, documentoID uuid.UUID, items []model.DocumentoItem) error {
	if err := tx.Where("documento_id = ?", documentoID).Delete(&model.DocumentoItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].DocumentoID = documentoID
	}
	return tx.Create(&items).Error
}

func (r *documentoRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Where("documento_id = ?", id).Delete(&model.DocumentoItem{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.Documento{}, "id = ?", id).Error
}
