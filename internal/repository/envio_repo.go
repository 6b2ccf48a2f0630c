package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/CSKCREATIONS/ola-sub000/internal/model"
)

// EnvioCorreoRepository tracks queued and sent document emails.
type EnvioCorreoRepository interface {
	Create(ctx context.Context, e *model.EnvioCorreo) error
	CreateTx(tx *gorm.DB, e *model.EnvioCorreo) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.EnvioCorreo, error)
	Update(ctx context.Context, e *model.EnvioCorreo) error
	// ListPendingRetries returns pendiente envíos whose next_retry_at has passed.
	ListPendingRetries(ctx context.Context, now time.Time, limit int) ([]model.EnvioCorreo, error)
}

type envioRepo struct{ db *gorm.DB }

func NewEnvioCorreoRepository(db *gorm.DB) EnvioCorreoRepository { return &envioRepo{db: db} }

func (r *envioRepo) Create(ctx context.Context, e *model.EnvioCorreo) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *envioRepo) CreateTx(tx *gorm.DB, e *model.EnvioCorreo) error {
	return tx.Create(e).Error
}

func (r *envioRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.EnvioCorreo, error) {
	var e model.EnvioCorreo
	err := r.db.WithContext(ctx).First(&e, id).Error
	return &e, err
}

func (r *envioRepo) Update(ctx context.Context, e *model.EnvioCorreo) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *envioRepo) ListPendingRetries(ctx context.Context, now time.Time, limit int) ([]model.EnvioCorreo, error) {
	var envios []model.EnvioCorreo
	err := r.db.WithContext(ctx).
		Where("estado = ? AND next_retry_at IS NOT NULL AND next_retry_at <= ?", model.EnvioPendiente, now).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&envios).Error
	return envios, err
}
