package model

import (
	"time"

	"github.com/google/uuid"
)

// Estados de un envío de correo.
const (
	EnvioPendiente = "pendiente"
	EnvioEnviado   = "enviado"
	EnvioError     = "error"
)

// EnvioCorreo tracks every outbound document email. Cotización dispatches are
// recorded already sent (the state transition is gated on SMTP success);
// remisión notifications are queued pendiente and delivered by the worker pool,
// with the retry cron re-attempting failures until MaxEnvioRetries.
type EnvioCorreo struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentoID  uuid.UUID `gorm:"type:uuid;index;not null"`
	Destinatario string    `gorm:"not null"`
	Asunto       string    `gorm:"not null"`
	Cuerpo       string
	Estado       string `gorm:"type:varchar(20);not null;default:'pendiente'"`
	// Retry fields — used by the retry cron to re-attempt failed sends
	RetryCount  int        `gorm:"not null;default:0"`
	NextRetryAt *time.Time `gorm:"column:next_retry_at"`
	LastError   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (EnvioCorreo) TableName() string { return "envios_correo" }
