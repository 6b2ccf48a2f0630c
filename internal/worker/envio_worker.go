package worker

// envio_worker.go
// Processes document email jobs from QueueEnvioCorreo: the notifications
// queued when a remisión closes. Failures are not retried inline — the
// envío row gets a backoff timestamp and the retry cron picks it up.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/CSKCREATIONS/ola-sub000/internal/model"
	"github.com/CSKCREATIONS/ola-sub000/internal/repository"
)

// MaxEnvioRetries is the retry budget per envío before it lands in the DLQ.
const MaxEnvioRetries = 5

// Mailer mirrors the synchronous SMTP sender. Declared here so the worker
// package does not depend on the service layer.
type Mailer interface {
	EnviarDocumento(ctx context.Context, destinatario, asunto, cuerpo string) error
}

// EnvioJobPayload is the job envelope sent to QueueEnvioCorreo.
type EnvioJobPayload struct {
	EnvioID string `json:"envio_id"`
}

type EnvioWorker struct {
	envios repository.EnvioCorreoRepository
	mailer Mailer
}

func NewEnvioWorker(envios repository.EnvioCorreoRepository, mailer Mailer) *EnvioWorker {
	return &EnvioWorker{envios: envios, mailer: mailer}
}

// Process delivers one queued envío.
func (w *EnvioWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload EnvioJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("envio_worker: invalid payload")
		return
	}
	id, err := uuid.Parse(payload.EnvioID)
	if err != nil {
		log.Error().Str("envio_id", payload.EnvioID).Msg("envio_worker: invalid envio_id")
		return
	}

	envio, err := w.envios.FindByID(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("envio_id", payload.EnvioID).Msg("envio_worker: envío not found")
		return
	}
	if envio.Estado != model.EnvioPendiente {
		return // already delivered or dead
	}
	if envio.Destinatario == "" {
		log.Warn().Str("envio_id", payload.EnvioID).Msg("envio_worker: empty destinatario — skipping")
		return
	}

	if err := w.mailer.EnviarDocumento(ctx, envio.Destinatario, envio.Asunto, envio.Cuerpo); err != nil {
		envio.RetryCount++
		errMsg := err.Error()
		envio.LastError = &errMsg
		nextRetry := time.Now().Add(computeRetryBackoff(envio.RetryCount))
		envio.NextRetryAt = &nextRetry
		_ = w.envios.Update(ctx, envio)
		log.Warn().Err(err).
			Str("envio_id", payload.EnvioID).
			Time("next_retry_at", nextRetry).
			Msg("envio_worker: send failed, scheduled retry")
		return
	}

	envio.Estado = model.EnvioEnviado
	envio.NextRetryAt = nil
	envio.LastError = nil
	_ = w.envios.Update(ctx, envio)
	log.Info().Str("to", envio.Destinatario).Str("envio_id", payload.EnvioID).
		Msg("envio_worker: correo enviado")
}

// computeRetryBackoff: 1m, 2m, 4m … capped at 30m.
func computeRetryBackoff(retryCount int) time.Duration {
	if retryCount < 1 {
		retryCount = 1
	}
	d := time.Minute * time.Duration(1<<uint(retryCount-1))
	if d > 30*time.Minute {
		d = 30 * time.Minute
	}
	return d
}
