package worker

// retry_cron.go
// Background goroutine that periodically re-attempts envíos stuck in
// estado='pendiente' with a next_retry_at in the past. Goes through the
// circuit breaker to avoid hammering a downed SMTP relay.

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/CSKCREATIONS/ola-sub000/internal/infra"
	"github.com/CSKCREATIONS/ola-sub000/internal/model"
	"github.com/CSKCREATIONS/ola-sub000/internal/repository"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
)

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	EnvioRepo repository.EnvioCorreoRepository
	Mailer    Mailer
	CB        *infra.CircuitBreaker
	RDB       *redis.Client
}

// StartRetryCron launches a background goroutine that ticks every 30s,
// queries overdue envíos and re-attempts delivery through the CB.
// It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	// If CB is open, skip entirely — don't hammer a downed relay
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return
	}

	now := time.Now()
	envios, err := cfg.EnvioRepo.ListPendingRetries(ctx, now, retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query pending retries")
		return
	}
	if len(envios) == 0 {
		return
	}

	log.Info().Int("count", len(envios)).Msg("retry_cron: processing pending envíos")

	for i := range envios {
		envio := &envios[i]

		// Check CB state before each send — it may have tripped mid-batch
		if cfg.CB.State() == infra.CBOpen {
			log.Debug().Msg("retry_cron: circuit breaker opened mid-batch, stopping")
			return
		}

		cbErr := cfg.CB.Execute(func() error {
			return cfg.Mailer.EnviarDocumento(ctx, envio.Destinatario, envio.Asunto, envio.Cuerpo)
		})

		if cbErr != nil {
			envio.RetryCount++
			errMsg := cbErr.Error()
			envio.LastError = &errMsg
			nextRetry := time.Now().Add(computeRetryBackoff(envio.RetryCount))
			envio.NextRetryAt = &nextRetry

			if envio.RetryCount >= MaxEnvioRetries {
				envio.Estado = model.EnvioError
				envio.NextRetryAt = nil
				log.Error().
					Str("envio_id", envio.ID.String()).
					Str("documento_id", envio.DocumentoID.String()).
					Int("retries", envio.RetryCount).
					Msg("retry_cron: max retries exceeded, moving to error/DLQ")

				payload := fmt.Sprintf(`{"envio_id":"%s","documento_id":"%s"}`, envio.ID, envio.DocumentoID)
				SendToDLQ(ctx, cfg.RDB, QueueEnvioCorreo, "envio_correo", []byte(payload),
					fmt.Sprintf("max retries (%d) exceeded: %s", MaxEnvioRetries, errMsg),
					envio.RetryCount)
			} else {
				log.Warn().
					Str("envio_id", envio.ID.String()).
					Int("retry_count", envio.RetryCount).
					Time("next_retry_at", *envio.NextRetryAt).
					Msg("retry_cron: send failed, scheduled next attempt")
			}

			_ = cfg.EnvioRepo.Update(ctx, envio)
			continue
		}

		envio.Estado = model.EnvioEnviado
		envio.NextRetryAt = nil
		envio.LastError = nil
		_ = cfg.EnvioRepo.Update(ctx, envio)

		log.Info().
			Str("envio_id", envio.ID.String()).
			Int("total_retries", envio.RetryCount).
			Msg("retry_cron: correo enviado tras reintento")
	}
}
