package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/CSKCREATIONS/ola-sub000/internal/model"
	"github.com/CSKCREATIONS/ola-sub000/internal/repository"
)

type stubEnvioRepo struct {
	envios map[uuid.UUID]*model.EnvioCorreo
}

func newStubEnvioRepo() *stubEnvioRepo {
	return &stubEnvioRepo{envios: make(map[uuid.UUID]*model.EnvioCorreo)}
}

func (r *stubEnvioRepo) Create(_ context.Context, e *model.EnvioCorreo) error {
	return r.CreateTx(nil, e)
}

func (r *stubEnvioRepo) CreateTx(_ *gorm.DB, e *model.EnvioCorreo) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	r.envios[e.ID] = e
	return nil
}

func (r *stubEnvioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.EnvioCorreo, error) {
	e, ok := r.envios[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return e, nil
}

func (r *stubEnvioRepo) Update(_ context.Context, e *model.EnvioCorreo) error {
	r.envios[e.ID] = e
	return nil
}

func (r *stubEnvioRepo) ListPendingRetries(_ context.Context, now time.Time, limit int) ([]model.EnvioCorreo, error) {
	var out []model.EnvioCorreo
	for _, e := range r.envios {
		if e.Estado == model.EnvioPendiente && e.NextRetryAt != nil && e.NextRetryAt.Before(now) {
			out = append(out, *e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

var _ repository.EnvioCorreoRepository = (*stubEnvioRepo)(nil)

type stubMailer struct {
	fail     bool
	enviados []string
}

func (m *stubMailer) EnviarDocumento(_ context.Context, destinatario, _, _ string) error {
	if m.fail {
		return errors.New("smtp: connection refused")
	}
	m.enviados = append(m.enviados, destinatario)
	return nil
}

func payloadFor(id uuid.UUID) json.RawMessage {
	raw, _ := json.Marshal(EnvioJobPayload{EnvioID: id.String()})
	return raw
}

func seedEnvio(r *stubEnvioRepo, estado string) *model.EnvioCorreo {
	e := &model.EnvioCorreo{
		ID:           uuid.New(),
		DocumentoID:  uuid.New(),
		Destinatario: "cliente@example.com",
		Asunto:       "Remisión REM-00001 entregada",
		Cuerpo:       "Estimado cliente...",
		Estado:       estado,
	}
	r.envios[e.ID] = e
	return e
}

func TestEnvioWorker_EntregaExitosa(t *testing.T) {
	repo := newStubEnvioRepo()
	mailer := &stubMailer{}
	w := NewEnvioWorker(repo, mailer)

	e := seedEnvio(repo, model.EnvioPendiente)
	w.Process(context.Background(), payloadFor(e.ID))

	assert.Equal(t, []string{"cliente@example.com"}, mailer.enviados)
	assert.Equal(t, model.EnvioEnviado, repo.envios[e.ID].Estado)
	assert.Nil(t, repo.envios[e.ID].NextRetryAt)
	assert.Nil(t, repo.envios[e.ID].LastError)
}

func TestEnvioWorker_FalloProgramaReintento(t *testing.T) {
	repo := newStubEnvioRepo()
	mailer := &stubMailer{fail: true}
	w := NewEnvioWorker(repo, mailer)

	e := seedEnvio(repo, model.EnvioPendiente)
	antes := time.Now()
	w.Process(context.Background(), payloadFor(e.ID))

	guardado := repo.envios[e.ID]
	assert.Equal(t, model.EnvioPendiente, guardado.Estado)
	assert.Equal(t, 1, guardado.RetryCount)
	require.NotNil(t, guardado.LastError)
	assert.Contains(t, *guardado.LastError, "smtp")
	require.NotNil(t, guardado.NextRetryAt)
	// Primer reintento: ~1 minuto de backoff.
	assert.WithinDuration(t, antes.Add(time.Minute), *guardado.NextRetryAt, 5*time.Second)
}

func TestEnvioWorker_IgnoraNoPendientes(t *testing.T) {
	repo := newStubEnvioRepo()
	mailer := &stubMailer{}
	w := NewEnvioWorker(repo, mailer)

	e := seedEnvio(repo, model.EnvioEnviado)
	w.Process(context.Background(), payloadFor(e.ID))

	assert.Empty(t, mailer.enviados)
}

func TestEnvioWorker_PayloadInvalido(t *testing.T) {
	repo := newStubEnvioRepo()
	w := NewEnvioWorker(repo, &stubMailer{})

	// Ni el payload corrupto ni un id inexistente deben entrar en pánico.
	w.Process(context.Background(), json.RawMessage(`{"envio_id": "no-es-uuid"}`))
	w.Process(context.Background(), payloadFor(uuid.New()))
}

func TestComputeRetryBackoff_ExponencialConTope(t *testing.T) {
	assert.Equal(t, time.Minute, computeRetryBackoff(1))
	assert.Equal(t, 2*time.Minute, computeRetryBackoff(2))
	assert.Equal(t, 4*time.Minute, computeRetryBackoff(3))
	assert.Equal(t, 16*time.Minute, computeRetryBackoff(5))
	assert.Equal(t, 30*time.Minute, computeRetryBackoff(6))
	assert.Equal(t, 30*time.Minute, computeRetryBackoff(12))
	// Valores fuera de rango se tratan como el primer intento.
	assert.Equal(t, time.Minute, computeRetryBackoff(0))
}
