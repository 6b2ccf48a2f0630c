package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/CSKCREATIONS/ola-sub000/internal/repository"
)

// stubSecuenciaRepo emulates the atomic upsert with an in-memory counter map.
type stubSecuenciaRepo struct {
	mu      sync.Mutex
	valores map[string]int64
}

func newStubSecuenciaRepo() *stubSecuenciaRepo {
	return &stubSecuenciaRepo{valores: make(map[string]int64)}
}

func (r *stubSecuenciaRepo) NextValorTx(_ *gorm.DB, prefijo string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.valores[prefijo]++
	return r.valores[prefijo], nil
}

var _ repository.SecuenciaRepository = (*stubSecuenciaRepo)(nil)

func TestSiguienteCodigo_PrefijosIndependientes(t *testing.T) {
	svc := NewSecuenciaService(newStubSecuenciaRepo())

	c1, err := svc.SiguienteCodigoTx(nil, "cotizacion")
	require.NoError(t, err)
	assert.Equal(t, "COT-00001", c1)

	p1, err := svc.SiguienteCodigoTx(nil, "pedido")
	require.NoError(t, err)
	assert.Equal(t, "PED-00001", p1)

	c2, err := svc.SiguienteCodigoTx(nil, "cotizacion")
	require.NoError(t, err)
	assert.Equal(t, "COT-00002", c2)

	r1, err := svc.SiguienteCodigoTx(nil, "remision")
	require.NoError(t, err)
	assert.Equal(t, "REM-00001", r1)
}

func TestSiguienteCodigo_TipoDesconocido(t *testing.T) {
	svc := NewSecuenciaService(newStubSecuenciaRepo())
	_, err := svc.SiguienteCodigoTx(nil, "factura")
	assert.Error(t, err)
}

func TestSiguienteCodigo_Concurrente(t *testing.T) {
	// 50 emisores en paralelo nunca reciben el mismo código.
	svc := NewSecuenciaService(newStubSecuenciaRepo())

	const n = 50
	codigos := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := svc.SiguienteCodigoTx(nil, "pedido")
			assert.NoError(t, err)
			codigos <- c
		}()
	}
	wg.Wait()
	close(codigos)

	vistos := make(map[string]bool, n)
	for c := range codigos {
		assert.False(t, vistos[c], "código repetido: %s", c)
		vistos[c] = true
	}
	assert.Len(t, vistos, n)
}

func TestFormatearCodigo(t *testing.T) {
	assert.Equal(t, "COT-00042", FormatearCodigo("COT", 42))
	// El padding no recorta cuando el contador supera 5 dígitos.
	assert.Equal(t, "REM-123456", FormatearCodigo("REM", 123456))
}
