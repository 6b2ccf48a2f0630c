package service

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/CSKCREATIONS/ola-sub000/internal/model"
	"github.com/CSKCREATIONS/ola-sub000/internal/repository"
)

// SecuenciaService issues document codes (COT-00001, PED-00001, REM-00001).
// The counter bump is an atomic upsert on the secuencias row, so concurrent
// issuers inside separate transactions never read the same value.
type SecuenciaService interface {
	SiguienteCodigoTx(tx *gorm.DB, tipo string) (string, error)
}

type secuenciaService struct {
	secuencias repository.SecuenciaRepository
}

func NewSecuenciaService(secuencias repository.SecuenciaRepository) SecuenciaService {
	return &secuenciaService{secuencias: secuencias}
}

func (s *secuenciaService) SiguienteCodigoTx(tx *gorm.DB, tipo string) (string, error) {
	prefijo := model.PrefijoPorTipo(tipo)
	if prefijo == "" {
		return "", fmt.Errorf("tipo de documento desconocido: %q", tipo)
	}
	valor, err := s.secuencias.NextValorTx(tx, prefijo)
	if err != nil {
		return "", fmt.Errorf("obteniendo siguiente valor de secuencia %s: %w", prefijo, err)
	}
	return FormatearCodigo(prefijo, valor), nil
}

// FormatearCodigo renders a code as PREFIJO-00042 (zero padded to 5, wider
// if the counter outgrows it).
func FormatearCodigo(prefijo string, valor int64) string {
	return fmt.Sprintf("%s-%05d", prefijo, valor)
}
