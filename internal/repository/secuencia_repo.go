package repository

import (
	"gorm.io/gorm"
)

// SecuenciaRepository issues per-prefix counter values. NextValorTx must run
// inside the document-creating transaction so a rolled-back create never
// burns a gap observed by readers as a missing document.
type SecuenciaRepository interface {
	NextValorTx(tx *gorm.DB, prefijo string) (int64, error)
}

type secuenciaRepo struct{ db *gorm.DB }

func NewSecuenciaRepository(db *gorm.DB) SecuenciaRepository { return &secuenciaRepo{db: db} }

// NextValorTx increments the counter atomically with a single upsert. Postgres
// takes a row lock on the secuencias row, so concurrent creators serialize here
// and can never observe the same value. Scanning documentos for max(codigo)+1
// is deliberately not offered.
func (r *secuenciaRepo) NextValorTx(tx *gorm.DB, prefijo string) (int64, error) {
	var valor int64
	err := tx.Raw(`
		INSERT INTO secuencias (prefijo, valor, updated_at)
		VALUES (?, 1, now())
		ON CONFLICT (prefijo) DO UPDATE
		SET valor = secuencias.valor + 1, updated_at = now()
		RETURNING valor
	`, prefijo).Scan(&valor).Error
	return valor, err
}
