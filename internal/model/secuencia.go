package model

import "time"

// Secuencia is the per-prefix atomic counter backing document codes.
// Incremented with a single upsert (INSERT … ON CONFLICT DO UPDATE … RETURNING)
// inside the creating transaction — never by scanning existing documents.
type Secuencia struct {
	Prefijo   string `gorm:"type:varchar(10);primaryKey"`
	Valor     int64  `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

func (Secuencia) TableName() string { return "secuencias" }
