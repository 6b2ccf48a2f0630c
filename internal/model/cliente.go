package model

import (
	"time"

	"github.com/google/uuid"
)

// Cliente is one record of the local client directory. Documents copy the
// client data into their own snapshot, so edits here do not rewrite history.
type Cliente struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"index;not null"`
	Ciudad    string
	Direccion string
	Telefono  string `gorm:"not null"`
	Correo    string `gorm:"not null"`
	Activo    bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Cliente) TableName() string { return "clientes" }
