package model

import (
	"time"

	"github.com/google/uuid"
)

// Categoria is the root level of the catalog hierarchy
// (Categoria → Subcategoria → Producto).
// Deactivating a category cascades down to all its descendants;
// reactivation never cascades — each level is reactivated explicitly.
type Categoria struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre      string    `gorm:"uniqueIndex;not null"`
	Descripcion *string
	Activo      bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides GORM's default singular → plural logic for Spanish names.
func (Categoria) TableName() string { return "categorias" }

// Subcategoria is the middle level of the catalog hierarchy. It may be
// activated only while its parent category is active.
type Subcategoria struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre      string    `gorm:"index;not null"`
	Descripcion *string
	CategoriaID uuid.UUID `gorm:"type:uuid;index;not null"`
	Activo      bool      `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Categoria *Categoria `gorm:"foreignKey:CategoriaID"`
}

func (Subcategoria) TableName() string { return "subcategorias" }
