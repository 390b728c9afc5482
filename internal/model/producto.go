package model

import "time"

// Producto represents a catalog item belonging to one Empresa. Codigo is
// unique within a tenant, enforced by the composite index so concurrent
// imports cannot create duplicates.
type Producto struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	EmpresaID   uint      `json:"empresa_id" gorm:"uniqueIndex:idx_empresa_codigo;not null"`
	Codigo      string    `json:"codigo" gorm:"type:varchar(100);uniqueIndex:idx_empresa_codigo;not null"`
	Descripcion string    `json:"descripcion" gorm:"type:text;not null"`
	Categoria   string    `json:"categoria" gorm:"type:varchar(100)"`
	Marca       string    `json:"marca" gorm:"type:varchar(100)"`
	Precio      float64   `json:"precio" gorm:"not null"`
	Stock       int       `json:"stock" gorm:"default:0"`
	Activo      bool      `json:"activo" gorm:"default:true"`
	ImagenURL   string    `json:"imagen_url" gorm:"type:varchar(255)"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
