package model

import "time"

// Empresa represents a tenant: a company with its own public catalog,
// addressed by its unique slug.
type Empresa struct {
	ID        uint       `json:"id" gorm:"primarykey"`
	Nombre    string     `json:"nombre" gorm:"type:varchar(255);not null"`
	Slug      string     `json:"slug" gorm:"type:varchar(100);uniqueIndex;not null"`
	Whatsapp  string     `json:"whatsapp" gorm:"type:varchar(50)"`
	Publicado bool       `json:"publicado" gorm:"default:false;not null"`
	Productos []Producto `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
