package models

import "time"

// ModifierGroup mengelompokkan pilihan modifier untuk sebuah item
// (mis. "Ukuran", "Topping") dengan batas minimal/maksimal pilihan.
type ModifierGroup struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	StoreID   uint       `gorm:"not null;index" json:"store_id"`
	Name      string     `gorm:"type:varchar(100);not null" json:"name"`
	MinSelect int        `gorm:"not null;default:0" json:"min_select"`
	MaxSelect int        `gorm:"not null;default:1" json:"max_select"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`
	Modifiers []Modifier `gorm:"foreignKey:GroupID" json:"modifiers,omitempty"`
}

type Modifier struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	GroupID   uint          `gorm:"not null;index" json:"group_id"`
	Group     ModifierGroup `gorm:"foreignKey:GroupID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Name      string        `gorm:"type:varchar(100);not null" json:"name"`
	Price     float64       `gorm:"type:decimal(10,2);not null;default:0.00" json:"price"`
	CreatedAt time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time     `gorm:"not null" json:"updated_at"`
}
