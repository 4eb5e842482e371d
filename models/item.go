package models

import "time"

// Item adalah satu produk yang bisa dipesan, berada di bawah Menu + Category.
type Item struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	StoreID     uint         `gorm:"not null;index" json:"store_id"`
	MenuID      uint         `gorm:"not null" json:"menu_id"`
	Menu        Menu         `gorm:"foreignKey:MenuID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	CategoryID  uint         `gorm:"not null" json:"category_id"`
	Category    MenuCategory `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Name        string       `gorm:"type:varchar(255);not null" json:"name"`
	Price       float64      `gorm:"type:decimal(10,2);not null" json:"price"`
	Description string       `gorm:"type:text" json:"description"`
	ImageUrl    *string      `gorm:"type:varchar(255)" json:"image_url"`
	// Tanpa default di kolom: gorm meng-omit field zero-value yang punya
	// default tag, sehingga Available:false ikut ter-default jadi true.
	// Default true diterapkan di controller saat create.
	Available   bool         `gorm:"not null" json:"available"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null" json:"updated_at"`

	ModifierGroups []ModifierGroup `gorm:"many2many:item_modifier_groups" json:"modifier_groups,omitempty"`
}
