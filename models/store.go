package models

import "time"

// Store adalah satu tenant/merchant. Store ID sudah diresolve oleh edge
// router dari subdomain dan dikirim lewat header X-Store-ID.
type Store struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Name               string    `gorm:"type:varchar(255);not null" json:"name"`
	Slug               string    `gorm:"type:varchar(100);unique;not null" json:"slug"`
	Address            string    `gorm:"type:varchar(255);not null" json:"address"`
	Phone              string    `gorm:"type:varchar(30)" json:"phone"`
	PickupInstructions string    `gorm:"type:text" json:"pickup_instructions"`
	CreatedAt          time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time `gorm:"not null" json:"updated_at"`
}
