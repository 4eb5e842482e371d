package models

import "time"

// User adalah akun staff/admin sebuah store.
type User struct {
	ID        uint   `gorm:"primaryKey"`
	StoreID   uint   `gorm:"not null;index"`
	Name      string `gorm:"type:varchar(255); not null"`
	Email     string `gorm:"type:varchar(255); unique;not null"`
	Password  string `gorm:"type:varchar(255); not null"`
	Role      string `gorm:"type:varchar(255); not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
