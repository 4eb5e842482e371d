package models

import "time"

// Notification adalah notifikasi untuk staff dashboard, ditulis oleh
// reconciler saat delivery selesai/gagal atau quote tidak bisa dibatalkan.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StoreID   uint      `gorm:"not null;index" json:"store_id"`
	Title     *string   `gorm:"type:varchar(100)" json:"title"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Type      string    `gorm:"type:varchar(30);not null;default:'general'" json:"type"`
	Status    string    `gorm:"type:varchar(20);not null;default:'unread'" json:"status"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
