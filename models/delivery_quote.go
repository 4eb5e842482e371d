package models

import "time"

// Status quote di sisi kita
const (
	QuoteStatusQuoted    = "quoted"
	QuoteStatusAccepted  = "accepted"
	QuoteStatusCancelled = "cancelled"
	QuoteStatusExpired   = "expired"
)

// DeliveryQuote adalah penawaran harga/ETA dari delivery provider untuk satu
// pasangan pickup/dropoff. Record transient: dibuat oleh quote orchestrator,
// direferensikan oleh Order setelah di-accept.
type DeliveryQuote struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	StoreID            uint       `gorm:"not null;index" json:"store_id"`
	ExternalDeliveryID string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"external_delivery_id"`
	PickupAddress      string     `gorm:"type:varchar(255);not null" json:"pickup_address"`
	PickupPhone        string     `gorm:"type:varchar(30)" json:"pickup_phone"`
	DropoffAddress     string     `gorm:"type:varchar(255);not null" json:"dropoff_address"`
	DropoffPhone       string     `gorm:"type:varchar(30)" json:"dropoff_phone"`
	FeeCents           int64      `gorm:"not null" json:"fee_cents"`
	Currency           string     `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	Status             string     `gorm:"type:varchar(20);not null;default:'quoted'" json:"status"`
	ExpiresAt          *time.Time `json:"expires_at"`
	CreatedAt          time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"not null" json:"updated_at"`
}
