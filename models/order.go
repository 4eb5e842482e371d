package models

import "time"

type Order struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	StoreID     uint    `gorm:"not null;index" json:"store_id"`
	Store       Store   `gorm:"foreignKey:StoreID" json:"-"`
	OrderNumber string  `gorm:"type:varchar(20);not null" json:"order_number"`
	Status      string  `gorm:"type:varchar(20);not null;default:'new'" json:"status"`
	Subtotal    float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"subtotal"`
	Tax         float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"tax"`
	Tip         float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"tip"`
	DeliveryFee float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"delivery_fee"`
	Total       float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"total"`

	CustomerName  string `gorm:"type:varchar(255)" json:"customer_name"`
	CustomerPhone string `gorm:"type:varchar(30)" json:"customer_phone"`

	// Linkage ke delivery provider. ExternalDeliveryID diisi saat quote
	// di-accept; field lain ditulis oleh reconciler dari webhook.
	ExternalDeliveryID    *string    `gorm:"type:varchar(64);uniqueIndex" json:"external_delivery_id,omitempty"`
	DeliveryStatus        string     `gorm:"type:varchar(30)" json:"delivery_status"`
	DeliveryDisplayStatus string     `gorm:"type:varchar(100)" json:"delivery_display_status"`
	TrackingURL           string     `gorm:"type:varchar(255)" json:"tracking_url"`
	CourierName           string     `gorm:"type:varchar(255)" json:"courier_name"`
	CourierPhone          string     `gorm:"type:varchar(30)" json:"courier_phone"`
	PickupTimeEstimated   *time.Time `json:"pickup_time_estimated,omitempty"`
	DropoffTimeEstimated  *time.Time `json:"dropoff_time_estimated,omitempty"`
	SupportReference      string     `gorm:"type:varchar(64)" json:"support_reference"`

	// Bookkeeping idempotensi webhook: event terakhir yang diaplikasikan
	// dan timestamp-nya. Event duplikat atau lebih tua di-skip.
	LastEventName string     `gorm:"type:varchar(64)" json:"-"`
	LastEventTime *time.Time `json:"-"`

	CreatedAt  time.Time   `gorm:"not null;index" json:"created_at"`
	UpdatedAt  time.Time   `gorm:"not null" json:"updated_at"`
	OrderItems []OrderItem `gorm:"foreignKey:OrderID" json:"order_items"`
}

// RecalculateTotal menjaga invariant total = subtotal + tax + tip + fee.
func (o *Order) RecalculateTotal() {
	o.Total = o.Subtotal + o.Tax + o.Tip + o.DeliveryFee
}
