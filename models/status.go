package models

// Status fulfillment order (diset oleh staff / checkout)
const (
	OrderStatusNew       = "new"
	OrderStatusAccepted  = "accepted"
	OrderStatusReady     = "ready"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// fulfillmentTransitions adalah tabel transisi status fulfillment.
// COMPLETED dan CANCELLED adalah status terminal.
var fulfillmentTransitions = map[string][]string{
	OrderStatusNew:      {OrderStatusAccepted, OrderStatusCancelled},
	OrderStatusAccepted: {OrderStatusReady, OrderStatusCancelled},
	OrderStatusReady:    {OrderStatusCompleted, OrderStatusCancelled},
}

// IsValidOrderStatus melaporkan apakah status termasuk enumerasi tertutup.
func IsValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusNew, OrderStatusAccepted, OrderStatusReady,
		OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionOrderStatus melaporkan apakah transisi from -> to diizinkan.
func CanTransitionOrderStatus(from, to string) bool {
	for _, next := range fulfillmentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminalOrderStatus -> COMPLETED/CANCELLED tidak boleh diregresi,
// termasuk oleh webhook yang datang terlambat.
func IsTerminalOrderStatus(status string) bool {
	return status == OrderStatusCompleted || status == OrderStatusCancelled
}

// Sub-status delivery dari provider (enumerasi tertutup)
const (
	DeliveryStatusQuote            = "quote"
	DeliveryStatusCreated          = "created"
	DeliveryStatusConfirmed        = "confirmed"
	DeliveryStatusEnrouteToPickup  = "enroute_to_pickup"
	DeliveryStatusArrivedAtPickup  = "arrived_at_pickup"
	DeliveryStatusPickedUp         = "picked_up"
	DeliveryStatusEnrouteToDropoff = "enroute_to_dropoff"
	DeliveryStatusArrivedAtDropoff = "arrived_at_dropoff"
	DeliveryStatusDelivered        = "delivered"
	DeliveryStatusCancelled        = "cancelled"
	DeliveryStatusFailed           = "failed"
)

// deliveryStatusRank mengurutkan lifecycle delivery. Event dengan rank lebih
// rendah dari status tersimpan adalah regresi dan ditolak. FAILED dan
// CANCELLED bisa dicapai dari status non-terminal manapun.
var deliveryStatusRank = map[string]int{
	DeliveryStatusQuote:            0,
	DeliveryStatusCreated:          1,
	DeliveryStatusConfirmed:        2,
	DeliveryStatusEnrouteToPickup:  3,
	DeliveryStatusArrivedAtPickup:  4,
	DeliveryStatusPickedUp:         5,
	DeliveryStatusEnrouteToDropoff: 6,
	DeliveryStatusArrivedAtDropoff: 7,
	DeliveryStatusDelivered:        8,
}

// IsTerminalDeliveryStatus melaporkan apakah sub-status delivery terminal.
func IsTerminalDeliveryStatus(status string) bool {
	return status == DeliveryStatusDelivered ||
		status == DeliveryStatusCancelled ||
		status == DeliveryStatusFailed
}

// CanTransitionDeliveryStatus melaporkan apakah transisi sub-status diizinkan.
func CanTransitionDeliveryStatus(from, to string) bool {
	if from == "" {
		return true
	}
	if IsTerminalDeliveryStatus(from) {
		return false
	}
	if to == DeliveryStatusFailed || to == DeliveryStatusCancelled {
		return true
	}
	fromRank, ok := deliveryStatusRank[from]
	if !ok {
		return false
	}
	toRank, ok := deliveryStatusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}

// deliveryEvent memetakan nama event webhook provider ke sub-status internal
// dan display status untuk dashboard.
type deliveryEvent struct {
	Status  string
	Display string
}

var deliveryEventTable = map[string]deliveryEvent{
	"DELIVERY_CREATED":                {DeliveryStatusCreated, "Delivery created"},
	"DASHER_CONFIRMED":                {DeliveryStatusConfirmed, "Dasher confirmed"},
	"DASHER_ENROUTE_TO_PICKUP":        {DeliveryStatusEnrouteToPickup, "Dasher heading to store"},
	"DASHER_CONFIRMED_PICKUP_ARRIVAL": {DeliveryStatusArrivedAtPickup, "Dasher arrived at store"},
	"DASHER_PICKED_UP":                {DeliveryStatusPickedUp, "Order picked up"},
	"DASHER_ENROUTE_TO_DROPOFF":       {DeliveryStatusEnrouteToDropoff, "Order on the way"},
	"DASHER_CONFIRMED_DROPOFF_ARRIVAL": {DeliveryStatusArrivedAtDropoff, "Dasher arrived at customer"},
	"DASHER_DROPPED_OFF":              {DeliveryStatusDelivered, "Order delivered"},
	"DELIVERY_DELIVERED":              {DeliveryStatusDelivered, "Order delivered"},
	"DELIVERY_CANCELLED":              {DeliveryStatusCancelled, "Delivery cancelled"},
	"DELIVERY_ATTEMPTED":              {DeliveryStatusFailed, "Delivery attempted, not completed"},
	"DELIVERY_RETURN_INITIALIZED":     {DeliveryStatusFailed, "Delivery failed, returning to store"},
}

// MapDeliveryEvent mengembalikan sub-status dan display status untuk nama
// event webhook. Nama event yang tidak dikenal mengembalikan ok=false dan
// tidak boleh disimpan.
func MapDeliveryEvent(eventName string) (status string, display string, ok bool) {
	ev, ok := deliveryEventTable[eventName]
	if !ok {
		return "", "", false
	}
	return ev.Status, ev.Display, true
}
