package dashboard

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/platefront/ordering-app/models"
)

// Event types
const (
	EventOrderUpdate    = "order_update"
	EventDeliveryUpdate = "delivery_update"
	EventQuoteUpdate    = "quote_update"
	EventStaffNotif     = "staff_notification"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type subscriber struct {
	storeID uint
	role    string
}

// Hub menampung client dashboard (staff, admin) per store dan menyiarkan
// update order/delivery secara real-time. Broadcast di-scope per store:
// staff store lain tidak pernah menerima payload tenant lain.
type Hub struct {
	clients map[*websocket.Conn]subscriber
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]subscriber),
}

// RegisterClient -> menambahkan connection ke set untuk satu store
func RegisterClient(conn *websocket.Conn, storeID uint, role string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = subscriber{storeID: storeID, role: role}
}

// UnregisterClient -> melepaskan connection
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// BroadcastOrderUpdate -> menyiarkan update order ke staff store-nya
func BroadcastOrderUpdate(order models.Order) {
	broadcast(order.StoreID, Message{
		Event: EventOrderUpdate,
		Data:  order,
	})
}

// BroadcastDeliveryUpdate -> update status delivery untuk satu order
func BroadcastDeliveryUpdate(order models.Order) {
	broadcast(order.StoreID, Message{
		Event: EventDeliveryUpdate,
		Data: map[string]interface{}{
			"order_id":                order.ID,
			"delivery_status":         order.DeliveryStatus,
			"delivery_display_status": order.DeliveryDisplayStatus,
			"courier_name":            order.CourierName,
			"tracking_url":            order.TrackingURL,
		},
	})
}

// BroadcastQuoteUpdate -> perubahan status quote (accepted/cancelled)
func BroadcastQuoteUpdate(quote models.DeliveryQuote) {
	broadcast(quote.StoreID, Message{
		Event: EventQuoteUpdate,
		Data:  quote,
	})
}

// BroadcastStaffNotification -> notifikasi untuk staff satu store
func BroadcastStaffNotification(storeID uint, message string) {
	broadcast(storeID, Message{
		Event: EventStaffNotif,
		Data:  message,
	})
}

// broadcast -> kirim pesan ke semua client milik store tersebut
func broadcast(storeID uint, msg Message) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	for conn, sub := range hub.clients {
		if sub.storeID != storeID {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Error sending message to client: %v", err)
			continue
		}
	}
}
