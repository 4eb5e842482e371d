package cache

import (
	"fmt"
	"time"
)

// Semua cache key dibangun lewat builder di file ini supaya namespace dan
// TTL per resource class terpusat. Key selalu di-scope per store untuk
// menghindari tabrakan namespace.

// TTL per resource class. Order list pendek karena order sering berubah.
const (
	OrdersTTL         = 60 * time.Second
	MenusTTL          = 5 * time.Minute
	CategoriesTTL     = 5 * time.Minute
	ItemsTTL          = time.Hour
	ModifierGroupsTTL = time.Hour
	ModifiersTTL      = time.Hour
	QuoteTTL          = 5 * time.Minute // selebar validity window quote provider
	OrderTimerTTL     = 24 * time.Hour
)

func StoreOrdersKey(storeID uint) string {
	return fmt.Sprintf("store_orders:%d", storeID)
}

func MenusKey(storeID uint) string {
	return fmt.Sprintf("menus:%d", storeID)
}

func CategoriesKey(storeID uint) string {
	return fmt.Sprintf("categories:%d", storeID)
}

func ItemsKey(storeID uint) string {
	return fmt.Sprintf("items:%d", storeID)
}

func ModifierGroupsKey(storeID uint) string {
	return fmt.Sprintf("modifier-groups:%d", storeID)
}

func ModifiersKey(storeID uint) string {
	return fmt.Sprintf("modifiers:%d", storeID)
}

func QuoteKey(externalDeliveryID string) string {
	return fmt.Sprintf("quote:%s", externalDeliveryID)
}

func OrderTimerKey(orderID uint) string {
	return fmt.Sprintf("timer:%d", orderID)
}
