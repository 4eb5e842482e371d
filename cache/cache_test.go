package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStoreSetGet(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	err := store.Set("store_orders:1", `[{"id":1}]`)
	assert.NoError(t, err)

	val, found, err := store.Get("store_orders:1")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"id":1}]`, val)
}

func TestMemoryStoreMiss(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	_, found, err := store.Get("store_orders:99")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	err := store.SetEx("quote:abc", "cached", 30*time.Millisecond)
	assert.NoError(t, err)

	_, found, _ := store.Get("quote:abc")
	assert.True(t, found)

	time.Sleep(50 * time.Millisecond)

	_, found, _ = store.Get("quote:abc")
	assert.False(t, found, "entry harus dianggap miss setelah TTL lewat")
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	store.Set("menus:2", "payload")
	store.Delete("menus:2")

	_, found, _ := store.Get("menus:2")
	assert.False(t, found)
}

func TestKeyBuildersScopedPerStore(t *testing.T) {
	assert.NotEqual(t, MenusKey(1), MenusKey(2))
	assert.Equal(t, "store_orders:7", StoreOrdersKey(7))
	assert.Equal(t, "items:3", ItemsKey(3))
	assert.Equal(t, "modifier-groups:3", ModifierGroupsKey(3))
	assert.Equal(t, "quote:abc-123", QuoteKey("abc-123"))
	assert.Equal(t, "timer:42", OrderTimerKey(42))
}
