package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"github.com/platefront/ordering-app/cache"
	"github.com/platefront/ordering-app/models"
	"github.com/platefront/ordering-app/utils"
)

// refreshTimeout membatasi repopulasi cache yang dijadwalkan reconciler
// supaya tidak menggantung lebih lama dari ack webhook.
const refreshTimeout = 5 * time.Second

// OrderService menyajikan daftar order untuk dashboard dengan staleness
// terbatas: baca cache dulu, fallback ke DB, repopulate saat miss.
// Cache murni optimasi; kegagalan cache di-log dan tidak pernah
// menggagalkan read.
type OrderService struct {
	db    *gorm.DB
	cache cache.Store

	// versions menaikkan counter per store pada setiap invalidasi. Repopulasi
	// yang membaca state sebelum invalidasi berikutnya di-discard supaya
	// snapshot basi tidak menimpa write yang lebih baru.
	versions sync.Map // storeID -> *atomic.Uint64
}

func NewOrderService(db *gorm.DB, cacheStore cache.Store) *OrderService {
	return &OrderService{db: db, cache: cacheStore}
}

func (s *OrderService) version(storeID uint) *atomic.Uint64 {
	v, _ := s.versions.LoadOrStore(storeID, new(atomic.Uint64))
	return v.(*atomic.Uint64)
}

// ListOrders mengembalikan order list untuk satu store, terbaru dulu.
// Cache hit mengembalikan snapshot apa adanya; caller mentolerir staleness
// sampai TTL (60 detik).
func (s *OrderService) ListOrders(ctx context.Context, storeID uint) ([]models.Order, error) {
	key := cache.StoreOrdersKey(storeID)

	cached, found, err := s.cache.Get(key)
	if err != nil {
		utils.ErrorLogger.Printf("cache get failed for %s: %v", key, err)
	} else if found {
		var orders []models.Order
		if err := json.Unmarshal([]byte(cached), &orders); err == nil {
			return orders, nil
		}
		utils.ErrorLogger.Printf("corrupt cache entry for %s, falling back to db", key)
	}

	started := s.version(storeID).Load()

	orders, err := s.readOrders(ctx, storeID)
	if err != nil {
		return nil, err
	}

	s.populateIfCurrent(storeID, started, orders)
	return orders, nil
}

// GetOrder mengambil satu order milik store.
func (s *OrderService) GetOrder(ctx context.Context, storeID, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Preload("OrderItems").
		Where("store_id = ?", storeID).
		First(&order, orderID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewNotFoundError("order not found")
		}
		return nil, utils.NewInternalError(err)
	}
	return &order, nil
}

// InvalidateOrders menghapus aggregate key dan menaikkan versi store.
// Read berikutnya adalah cache-miss yang disengaja.
func (s *OrderService) InvalidateOrders(storeID uint) {
	s.version(storeID).Add(1)
	if err := s.cache.Delete(cache.StoreOrdersKey(storeID)); err != nil {
		utils.ErrorLogger.Printf("cache delete failed for store %d: %v", storeID, err)
	}
}

// RefreshOrderCache membaca ulang order list dan mengisi cache. Kalau ada
// invalidasi lain yang masuk selama read berlangsung, hasil read dianggap
// basi dan dibuang.
func (s *OrderService) RefreshOrderCache(ctx context.Context, storeID uint) error {
	started := s.version(storeID).Load()

	orders, err := s.readOrders(ctx, storeID)
	if err != nil {
		return err
	}

	s.populateIfCurrent(storeID, started, orders)
	return nil
}

// populateIfCurrent menulis snapshot ke cache hanya kalau tidak ada
// invalidasi lain sejak snapshot dibaca. Snapshot basi dibuang supaya
// tidak menimpa hasil repopulasi yang lebih baru; berlaku untuk miss path
// ListOrders maupun refresh background.
func (s *OrderService) populateIfCurrent(storeID uint, started uint64, orders []models.Order) {
	if s.version(storeID).Load() != started {
		utils.InfoLogger.Printf("discarding stale order snapshot for store %d", storeID)
		return
	}
	s.populate(cache.StoreOrdersKey(storeID), orders)
}

// ScheduleRefresh menjalankan repopulasi di background dengan timeout
// terbatas. Dipanggil reconciler setelah menulis order supaya ack webhook
// tidak menunggu full table scan.
func (s *OrderService) ScheduleRefresh(storeID uint) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		if err := s.RefreshOrderCache(ctx, storeID); err != nil {
			utils.ErrorLogger.Printf("order cache refresh failed for store %d: %v", storeID, err)
		}
	}()
}

func (s *OrderService) readOrders(ctx context.Context, storeID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).Preload("OrderItems").
		Where("store_id = ?", storeID).
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	return orders, nil
}

func (s *OrderService) populate(key string, orders []models.Order) {
	data, err := json.Marshal(orders)
	if err != nil {
		utils.ErrorLogger.Printf("failed to marshal orders for %s: %v", key, err)
		return
	}
	if err := s.cache.SetEx(key, string(data), cache.OrdersTTL); err != nil {
		utils.ErrorLogger.Printf("cache set failed for %s: %v", key, err)
	}
}

// SetPrepTimer menyimpan timer persiapan per order (TTL 24 jam).
func (s *OrderService) SetPrepTimer(orderID uint, minutes int) {
	key := cache.OrderTimerKey(orderID)
	value := fmt.Sprintf("%d", minutes)
	if err := s.cache.SetEx(key, value, cache.OrderTimerTTL); err != nil {
		utils.ErrorLogger.Printf("cache set failed for %s: %v", key, err)
	}
}

// GetPrepTimer mengembalikan timer persiapan order, atau 0 kalau tidak ada.
func (s *OrderService) GetPrepTimer(orderID uint) int {
	key := cache.OrderTimerKey(orderID)
	value, found, err := s.cache.Get(key)
	if err != nil {
		utils.ErrorLogger.Printf("cache get failed for %s: %v", key, err)
		return 0
	}
	if !found {
		return 0
	}
	var minutes int
	if _, err := fmt.Sscanf(value, "%d", &minutes); err != nil {
		return 0
	}
	return minutes
}
