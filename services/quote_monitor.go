package services

import (
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/platefront/ordering-app/models"
)

// QuoteMonitor menandai quote yang sudah lewat validity window sebagai
// expired supaya tidak bisa di-accept lagi.
type QuoteMonitor struct {
	db       *gorm.DB
	interval time.Duration
	stop     chan struct{}
}

func NewQuoteMonitor(db *gorm.DB) *QuoteMonitor {
	return &QuoteMonitor{
		db:       db,
		interval: time.Minute,
		stop:     make(chan struct{}),
	}
}

// Start memulai goroutine sweeper.
func (qm *QuoteMonitor) Start() {
	go qm.run()
	log.Println("Quote monitor started")
}

// Stop menghentikan sweeper.
func (qm *QuoteMonitor) Stop() {
	select {
	case <-qm.stop:
	default:
		close(qm.stop)
	}
}

func (qm *QuoteMonitor) run() {
	ticker := time.NewTicker(qm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			qm.ExpireStaleQuotes()
		case <-qm.stop:
			return
		}
	}
}

// ExpireStaleQuotes menandai semua quote 'quoted' yang expires_at-nya sudah
// lewat sebagai expired.
func (qm *QuoteMonitor) ExpireStaleQuotes() {
	result := qm.db.Model(&models.DeliveryQuote{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", models.QuoteStatusQuoted, time.Now()).
		Update("status", models.QuoteStatusExpired)
	if result.Error != nil {
		log.Printf("Error expiring stale quotes: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("Expired %d stale delivery quotes", result.RowsAffected)
	}
}
