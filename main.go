package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/platefront/ordering-app/cache"
	"github.com/platefront/ordering-app/config"
	"github.com/platefront/ordering-app/middlewares"
	"github.com/platefront/ordering-app/models"
	"github.com/platefront/ordering-app/router"
	"github.com/platefront/ordering-app/services"
	"github.com/platefront/ordering-app/utils"

	"gorm.io/gorm"
)

func init() {
	// Load .env file di awal sebelum apapun
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}

	utils.InitLogger()
}

func main() {
	// Initialize DB
	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	// Simpan koneksi database ke utils untuk digunakan di controller
	utils.InitDB(db)

	// Set gin mode
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	// Cache store: Redis kalau REDIS_ADDR diset, in-memory untuk development
	var cacheStore cache.Store
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisStore, err := cache.NewRedisStore(addr)
		if err != nil {
			utils.ErrorLogger.Fatalf("Failed to connect to redis: %v", err)
		}
		cacheStore = redisStore
		utils.InfoLogger.Printf("Using redis cache at %s", addr)
	} else {
		cacheStore = cache.NewMemoryStore()
		utils.InfoLogger.Println("REDIS_ADDR not set, using in-memory cache")
	}

	// Delivery provider client
	provider := services.GetDoorDashService()
	if err := provider.ValidateConfig(); err != nil {
		utils.ErrorLogger.Printf("DoorDash config incomplete: %v", err)
	}

	// Service wiring
	orders := services.NewOrderService(db, cacheStore)
	reconciler := services.NewReconciler(db, orders)
	quotes := services.NewQuoteService(db, cacheStore, provider, orders)

	// Sweeper untuk quote yang kadaluarsa
	quoteMonitor := services.NewQuoteMonitor(db)
	quoteMonitor.Start()
	defer quoteMonitor.Stop()

	// Bersihkan blacklist token secara periodik
	go utils.CleanupBlacklist()

	// Setup rate limiter (50 requests per second per IP)
	rateLimiter := middlewares.NewRateLimiter(50, 1)

	r := router.SetupRouter(router.Deps{
		DB:         db,
		Cache:      cacheStore,
		Orders:     orders,
		Reconciler: reconciler,
		Quotes:     quotes,
		Provider:   provider,
	})
	r.Use(rateLimiter.RateLimit())

	// Set trusted proxies
	r.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	// Run server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.Store{},
		&models.User{},
		&models.MenuCategory{},
		&models.Menu{},
		&models.Item{},
		&models.ModifierGroup{},
		&models.Modifier{},
		&models.Order{},
		&models.OrderItem{},
		&models.DeliveryQuote{},
		&models.Notification{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}
