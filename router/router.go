package router

import (
	"gorm.io/gorm"

	"github.com/gin-gonic/gin"

	"github.com/platefront/ordering-app/cache"
	"github.com/platefront/ordering-app/controllers"
	"github.com/platefront/ordering-app/middlewares"
	"github.com/platefront/ordering-app/services"
)

// Deps menampung service yang dibangun di main dan dibagikan ke controller.
type Deps struct {
	DB         *gorm.DB
	Cache      cache.Store
	Orders     *services.OrderService
	Reconciler *services.Reconciler
	Quotes     *services.QuoteService
	Provider   *services.DoorDashService
}

func SetupRouter(deps Deps) *gin.Engine {
	r := gin.Default()

	// Apply security middlewares
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	// Inisialisasi controller
	userCtrl := controllers.NewUserController(deps.DB)
	menuCtrl := controllers.NewMenuController(deps.DB, deps.Cache)
	categoryCtrl := controllers.NewMenuCategoryController(deps.DB, deps.Cache)
	itemCtrl := controllers.NewItemController(deps.DB, deps.Cache)
	modifierCtrl := controllers.NewModifierController(deps.DB, deps.Cache)
	orderCtrl := controllers.NewOrderController(deps.Orders, deps.Reconciler)
	deliveryCtrl := controllers.NewDeliveryController(deps.Provider, deps.Quotes, deps.Reconciler)
	storefrontCtrl := controllers.NewStorefrontController(deps.DB, deps.Cache, deps.Orders)
	notificationCtrl := controllers.NewNotificationController(deps.DB)
	dashboardCtrl := controllers.NewDashboardController(deps.DB)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Webhook delivery provider; auth-nya HMAC signature, bukan JWT
	r.POST("/webhooks/doordash", deliveryCtrl.HandleWebhook)

	// Rate limiter untuk login/register
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// -- STOREFRONT (customer, tanpa auth, scoped lewat X-Store-ID) --
	store := r.Group("/store")
	store.Use(middlewares.StoreResolver())
	{
		store.GET("", storefrontCtrl.GetStorefront)
		store.GET("/items", storefrontCtrl.GetStorefrontItems)
		store.POST("/checkout", storefrontCtrl.Checkout)
		store.GET("/orders/:order_number/track", storefrontCtrl.TrackOrder)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/admin")
	auth.Use(middlewares.EnhancedAuthMiddleware())
	auth.Use(middlewares.StoreResolver())

	// Profil user (Admin/Staff)
	auth.GET("/profile", userCtrl.GetProfile)

	// MENUS
	auth.GET("/menus", menuCtrl.GetAllMenus)
	auth.POST("/menus", menuCtrl.CreateMenu)
	auth.PATCH("/menus/:id", menuCtrl.UpdateMenu)
	auth.DELETE("/menus/:id", menuCtrl.DeleteMenu)

	// MENU CATEGORIES
	auth.GET("/categories", categoryCtrl.GetAllCategories)
	auth.POST("/categories", categoryCtrl.CreateCategory)
	auth.PATCH("/categories/:id", categoryCtrl.UpdateCategory)
	auth.DELETE("/categories/:id", categoryCtrl.DeleteCategory)

	// ITEMS
	auth.GET("/items", itemCtrl.GetAllItems)
	auth.POST("/items", itemCtrl.CreateItem)
	auth.GET("/items/:id", itemCtrl.GetItemByID)
	auth.PATCH("/items/:id", itemCtrl.UpdateItem)
	auth.DELETE("/items/:id", itemCtrl.DeleteItem)
	auth.PUT("/items/:id/modifier-groups", itemCtrl.AssignModifierGroups)

	// MODIFIER GROUPS + MODIFIERS
	auth.GET("/modifier-groups", modifierCtrl.GetAllModifierGroups)
	auth.POST("/modifier-groups", modifierCtrl.CreateModifierGroup)
	auth.PATCH("/modifier-groups/:id", modifierCtrl.UpdateModifierGroup)
	auth.DELETE("/modifier-groups/:id", modifierCtrl.DeleteModifierGroup)
	auth.POST("/modifier-groups/:id/modifiers", modifierCtrl.CreateModifier)
	auth.DELETE("/modifier-groups/:id/modifiers/:modifier_id", modifierCtrl.DeleteModifier)

	// ORDERS
	auth.GET("/orders", orderCtrl.GetAllOrders)
	auth.GET("/orders/:id", orderCtrl.GetOrderByID)
	auth.PATCH("/orders/:id/status", orderCtrl.UpdateOrderStatus)
	auth.PUT("/orders/:id/timer", orderCtrl.SetPrepTimer)
	auth.GET("/orders/:id/timer", orderCtrl.GetPrepTimer)

	// DELIVERY QUOTES
	auth.POST("/deliveries/quotes", deliveryCtrl.RequestQuote)
	auth.POST("/deliveries/quotes/:external_delivery_id/accept", deliveryCtrl.AcceptQuote)
	auth.DELETE("/deliveries/:external_delivery_id", deliveryCtrl.CancelDelivery)

	// NOTIFICATIONS
	auth.GET("/notifications", notificationCtrl.GetAllNotifications)
	auth.PATCH("/notifications/:id/read", notificationCtrl.MarkNotificationRead)
	auth.DELETE("/notifications/:id", notificationCtrl.DeleteNotification)

	// DASHBOARD
	auth.GET("/dashboard/stats", dashboardCtrl.GetDashboardStats)

	// WebSocket endpoint dengan middleware khusus
	wsGroup := r.Group("/ws")
	wsGroup.Use(middlewares.WebSocketAuthMiddleware())
	{
		wsGroup.GET("/dashboard", controllers.DashboardHandler)
	}

	return r
}
