package app

import (
	"time"

	"foodtasker/internal/cache"
	"foodtasker/internal/handlers"
	"foodtasker/internal/metrics"
	"foodtasker/internal/middleware"
	"foodtasker/internal/repositories"
	"foodtasker/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// Dependencies are the external resources the HTTP application runs on.
// Publisher and Cache are optional.
type Dependencies struct {
	DB        *gorm.DB
	JWTSecret string
	TokenTTL  time.Duration
	Publisher services.EventPublisher
	Cache     cache.Cache
	CacheTTL  time.Duration
	// Quiet disables the per-request access log.
	Quiet bool
}

// Route binds one method and path to its handler chain.
type Route struct {
	Method   string
	Path     string
	Handlers []fiber.Handler
}

// Services groups the business services behind the routes.
type Services struct {
	Auth    *services.AuthService
	Catalog *services.CatalogService
	Orders  *services.OrderService
}

// NewServices wires repositories and services over deps.
func NewServices(deps Dependencies) Services {
	catalogRepo := repositories.NewGORMCatalogRepository(deps.DB)
	orderRepo := repositories.NewGORMOrderRepository(deps.DB)
	userRepo := repositories.NewGORMUserRepository(deps.DB)
	tokenRepo := repositories.NewGORMTokenRepository(deps.DB)

	return Services{
		Auth:    services.NewAuthService(userRepo, tokenRepo, deps.JWTSecret, deps.TokenTTL),
		Catalog: services.NewCatalogService(catalogRepo, deps.Cache, deps.CacheTTL),
		Orders:  services.NewOrderService(orderRepo, catalogRepo, deps.Publisher),
	}
}

// Routes is the complete route table of the service.
func Routes(s Services) []Route {
	authHandler := handlers.NewAuthHandler(s.Auth)
	catalogHandler := handlers.NewCatalogHandler(s.Catalog)
	orderHandler := handlers.NewOrderHandler(s.Orders)
	restaurantHandler := handlers.NewRestaurantHandler(s.Orders)

	customer := middleware.CustomerRequired(s.Auth)
	restaurant := middleware.RestaurantRequired(s.Auth)

	return []Route{
		{fiber.MethodPost, "/auth/register", []fiber.Handler{authHandler.HandleRegister}},
		{fiber.MethodPost, "/auth/login", []fiber.Handler{authHandler.HandleLogin}},
		{fiber.MethodGet, "/restaurants", []fiber.Handler{catalogHandler.HandleListRestaurants}},
		{fiber.MethodGet, "/restaurants/notifications/:last_request_time", []fiber.Handler{restaurant, restaurantHandler.HandleNotifications}},
		{fiber.MethodPatch, "/restaurants/orders/:id/status", []fiber.Handler{restaurant, restaurantHandler.HandleUpdateOrderStatus}},
		{fiber.MethodGet, "/restaurants/:restaurant_id/meals", []fiber.Handler{catalogHandler.HandleListMeals}},
		{fiber.MethodPost, "/orders", []fiber.Handler{customer, orderHandler.HandlePlaceOrder}},
		{fiber.MethodGet, "/orders/latest", []fiber.Handler{customer, orderHandler.HandleLatestOrder}},
	}
}

// New builds the Fiber application with all routes registered.
func New(deps Dependencies) *fiber.App {
	app := fiber.New()
	serverMetrics := metrics.NewServerMetrics("api")

	app.Use(recover.New())
	if !deps.Quiet {
		app.Use(logger.New())
	}
	app.Use(serverMetrics.Middleware())

	for _, r := range Routes(NewServices(deps)) {
		app.Add(r.Method, r.Path, r.Handlers...)
	}

	app.Get("/metrics", serverMetrics.Handler())
	app.Get("/health", func(c *fiber.Ctx) error {
		database := "connected"
		if sqlDB, err := deps.DB.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			database = "unreachable"
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": database,
		})
	})
	return app
}
