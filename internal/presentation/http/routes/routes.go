package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sangkips/investify-pos/internal/config"
	domainRepo "github.com/sangkips/investify-pos/internal/domain/repository"
	"github.com/sangkips/investify-pos/internal/presentation/http/handler"
	"github.com/sangkips/investify-pos/internal/presentation/http/middleware"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Session      *handler.SessionHandler
	ExchangeRate *handler.ExchangeRateHandler
	Catalog      *handler.CatalogHandler
	Checkout     *handler.CheckoutHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Cfg             *config.Config
	Logger          *zap.Logger
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.ClientRateLimiter
}

// NewRateLimiter builds the API rate limiter from configuration
func NewRateLimiter(cfg *config.RateLimitConfig) *middleware.ClientRateLimiter {
	rps := 0.0
	if cfg.Duration > 0 {
		rps = float64(cfg.Requests) / float64(cfg.Duration)
	}
	return middleware.NewClientRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: rps,
		BurstSize:         cfg.Requests,
		CleanupInterval:   5 * time.Minute,
		EntryTTL:          10 * time.Minute,
	})
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	v1 := router.Group("/api/v1")
	if deps.RateLimiter != nil {
		v1.Use(deps.RateLimiter.Middleware())
	}
	{
		registerSessionRoutes(v1, h, deps)
		registerExchangeRateRoutes(v1, h)
		registerCatalogRoutes(v1, h)
	}

	return router
}

func registerSessionRoutes(rg *gin.RouterGroup, h *Handlers, deps *Deps) {
	rg.GET("/session", h.Session.GetState)

	tickets := rg.Group("/tickets")
	{
		tickets.POST("", h.Session.AddTicket)
		tickets.PUT("/:index/activate", h.Session.SelectTicket)
		tickets.DELETE("/:index", h.Session.RemoveTicket)
	}

	active := rg.Group("/tickets/active")
	{
		active.POST("/lines", h.Session.AddProduct)
		active.PUT("/lines/:index/quantity", h.Session.UpdateQuantity)
		active.PUT("/lines/:index/discount", h.Session.UpdateLineDiscount)
		active.PUT("/lines/:index/select", h.Session.SelectLine)
		active.DELETE("/lines/:index", h.Session.RemoveLine)
		active.PUT("/discount", h.Session.SetGlobalDiscount)
		active.PUT("/notes", h.Session.SetNotes)
		active.PUT("/customer", h.Session.SetCustomer)
		active.DELETE("/customer", h.Session.ClearCustomer)
		active.PUT("/location", h.Session.SetLocation)
		active.POST("/clear", h.Session.ClearTicket)

		// Checkout needs an Idempotency-Key so a retried request cannot create two sales
		active.POST("/checkout",
			middleware.IdempotencyRequired(middleware.IdempotencyConfig{Repo: deps.IdempotencyRepo, Logger: deps.Logger}),
			h.Checkout.Checkout)
	}

	pending := rg.Group("/pending")
	{
		pending.POST("/:id/selection", h.Session.CompleteSelection)
		pending.POST("/:id/weight", h.Session.ProvideWeight)
		pending.DELETE("/:id", h.Session.CancelPending)
	}
}

func registerExchangeRateRoutes(rg *gin.RouterGroup, h *Handlers) {
	rate := rg.Group("/exchange-rate")
	{
		rate.GET("", h.ExchangeRate.Get)
		rate.PUT("", h.ExchangeRate.Set)
		rate.DELETE("", h.ExchangeRate.Clear)
		rate.POST("/refresh", h.ExchangeRate.Refresh)
	}
}

func registerCatalogRoutes(rg *gin.RouterGroup, h *Handlers) {
	catalog := rg.Group("/catalog")
	{
		catalog.GET("/products", h.Catalog.ListProducts)
		catalog.GET("/products/:id", h.Catalog.GetProduct)
		catalog.GET("/categories", h.Catalog.ListCategories)
		catalog.POST("/refresh", h.Catalog.Refresh)
	}
}
