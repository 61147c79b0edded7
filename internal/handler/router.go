package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"automarket/internal/config"
)

// SetupRouter builds the gin engine with all routes and middleware.
func SetupRouter(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(RecoveryMiddleware())
	r.Use(LoggerMiddleware())
	r.Use(CORSMiddleware())

	h := NewHandler(db, rdb, cfg)
	auth := AuthMiddleware(cfg.Auth.JWTSecret)

	api := r.Group("/api/v1")
	{
		vip := api.Group("/vip")
		{
			vip.POST("/purchase/:listingId", auth, h.PurchaseVIP)
			vip.GET("/status/:listingId", h.GetVIPStatus)
			vip.GET("/pricing", h.GetPricing)
		}

		balance := api.Group("/balance", auth)
		{
			balance.GET("", h.GetBalance)
			balance.GET("/transactions", h.ListTransactions)
			balance.POST("/deposit", h.InitiateDeposit)
		}

		payments := api.Group("/payments")
		{
			payments.POST("/flitt/callback", h.FlittCallback)
			payments.POST("/bog/callback", h.BOGCallback)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
