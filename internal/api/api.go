// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/replenish/backend-go/internal/api/handlers"
	"github.com/andresuchdata/replenish/backend-go/internal/api/middleware"
	"github.com/andresuchdata/replenish/backend-go/internal/ledger"
	"github.com/andresuchdata/replenish/backend-go/internal/purchasing"
	"github.com/andresuchdata/replenish/backend-go/internal/service"
)

type Services struct {
	Ledger        *ledger.Ledger
	Replenishment *service.ReplenishmentService
	Purchasing    *purchasing.Service
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Actor"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.Ledger != nil {
			inventoryHandler := handlers.NewInventoryHandler(services.Ledger, services.Replenishment)
			inventoryGroup := apiGroup.Group("/inventory")
			{
				inventoryGroup.POST("/changes", inventoryHandler.RecordChange)
				inventoryGroup.POST("/reserve", inventoryHandler.Reserve)
				inventoryGroup.POST("/release", inventoryHandler.Release)
				inventoryGroup.PUT("/reorder-point", inventoryHandler.SetReorderPoint)
				inventoryGroup.GET("/current", inventoryHandler.GetCurrent)
				inventoryGroup.GET("/history", inventoryHandler.GetHistory)
			}
		}

		if services.Replenishment != nil {
			replenishmentHandler := handlers.NewReplenishmentHandler(services.Replenishment)
			apiGroup.GET("/reorder/suggestions", replenishmentHandler.GetSuggestions)
		}

		if services.Purchasing != nil {
			poHandler := handlers.NewPOHandler(services.Purchasing)
			poGroup := apiGroup.Group("/purchase-orders")
			{
				poGroup.POST("/from-suggestions", poHandler.CreateFromSuggestions)
				poGroup.GET("", poHandler.List)
				poGroup.GET("/:number", poHandler.Get)
				poGroup.PUT("/:number", poHandler.UpdateDraft)
				poGroup.POST("/:number/submit", poHandler.Submit)
				poGroup.POST("/:number/approve", poHandler.Approve)
				poGroup.POST("/:number/reject", poHandler.Reject)
				poGroup.POST("/:number/send", poHandler.Send)
				poGroup.POST("/:number/transit", poHandler.MarkInTransit)
				poGroup.POST("/:number/receive", poHandler.Receive)
				poGroup.POST("/:number/cancel", poHandler.Cancel)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
