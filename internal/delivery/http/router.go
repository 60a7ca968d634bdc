// Package http wires gin routes to the delivery-layer handlers.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/coffeeisafruit/jv-matcher/internal/delivery/http/handler"
	"github.com/coffeeisafruit/jv-matcher/internal/delivery/http/middleware"
)

type Router struct {
	cycleHandler   *handler.CycleHandler
	ingestHandler  *handler.IngestHandler
	authMiddleware *middleware.AuthMiddleware
}

func NewRouter(cycleHandler *handler.CycleHandler, ingestHandler *handler.IngestHandler, authMiddleware *middleware.AuthMiddleware) *Router {
	return &Router{cycleHandler: cycleHandler, ingestHandler: ingestHandler, authMiddleware: authMiddleware}
}

func (r *Router) Setup() *gin.Engine {
	router := gin.Default()

	healthHandler := func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	v1 := router.Group("/v1")
	v1.Use(r.authMiddleware.RequireAuth())
	{
		v1.POST("/cycles", r.cycleHandler.RunCycle)
		v1.POST("/profiles/:id/refresh", r.cycleHandler.RefreshProfile)
		v1.POST("/ingest/resolve", r.ingestHandler.Resolve)
	}

	return router
}
