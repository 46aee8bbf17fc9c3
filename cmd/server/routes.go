package main

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/aligeramy/somas/internal/config"
	"github.com/aligeramy/somas/internal/db"
	"github.com/aligeramy/somas/internal/engine"
	"github.com/aligeramy/somas/internal/http/api"
	eventsapi "github.com/aligeramy/somas/internal/http/api/events/endpoints"
	"github.com/aligeramy/somas/internal/metrics"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(r *gin.Engine, cfg *config.Config, conn *sqlx.DB, store db.Store, svc *engine.Service) {
	// CORS
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		ExposeHeaders: []string{
			"Content-Length",
		},
		AllowCredentials: false,
	}))

	r.GET("/health", func(c *gin.Context) {
		if err := conn.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", metrics.Handler())

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api",
		Auth:      true,
		SecretKey: cfg.JWTSecret,
		Users:     store,
	},
		eventsapi.EventModule(svc, cfg.Location, nil),
	)
}
