package main

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	limiter "github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/AndreySuncov/bot-exam/api/rest/chat"
	"github.com/AndreySuncov/bot-exam/api/rest/health"
	"github.com/AndreySuncov/bot-exam/api/websocket"
	"github.com/AndreySuncov/bot-exam/internal/errors"
	ws "github.com/AndreySuncov/bot-exam/internal/websocket"
)

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) error {
	rateLimit, err := RateLimitMiddleware(server.config.RateLimit)
	if err != nil {
		return err
	}

	router.Use(CORSMiddleware(server.config.CORSOrigins))
	router.GET("/health", health.Handler)
	router.GET("/ready", health.ReadyHandler(server.services.Retriever.CheckEmbedder))

	v1 := router.Group("/api/v1")
	v1.Use(rateLimit)

	{
		v1.GET("/ping", health.PingHandler)

		chat.RegisterRoutes(v1, server.services.Shell, server.cookieStore, server.knowledge)
		websocket.RegisterRoutes(v1, server.hub, ws.NewOriginChecker(server.config.CORSOrigins, server.config.IsProduction()))
	}

	return nil
}

// allows the configured origins, or any origin when none are configured
func CORSMiddleware(origins []string) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: len(origins) > 0,
		MaxAge:           12 * time.Hour,
	}

	if len(origins) > 0 {
		corsConfig.AllowOrigins = origins
	} else {
		corsConfig.AllowAllOrigins = true
	}

	return cors.New(corsConfig)
}

// limits requests per client IP, e.g. "60-M" for sixty a minute
func RateLimitMiddleware(formatted string) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT %q: %w", formatted, err)
	}

	instance := limiter.New(memory.NewStore(), rate)

	return mgin.NewMiddleware(instance, mgin.WithLimitReachedHandler(func(c *gin.Context) {
		errors.TooManyRequests(c, "rate limit exceeded, try again later")
	})), nil
}
