package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AndreySuncov/bot-exam/internal/errors"
)

const (
	serviceName    = "bot-exam"
	serviceVersion = "1.0.0"

	readyTimeout = 5 * time.Second
)

// returns the server health status
func Handler(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Status:  "healthy",
		Service: serviceName,
		Version: serviceVersion,
	})
}

// responds with pong for testing
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{
		Message: "pong",
	})
}

// reports 503 while a backing service the chat depends on is unreachable
func ReadyHandler(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
		defer cancel()

		if err := check(ctx); err != nil {
			errors.ServiceUnavailable(c, "embedder unavailable", err)
			return
		}

		c.JSON(http.StatusOK, Response{
			Status:  "ready",
			Service: serviceName,
			Version: serviceVersion,
		})
	}
}
