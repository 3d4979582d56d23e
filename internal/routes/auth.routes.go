package routes

import (
	"nabz/internal/controllers"
	"nabz/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers the token endpoints and the WebSocket
// upgrade path. Token issuance carries its own stricter rate limit.
func RegisterAuthRoutes(r *gin.Engine, tokenLimiter *middleware.TokenRateLimiter) {
	auth := r.Group("/auth")
	auth.Use(middleware.TokenRateLimitMiddleware(tokenLimiter))
	{
		auth.GET("/token", controllers.HandleGetToken)
		auth.GET("/token/status", controllers.HandleTokenStatus)
	}

	// WebSocket endpoint for real-time intelligence pushes
	r.GET("/ws", controllers.HandleWebSocket)
}
