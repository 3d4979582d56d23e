package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"nabz/internal/config"
	"nabz/internal/middleware"
	"nabz/internal/routes"
	"nabz/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load(os.Getenv("NABZ_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Auth first: the WebSocket upgrade path validates tokens
	services.InitAuthService(os.Getenv("NABZ_SECRET_KEY"), 0)

	monitor := services.InitMonitor(cfg)
	monitor.Start()

	services.InitWebSocketHub(monitor)

	middleware.NewSecurityLogger()
	rateLimiter := middleware.NewRateLimiter()
	tokenLimiter := middleware.NewTokenRateLimiter()

	r := gin.Default()
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.IPWhitelistMiddleware(middleware.NewIPWhitelist(cfg.AllowedIPs)))
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middleware.RateLimitMiddleware(rateLimiter))

	routes.RegisterIntelligenceRoutes(r)
	routes.RegisterAuthRoutes(r, tokenLimiter)

	// Shut the collectors down cleanly on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Println("Shutting down")
		services.StopWebSocketHub()
		monitor.Stop()
		os.Exit(0)
	}()

	log.Printf("nabz listening on %s (intensity: %s)", cfg.Listen, cfg.Intensity)
	if err := r.Run(cfg.Listen); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
