package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shared-memo-pad/internal/config"
	"shared-memo-pad/internal/kv"
	"shared-memo-pad/internal/middleware"
	"shared-memo-pad/internal/tenant"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Pick the key-value backend
	backend, err := newBackend()
	if err != nil {
		log.Fatalf("Failed to initialize %s backend: %v", config.AppConfig.StorageBackend, err)
	}

	// Initialize tenant store and handler
	store, err := tenant.NewStore(backend, config.AppConfig.DocumentCacheSize)
	if err != nil {
		log.Fatalf("Failed to initialize tenant store: %v", err)
	}
	handler := tenant.NewHandler(store)

	// Initialize Gin router
	if config.AppConfig.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// cors setting: the web client may be served from anywhere, so every
	// response carries permissive CORS headers and preflights are answered
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
	}))
	router.Use(middleware.ErrorHandler())

	// Document exchange routes
	api := router.Group("/api", middleware.CredentialAuth())
	api.POST("/save", handler.Save)
	api.GET("/load", handler.Load)
	api.DELETE("/delete", handler.Delete)

	// Server configuration
	serverPort := config.AppConfig.ServerPort
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", serverPort),
		Handler: router.Handler(),
	}

	// Start server
	go func() {
		log.Printf("Server listening on port %s", serverPort)
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Println("Server shutdown error:", err)
	}

	log.Println("Server shutdown complete")
}

func newBackend() (kv.Store, error) {
	cfg := config.AppConfig

	switch cfg.StorageBackend {
	case "redis":
		return kv.NewRedisStore(cfg.RedisAddress)
	case "postgres":
		dsn := fmt.Sprintf("host=%v user=%v password=%v dbname=%v port=%v sslmode=disable",
			cfg.DBHost,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBName,
			cfg.DBPort,
		)
		return kv.NewGormStore(dsn, cfg.Environment)
	case "memory":
		log.Println("Using in-memory storage. Documents will not survive a restart.")
		return kv.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
