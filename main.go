package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"safetrip/config"
	"safetrip/database"
	"safetrip/routes"
	"safetrip/utils"
	"safetrip/websocket"
	"safetrip/workers"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	setupLogger(cfg)

	// Initialize database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logrus.Fatal("Failed to connect to database: ", err)
	}
	defer database.Disconnect()

	// Initialize Redis
	redisClient := config.InitRedis(cfg)
	defer redisClient.Close()

	// Initialize WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()

	// Setup routes and the service graph
	router, svcs := routes.SetupRoutes(cfg, db, redisClient, hub, utils.NewSystemClock())

	// Restore timers and SOS sessions from persisted state
	rearmWorker := workers.NewRearmWorker(svcs.SettingsStore, svcs.CheckIn, svcs.SOS)
	rearmWorker.Start()

	// Periodic notification cleanup
	cleanupWorker := workers.NewCleanupWorker(svcs.Notification, workers.CleanupWorkerConfig{
		NotificationRetentionDays: cfg.NotificationRetention,
		Interval:                  time.Duration(cfg.CleanupIntervalHours) * time.Hour,
	})
	cleanupWorker.Start()

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logrus.Info("🚀 Safetrip server starting on port ", cfg.Port)
		logrus.Info("📱 WebSocket endpoint: /ws")
		logrus.Info("💖 Health Check: /health")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatal("Failed to start server: ", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Fatal("Server forced to shutdown: ", err)
	}

	cleanupWorker.Stop()
	svcs.CheckIn.Shutdown()
	svcs.SOS.Shutdown()
	hub.Stop()

	logrus.Info("✅ Server shutdown complete")
}

func setupLogger(cfg *config.Config) {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	if cfg.Environment == "development" {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}
