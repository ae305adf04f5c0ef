package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/relaymeet/backend/internal/api"
	"github.com/relaymeet/backend/internal/config"
	"github.com/relaymeet/backend/internal/logging"
	"github.com/relaymeet/backend/internal/middleware"
	"github.com/relaymeet/backend/internal/ratelimit"
	"github.com/relaymeet/backend/internal/registry"
	"github.com/relaymeet/backend/internal/upload"
	"github.com/relaymeet/backend/internal/ws"
)

func main() {
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			break
		}
	}

	cfg, err := config.ValidateEnv(os.LookupEnv)
	if err != nil {
		panic(err)
	}

	if err := logging.Initialize(cfg.GoEnv != "production"); err != nil {
		panic(err)
	}
	log := logging.GetLogger()
	defer log.Sync()

	reg := registry.New()

	uploads, err := upload.NewManager(cfg.UploadDir, cfg.MaxUploadBytes)
	if err != nil {
		log.Fatal("failed to initialize upload manager", zap.Error(err))
	}

	limiter, err := ratelimit.New(cfg)
	if err != nil {
		log.Fatal("failed to initialize rate limiter", zap.Error(err))
	}

	hub := ws.NewHub(reg, uploads, limiter, cfg.ClientOrigin)
	roomHandlers := api.NewRoomHandlers(reg)
	uploadHandlers := api.NewUploadHandlers(cfg.UploadDir)

	if cfg.GoEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.ClientOrigin}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := router.Group("/api")
	apiGroup.Use(limiter.APIMiddleware())
	{
		apiGroup.POST("/create-room", roomHandlers.CreateRoom)
		apiGroup.GET("/room/:id", roomHandlers.GetRoom)
	}

	router.GET("/uploads/:filename", uploadHandlers.ServeFile)
	router.GET("/ws", hub.ServeWs)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info("server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	log.Info("server exited")
}
