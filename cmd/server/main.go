package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"ytquery-web/internal/chat"
	"ytquery-web/internal/config"
	"ytquery-web/internal/database"
	"ytquery-web/internal/handlers"
	"ytquery-web/internal/logger"
	"ytquery-web/internal/middleware"
	"ytquery-web/internal/router"
	"ytquery-web/internal/services"
	"ytquery-web/internal/websocket"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	log := logger.Setup(cfg.Env)
	log.Info("starting ytquery-web", slog.String("env", cfg.Env))

	// ──── Step 2: Optional Redis metadata cache ────
	var cache *redis.Client
	if cfg.RedisURL != "" {
		client, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Error("redis connection failed", slog.Any("error", err))
			os.Exit(1)
		}
		defer client.Close()
		cache = client
		log.Info("redis connected, video metadata will be cached")
	}

	// ──── Step 3: Initialize Services ────
	backend := services.NewBackendClient(cfg.BackendURL, cfg.BackendTimeout, log)
	youtubeService := services.NewYouTubeService(cache, cfg.MetadataCacheTTL, log)
	log.Info("backend client ready", slog.String("base_url", cfg.BackendURL))

	registry := chat.NewRegistry(backend, cfg.ViewIdleTTL, log)
	registry.Start()

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMin, time.Minute)

	// ──── Step 4: Initialize Handlers ────
	searchHandler := handlers.NewSearchHandler(log)
	chatHandler := handlers.NewChatHandler(registry, youtubeService, log)
	wsHub := websocket.NewHub(registry, log)

	// ──── Step 5: Start HTTP Server ────
	r := router.New(searchHandler, chatHandler, wsHub, limiter)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sign := <-sigChan

		log.Info("shutting down", slog.String("signal", sign.String()))
		wsHub.CloseAll()
		registry.Stop()
		limiter.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Info("ready", slog.String("url", "http://localhost:"+cfg.Port))

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}
}
