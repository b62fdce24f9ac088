package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guildforge/engine/internal/config"
	"github.com/guildforge/engine/internal/engine"
	"github.com/guildforge/engine/internal/events"
	"github.com/guildforge/engine/internal/handlers"
	"github.com/guildforge/engine/internal/logger"
	"github.com/guildforge/engine/internal/queue"
	"github.com/guildforge/engine/internal/storage"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg)

	log.Info("Starting Guildforge API",
		"port", cfg.Port,
		"environment", cfg.Environment)

	store, err := storage.NewRedisStorage(cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to create storage", "error", err)
		os.Exit(1)
	}

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	queueClient := queue.NewClientFromRedis(store.Client(), log)
	followUps := queue.NewFollowUpQueue(queueClient)
	broadcaster := events.NewBroadcaster(store.Client(), log)

	eng := engine.New(store, log).
		WithFollowUps(followUps).
		WithEvents(broadcaster)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, log)
	mux.Handle("/health", healthHandler)

	guildHandler := handlers.NewGuildHandler(store, eng, log)
	mux.Handle("/v1/guilds/", guildHandler)

	eventsHandler := handlers.NewEventsHandler(store.Client(), log)
	mux.Handle("/v1/events/guilds/", eventsHandler)

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		// WriteTimeout stays unset so SSE connections can stream
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server exited")
}
