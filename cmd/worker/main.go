package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guildforge/engine/internal/config"
	"github.com/guildforge/engine/internal/logger"
	"github.com/guildforge/engine/internal/queue"
	"github.com/guildforge/engine/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg)

	log.Info("Starting Guildforge Worker",
		"environment", cfg.Environment,
		"worker_id", cfg.WorkerID)

	queueClient, err := queue.NewClient(cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to create queue client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := queueClient.Close(); err != nil {
			log.Error("Error closing queue client", "error", err)
		}
	}()

	followUps := queue.NewFollowUpQueue(queueClient)
	log.Info("Queue service initialized successfully")

	presenter := worker.NewLogPresenter(log)

	w := worker.New(followUps, presenter, log, cfg.WorkerID)

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := w.Start(); err != nil {
			log.Error("Worker error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("Worker started, waiting for follow-ups...")

	<-quit
	log.Info("Worker shutdown signal received")

	w.Stop()

	// Give worker time to finish the current delivery
	time.Sleep(2 * time.Second)

	log.Info("Worker exited")
}
