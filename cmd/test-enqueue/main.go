package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/guildforge/engine/internal/queue"
	"github.com/guildforge/engine/pkg/respond"
)

// Seeds the follow-up queue with sample responses so the delivery
// worker can be exercised without running the API.
func main() {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	client, err := queue.NewClient(redisURL, logger)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer client.Close()

	fmt.Println("Connected to Redis successfully!")

	q := queue.NewFollowUpQueue(client)
	ctx := context.Background()

	first := &queue.FollowUp{
		ID:       uuid.NewString(),
		GuildID:  "test-guild",
		PlayerID: "test-player",
		Response: respond.Response{
			Text: "You found a hidden cache of 50 coins!",
		},
		EnqueuedAt: time.Now(),
	}
	if err := q.Enqueue(ctx, first); err != nil {
		log.Fatal("Failed to enqueue follow-up:", err)
	}
	fmt.Printf("Enqueued follow-up: %s\n", first.ID)

	second := &queue.FollowUp{
		ID:       uuid.NewString(),
		GuildID:  "test-guild",
		PlayerID: "test-player",
		Response: respond.Response{
			Title: "Round 2 results",
			Text:  "Fortune favored the guild!",
		},
		EnqueuedAt: time.Now(),
	}
	if err := q.Enqueue(ctx, second); err != nil {
		log.Fatal("Failed to enqueue follow-up:", err)
	}
	fmt.Printf("Enqueued follow-up: %s\n", second.ID)

	depth, err := q.Depth(ctx)
	if err != nil {
		log.Fatal("Failed to get queue depth:", err)
	}

	fmt.Printf("\nQueue depth: %d follow-ups\n", depth)
	fmt.Println("\nNow start the worker to see it deliver these responses.")
	fmt.Println("   Run: go run cmd/worker/main.go")
}
