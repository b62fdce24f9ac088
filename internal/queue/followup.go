package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/guildforge/engine/pkg/respond"
)

const followUpKey = "followups"

// FollowUp is one deferred response waiting for delivery. The primary
// response of an interaction is returned synchronously; everything else
// is enqueued here and delivered by the worker without the caller
// waiting on confirmation.
type FollowUp struct {
	ID         string           `json:"id"`
	GuildID    string           `json:"guild_id"`
	PlayerID   string           `json:"player_id"`
	Response   respond.Response `json:"response"`
	EnqueuedAt time.Time        `json:"enqueued_at"`
	// Attempts counts failed delivery tries; the worker drops the
	// follow-up once its attempt budget is spent.
	Attempts int `json:"attempts,omitempty"`
}

// FollowUpQueue manages the deferred-response queue on a Redis list.
type FollowUpQueue struct {
	client *Client
}

// NewFollowUpQueue creates a queue handle over an existing client.
func NewFollowUpQueue(client *Client) *FollowUpQueue {
	return &FollowUpQueue{client: client}
}

// Enqueue appends a follow-up to the delivery queue.
func (q *FollowUpQueue) Enqueue(ctx context.Context, fu *FollowUp) error {
	if fu.EnqueuedAt.IsZero() {
		fu.EnqueuedAt = time.Now()
	}
	data, err := json.Marshal(fu)
	if err != nil {
		return fmt.Errorf("failed to serialize follow-up: %w", err)
	}

	if err := q.client.rdb.RPush(ctx, followUpKey, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue follow-up: %w", err)
	}
	return nil
}

// Dequeue removes and returns the next follow-up.
// Returns nil if the queue is empty.
func (q *FollowUpQueue) Dequeue(ctx context.Context) (*FollowUp, error) {
	result, err := q.client.rdb.LPop(ctx, followUpKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Queue is empty
		}
		return nil, fmt.Errorf("failed to dequeue follow-up: %w", err)
	}
	return parseFollowUp(result)
}

// BlockingDequeue waits up to timeout for the next follow-up.
// Returns nil on timeout.
func (q *FollowUpQueue) BlockingDequeue(ctx context.Context, timeout time.Duration) (*FollowUp, error) {
	result, err := q.client.rdb.BLPop(ctx, timeout, followUpKey).Result()
	if err != nil {
		if err == redis.Nil || ctx.Err() != nil {
			return nil, nil // Timeout or shutdown
		}
		return nil, fmt.Errorf("failed to dequeue follow-up: %w", err)
	}
	// BLPop returns [key, value]
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BLPOP result length %d", len(result))
	}
	return parseFollowUp(result[1])
}

// Depth returns the number of queued follow-ups.
func (q *FollowUpQueue) Depth(ctx context.Context) (int, error) {
	count, err := q.client.rdb.LLen(ctx, followUpKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue depth: %w", err)
	}
	return int(count), nil
}

// Clear removes all queued follow-ups.
func (q *FollowUpQueue) Clear(ctx context.Context) error {
	if err := q.client.rdb.Del(ctx, followUpKey).Err(); err != nil {
		return fmt.Errorf("failed to clear follow-up queue: %w", err)
	}
	return nil
}

func parseFollowUp(raw string) (*FollowUp, error) {
	var fu FollowUp
	if err := json.Unmarshal([]byte(raw), &fu); err != nil {
		return nil, fmt.Errorf("failed to parse follow-up: %w", err)
	}
	return &fu, nil
}
