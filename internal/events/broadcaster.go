package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-redis/redis/v8"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeTriggerFired  EventType = "trigger.fired"
	EventTypeAttackQueued  EventType = "attack.queued"
	EventTypeRoundResolved EventType = "round.resolved"
	EventTypeGameReset     EventType = "game.reset"
)

// Event is the generic structure published to a guild's event channel.
type Event struct {
	Type    EventType              `json:"type"`
	GuildID string                 `json:"guild_id,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// Broadcaster publishes engine events to Redis Pub/Sub for SSE
// distribution. Publishing is fire-and-forget from the engine's point
// of view: failures are logged by callers, never propagated into the
// interaction.
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// ChannelFor returns the pub/sub channel name for a guild.
func ChannelFor(guildID string) string {
	return fmt.Sprintf("guild-events:%s", guildID)
}

// PublishTriggerFired publishes a trigger.fired event
func (b *Broadcaster) PublishTriggerFired(ctx context.Context, guildID, triggerID, playerID string, conditionResult bool) error {
	return b.publish(ctx, guildID, Event{
		Type:    EventTypeTriggerFired,
		GuildID: guildID,
		Data: map[string]interface{}{
			"trigger_id": triggerID,
			"player_id":  playerID,
			"passed":     conditionResult,
		},
	})
}

// PublishAttackQueued publishes an attack.queued event
func (b *Broadcaster) PublishAttackQueued(ctx context.Context, guildID, attacker, defender string, round int) error {
	return b.publish(ctx, guildID, Event{
		Type:    EventTypeAttackQueued,
		GuildID: guildID,
		Data: map[string]interface{}{
			"attacker": attacker,
			"defender": defender,
			"round":    round,
		},
	})
}

// PublishRoundResolved publishes a round.resolved event
func (b *Broadcaster) PublishRoundResolved(ctx context.Context, guildID string, round int, good bool) error {
	return b.publish(ctx, guildID, Event{
		Type:    EventTypeRoundResolved,
		GuildID: guildID,
		Data: map[string]interface{}{
			"round": round,
			"good":  good,
		},
	})
}

// PublishGameReset publishes a game.reset event
func (b *Broadcaster) PublishGameReset(ctx context.Context, guildID string) error {
	return b.publish(ctx, guildID, Event{
		Type:    EventTypeGameReset,
		GuildID: guildID,
	})
}

func (b *Broadcaster) publish(ctx context.Context, guildID string, event Event) error {
	channel := ChannelFor(guildID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event", event)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published", "channel", channel, "event_type", event.Type)
	return nil
}

// Subscribe opens a pub/sub subscription for a guild's event channel.
// The caller owns the returned subscription and must close it.
func (b *Broadcaster) Subscribe(ctx context.Context, guildID string) *redis.PubSub {
	return b.redisClient.Subscribe(ctx, ChannelFor(guildID))
}
