package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/guildforge/engine/pkg/guild"
)

const (
	guildKeyPrefix  = "guild:"
	backupKeyPrefix = "guild:backup:"
)

// RedisStorage implements the Storage interface with guild documents
// stored as JSON blobs.
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
}

// Ensure RedisStorage implements Storage interface
var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance
func NewRedisStorage(redisURL string, logger *slog.Logger) (*RedisStorage, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		// Accept bare host:port addresses as well
		opt = &redis.Options{Addr: redisURL}
	}
	return &RedisStorage{
		client: redis.NewClient(opt),
		logger: logger,
	}, nil
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

func (r *RedisStorage) LoadGuild(ctx context.Context, guildID string) (*guild.Record, error) {
	key := guildKeyPrefix + guildID
	cmd := r.client.Get(ctx, key)
	if err := cmd.Err(); err != nil {
		if err == redis.Nil {
			r.logger.Warn("Guild not found", "guild_id", guildID)
			return nil, nil // Return nil for not found
		}
		r.logger.Error("Failed to load guild", "guild_id", guildID, "error", err)
		return nil, fmt.Errorf("failed to load guild: %w", err)
	}

	var rec guild.Record
	if err := json.Unmarshal([]byte(cmd.Val()), &rec); err != nil {
		r.logger.Error("Failed to unmarshal guild", "guild_id", guildID, "error", err)
		return nil, fmt.Errorf("failed to unmarshal guild: %w", err)
	}

	// Old documents routinely miss substructures
	rec.Normalize()
	return &rec, nil
}

func (r *RedisStorage) SaveGuild(ctx context.Context, rec *guild.Record) error {
	rec.UpdatedAt = time.Now()

	data, err := json.Marshal(rec)
	if err != nil {
		r.logger.Error("Failed to marshal guild", "guild_id", rec.ID, "error", err)
		return fmt.Errorf("failed to marshal guild: %w", err)
	}

	key := guildKeyPrefix + rec.ID
	if err := r.client.Set(ctx, key, string(data), 0).Err(); err != nil {
		r.logger.Error("Failed to save guild", "guild_id", rec.ID, "error", err)
		return fmt.Errorf("failed to save guild: %w", err)
	}

	return nil
}

func (r *RedisStorage) DeleteGuild(ctx context.Context, guildID string) error {
	key := guildKeyPrefix + guildID
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error("Failed to delete guild", "guild_id", guildID, "error", err)
		return fmt.Errorf("failed to delete guild: %w", err)
	}
	return nil
}

func (r *RedisStorage) ListGuildIDs(ctx context.Context) ([]string, error) {
	var (
		ids    []string
		cursor uint64
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, guildKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan guild keys: %w", err)
		}
		for _, key := range keys {
			if strings.HasPrefix(key, backupKeyPrefix) {
				continue
			}
			ids = append(ids, strings.TrimPrefix(key, guildKeyPrefix))
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return ids, nil
}

func (r *RedisStorage) BackupGuildRaw(ctx context.Context, guildID string) error {
	cmd := r.client.Get(ctx, guildKeyPrefix+guildID)
	if err := cmd.Err(); err != nil {
		if err == redis.Nil {
			return fmt.Errorf("no stored document for guild %s", guildID)
		}
		return fmt.Errorf("failed to read guild for backup: %w", err)
	}

	key := fmt.Sprintf("%s%s:%d", backupKeyPrefix, guildID, time.Now().Unix())
	if err := r.client.Set(ctx, key, cmd.Val(), 0).Err(); err != nil {
		r.logger.Error("Failed to write guild backup", "guild_id", guildID, "error", err)
		return fmt.Errorf("failed to write guild backup: %w", err)
	}

	r.logger.Info("Guild backup written", "guild_id", guildID, "backup_key", key)
	return nil
}

// Client exposes the underlying Redis client for pub/sub use.
func (r *RedisStorage) Client() *redis.Client {
	return r.client
}
