package storage

import (
	"context"

	"github.com/guildforge/engine/pkg/guild"
)

// Storage defines the interface for guild document persistence. The
// store enforces no schema beyond what Normalize imposes on load; two
// concurrent writers to the same guild are last-write-wins.
type Storage interface {
	// Ping tests the store connection
	Ping(ctx context.Context) error

	// Close closes the store connection
	Close() error

	// LoadGuild retrieves a guild document by id.
	// Returns nil if the guild doesn't exist.
	LoadGuild(ctx context.Context, guildID string) (*guild.Record, error)

	// SaveGuild writes a whole guild document
	SaveGuild(ctx context.Context, rec *guild.Record) error

	// DeleteGuild removes a guild document by id
	DeleteGuild(ctx context.Context, guildID string) error

	// ListGuildIDs enumerates every stored guild (used by migration)
	ListGuildIDs(ctx context.Context) ([]string, error)

	// BackupGuildRaw copies the stored bytes for a guild to a
	// timestamped backup key without parsing them, for use before
	// destructive migrations. Legacy document shapes survive the
	// backup verbatim.
	BackupGuildRaw(ctx context.Context, guildID string) error
}
