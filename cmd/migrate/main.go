package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/guildforge/engine/internal/config"
	"github.com/guildforge/engine/internal/logger"
	"github.com/guildforge/engine/internal/storage"
	"github.com/guildforge/engine/pkg/guild"
)

// migrate rewrites legacy scalar inventory entries into the structured
// form, one guild document at a time. Each document is backed up
// before its first write, and the run is idempotent: a second pass
// finds nothing left to convert.
func main() {
	var (
		guildID = flag.String("guild", "", "migrate a single guild instead of all")
		dryRun  = flag.Bool("dry-run", false, "report what would change without writing")
	)
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg)

	store, err := storage.NewRedisStorage(cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to create storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing storage", "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := store.Ping(ctx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}

	var ids []string
	if *guildID != "" {
		ids = []string{*guildID}
	} else {
		ids, err = store.ListGuildIDs(ctx)
		if err != nil {
			log.Error("Failed to list guilds", "error", err)
			os.Exit(1)
		}
	}

	log.Info("Starting inventory migration", "guilds", len(ids), "dry_run", *dryRun)

	migrated := 0
	for _, id := range ids {
		changed, err := migrateGuild(ctx, store, id, *dryRun)
		if err != nil {
			log.Error("Failed to migrate guild", "guild_id", id, "error", err)
			os.Exit(1)
		}
		if changed {
			migrated++
		}
	}

	fmt.Printf("Migration complete: %d of %d guilds updated.\n", migrated, len(ids))
}

func migrateGuild(ctx context.Context, store storage.Storage, guildID string, dryRun bool) (bool, error) {
	rec, err := store.LoadGuild(ctx, guildID)
	if err != nil {
		return false, err
	}
	if rec == nil {
		return false, fmt.Errorf("guild %s not found", guildID)
	}

	changed := migratePlayers(rec)
	if !changed || dryRun {
		if changed {
			fmt.Printf("%s: would migrate legacy inventory entries\n", guildID)
		}
		return changed, nil
	}

	// Back up the stored bytes, not the parsed record: parsing
	// already coerces legacy entries, and the backup must preserve
	// the pre-migration shape so a restore can be re-migrated.
	if err := store.BackupGuildRaw(ctx, guildID); err != nil {
		return false, fmt.Errorf("backup failed, refusing to migrate: %w", err)
	}
	if err := store.SaveGuild(ctx, rec); err != nil {
		return false, err
	}

	fmt.Printf("%s: migrated legacy inventory entries\n", guildID)
	return true, nil
}

func migratePlayers(rec *guild.Record) bool {
	changed := false
	for _, p := range rec.Players {
		if p == nil {
			continue
		}
		if p.Inventory.Migrate(rec.IsCombatItem) {
			changed = true
		}
	}
	return changed
}
