package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/guildforge/engine/pkg/guild"
	"github.com/guildforge/engine/pkg/inventory"
	"github.com/guildforge/engine/pkg/respond"
)

// AdvanceRound ticks the guild's round state machine. Starting the
// game is silent; an active round draws its polarity, applies item
// economics to every initialized player, resolves the attack queue,
// and only then advances the counter; a failed save leaves the stored
// document untouched for a safe retry. A completed game answers with a
// reset confirmation instead of running another round.
func (e *Engine) AdvanceRound(ctx context.Context, guildID string) (*respond.Response, error) {
	rec, err := e.store.LoadGuild(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to load guild %s: %w", guildID, err)
	}
	if rec == nil {
		return nil, ErrGuildNotFound
	}

	rc := &rec.Round
	if rc.TotalRounds <= 0 {
		return respondp(respond.Rejection("Rounds haven't been configured for this server.")), nil
	}

	if rc.Completed() {
		return &respond.Response{
			Text: fmt.Sprintf("All %d rounds have been played. Reset the game to start over.", rc.TotalRounds),
		}, nil
	}

	if !rc.Started() {
		rc.CurrentRound = 1
		if err := e.store.SaveGuild(ctx, rec); err != nil {
			return nil, fmt.Errorf("failed to save guild after round start: %w", err)
		}
		return &respond.Response{Text: "The game has begun. Round 1 is underway."}, nil
	}

	round := rc.CurrentRound
	probability := rc.GoodProbability(round)
	draw := e.roll.IntN(100)
	good := draw < probability

	names := newNameCache(ctx, e.identity)

	economyLines := e.applyEconomics(rec, good, names)
	combatLines := e.resolveAttacks(ctx, rec, round, names)

	// Counter advances only after the whole round computed cleanly
	rc.CurrentRound++

	if err := e.store.SaveGuild(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save guild after round %d: %w", round, err)
	}

	if e.events != nil {
		if err := e.events.PublishRoundResolved(ctx, guildID, round, good); err != nil {
			e.log.Warn("Failed to publish round event", "guild_id", guildID, "round", round, "error", err)
		}
	}

	polarity := "Fortune favored the guild!"
	if !good {
		polarity = "Hard times struck the guild."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Round %d of %d: %s\n", round, rc.TotalRounds, polarity)
	for _, line := range economyLines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	for _, line := range combatLines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if rc.Completed() {
		b.WriteString("That was the final round!")
	}

	return &respond.Response{
		Title: fmt.Sprintf("Round %d results", round),
		Text:  strings.TrimRight(b.String(), "\n"),
	}, nil
}

// applyEconomics applies each item's matching-polarity outcome value,
// per unit held, to every player with an initialized economic profile.
func (e *Engine) applyEconomics(rec *guild.Record, good bool, names *nameCache) []string {
	playerIDs := make([]string, 0, len(rec.Players))
	for id, p := range rec.Players {
		if p != nil && p.Initialized {
			playerIDs = append(playerIDs, id)
		}
	}
	sort.Strings(playerIDs)

	var lines []string
	for _, id := range playerIDs {
		p := rec.Players[id]
		delta := 0
		for itemID := range p.Inventory {
			item, ok := rec.Item(itemID)
			if !ok {
				continue
			}
			value := item.OutcomeValue(good)
			if value == 0 {
				continue
			}
			delta += p.Inventory.Quantity(itemID) * value
		}
		if delta == 0 {
			continue
		}
		p.AddCurrency(delta)
		if delta > 0 {
			lines = append(lines, fmt.Sprintf("%s gained %d coins.", names.name(id), delta))
		} else {
			lines = append(lines, fmt.Sprintf("%s lost %d coins.", names.name(id), -delta))
		}
	}
	return lines
}

// ResetGame restores starting currency and default items for every
// player, clears round and attack history, and returns the round state
// machine to "not started".
func (e *Engine) ResetGame(ctx context.Context, guildID string) (*respond.Response, error) {
	rec, err := e.store.LoadGuild(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to load guild %s: %w", guildID, err)
	}
	if rec == nil {
		return nil, ErrGuildNotFound
	}

	rc := &rec.Round
	for _, p := range rec.Players {
		if p == nil {
			continue
		}
		p.Currency = rc.StartingCurrency
		p.Inventory = make(inventory.Inventory)
		for itemID, qty := range rc.DefaultItems {
			p.Inventory.Grant(itemID, qty, rec.IsCombatItem(itemID))
		}
		p.Cooldowns = make(map[string]time.Time)
		p.UseCounts = make(map[string]int)
		p.Purchases = nil
	}
	rec.Attacks = make(map[string][]guild.AttackRecord)
	rc.CurrentRound = 0

	if err := e.store.SaveGuild(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save guild after reset: %w", err)
	}

	if e.events != nil {
		if err := e.events.PublishGameReset(ctx, guildID); err != nil {
			e.log.Warn("Failed to publish reset event", "guild_id", guildID, "error", err)
		}
	}

	return &respond.Response{Text: "The game has been reset. Everyone is back to their starting balance."}, nil
}

// standings renders the aggregation path used by calculate_results
// actions: either one player's position or the whole table.
func (e *Engine) standings(ctx context.Context, rec *guild.Record, playerID string) respond.Response {
	names := newNameCache(ctx, e.identity)

	if playerID != "" {
		p := rec.EnsurePlayer(playerID)
		return respond.Response{
			Text: fmt.Sprintf("%s has %d coins.", names.name(playerID), p.Currency),
		}
	}

	type standing struct {
		id       string
		currency int
	}
	all := make([]standing, 0, len(rec.Players))
	for id, p := range rec.Players {
		if p == nil || !p.Initialized {
			continue
		}
		all = append(all, standing{id: id, currency: p.Currency})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].currency != all[j].currency {
			return all[i].currency > all[j].currency
		}
		return all[i].id < all[j].id
	})

	var b strings.Builder
	for rank, s := range all {
		fmt.Fprintf(&b, "%d. %s — %d coins\n", rank+1, names.name(s.id), s.currency)
	}
	if b.Len() == 0 {
		b.WriteString("Nobody has joined the game yet.")
	}

	return respond.Response{
		Title: "Standings",
		Text:  strings.TrimRight(b.String(), "\n"),
	}
}
