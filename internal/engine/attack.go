package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/guildforge/engine/pkg/guild"
	"github.com/guildforge/engine/pkg/respond"
)

// ScheduleAttack commits part of a player's attack-item stack against a
// defender for the current round. Scheduling spends UsableAttacks (not
// Quantity) so the same physical stack cannot be double-committed
// across several scheduling calls within one round; the quantity itself
// is consumed at resolution.
func (e *Engine) ScheduleAttack(ctx context.Context, guildID, attackerID, defenderID, itemID string, qty int) (*respond.Response, error) {
	rec, err := e.store.LoadGuild(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to load guild %s: %w", guildID, err)
	}
	if rec == nil {
		return nil, ErrGuildNotFound
	}

	rc := rec.Round
	if !rc.Started() || rc.Completed() {
		return respondp(respond.Rejection("There's no active round to attack in.")), nil
	}
	if attackerID == defenderID {
		return respondp(respond.Rejection("You can't attack yourself.")), nil
	}
	if qty <= 0 {
		return respondp(respond.Rejection("Attack quantity must be positive.")), nil
	}

	item, ok := rec.Item(itemID)
	if !ok || item.AttackValue <= 0 {
		return respondp(respond.Rejection("That item can't be used to attack.")), nil
	}

	attacker := rec.EnsurePlayer(attackerID)
	usable := attacker.Inventory.UsableAttacks(itemID)
	if qty > usable {
		return respondp(respond.Rejection(fmt.Sprintf("You only have %d usable %s attacks left this round.", usable, item.Name))), nil
	}

	attacker.Inventory.Set(itemID, attacker.Inventory.Quantity(itemID), usable-qty)

	rec.AppendAttack(guild.AttackRecord{
		ID:            uuid.NewString(),
		Attacker:      attackerID,
		Defender:      defenderID,
		ItemID:        itemID,
		Quantity:      qty,
		PerUnitDamage: item.AttackValue,
		TotalDamage:   qty * item.AttackValue,
		Round:         rc.CurrentRound,
	})

	if err := e.store.SaveGuild(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save guild after attack scheduling: %w", err)
	}

	if e.events != nil {
		if err := e.events.PublishAttackQueued(ctx, guildID, attackerID, defenderID, rc.CurrentRound); err != nil {
			e.log.Warn("Failed to publish attack event", "guild_id", guildID, "error", err)
		}
	}

	text := fmt.Sprintf("Attack scheduled: %d × %s. Damage lands when the round resolves.", qty, item.Name)
	return &respond.Response{Text: text, Ephemeral: true}, nil
}

// resolveAttacks settles the round's attack queue in memory. Corrupt
// records are filtered out with a diagnostic and excluded from all
// calculations. Returns human-readable combat lines for the round
// result.
func (e *Engine) resolveAttacks(ctx context.Context, rec *guild.Record, round int, names *nameCache) []string {
	queued := rec.RoundAttacks(round)
	if len(queued) == 0 {
		return nil
	}

	valid := queued[:0:0]
	for _, a := range queued {
		if !a.Valid() {
			e.log.Warn("Discarding corrupt attack record",
				"guild_id", rec.ID,
				"attack_id", a.ID,
				"attacker", a.Attacker,
				"defender", a.Defender,
				"quantity", a.Quantity)
			continue
		}
		valid = append(valid, a)
	}

	byDefender := make(map[string][]guild.AttackRecord)
	for _, a := range valid {
		byDefender[a.Defender] = append(byDefender[a.Defender], a)
	}

	defenders := make([]string, 0, len(byDefender))
	for d := range byDefender {
		defenders = append(defenders, d)
	}
	sort.Strings(defenders)

	var lines []string
	for _, defenderID := range defenders {
		records := byDefender[defenderID]

		totalDamage := 0
		for _, a := range records {
			totalDamage += a.TotalDamage
		}

		defender := rec.EnsurePlayer(defenderID)
		totalDefense := defender.TotalDefense(rec)

		netDamage := totalDamage - totalDefense
		if netDamage < 0 {
			netDamage = 0
		}
		defender.AddCurrency(-netDamage)

		lines = append(lines, fmt.Sprintf("%s took %d damage (%d attack − %d defense).",
			names.name(defenderID), netDamage, totalDamage, totalDefense))
	}

	// Consume the physical stacks behind consumable attack items. The
	// usable-attack budget was already spent at scheduling time.
	for _, a := range valid {
		item, ok := rec.Item(a.ItemID)
		if !ok || !item.Consumable {
			continue
		}
		attacker := rec.EnsurePlayer(a.Attacker)
		remaining := attacker.Inventory.Quantity(a.ItemID) - a.Quantity
		attacker.Inventory.Set(a.ItemID, remaining, attacker.Inventory.UsableAttacks(a.ItemID))
	}

	rec.ClearRoundAttacks(round)
	return lines
}

func respondp(r respond.Response) *respond.Response {
	return &r
}
