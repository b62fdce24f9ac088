package engine

import (
	"context"
	"time"

	"github.com/guildforge/engine/pkg/guild"
	"github.com/guildforge/engine/pkg/trigger"
)

// playerSnapshot backs trigger.PlayerView with the loaded guild
// document plus the points and movement collaborators. Collaborator
// failures degrade to the closed answer (zero points, cannot move) with
// a warning, never an aborted evaluation.
type playerSnapshot struct {
	ctx context.Context
	e   *Engine
	rec *guild.Record
	p   *guild.Player
	tr  *trigger.Trigger
}

var _ trigger.PlayerView = (*playerSnapshot)(nil)

func (e *Engine) snapshot(ctx context.Context, rec *guild.Record, p *guild.Player, tr *trigger.Trigger) *playerSnapshot {
	return &playerSnapshot{ctx: ctx, e: e, rec: rec, p: p, tr: tr}
}

func (s *playerSnapshot) Currency() int {
	return s.p.Currency
}

func (s *playerSnapshot) ItemQuantity(itemID string) int {
	return s.p.Inventory.Quantity(itemID)
}

func (s *playerSnapshot) HasRole(roleID string) bool {
	has, err := s.e.roles.Has(s.ctx, s.p.ID, roleID)
	if err != nil {
		s.e.log.Warn("Role lookup failed during condition evaluation", "player_id", s.p.ID, "role_id", roleID, "error", err)
		return false
	}
	return has
}

func (s *playerSnapshot) TriggerUseCount() int {
	return s.p.UseCounts[s.tr.ID]
}

func (s *playerSnapshot) CooldownExpired(seconds int) bool {
	last, ok := s.p.Cooldowns[s.tr.ID]
	if !ok {
		return true
	}
	return s.e.now().Sub(last) >= time.Duration(seconds)*time.Second
}

func (s *playerSnapshot) Points() int {
	points, err := s.e.points.Get(s.ctx, s.p.ID)
	if err != nil {
		s.e.log.Warn("Point lookup failed during condition evaluation", "player_id", s.p.ID, "error", err)
		return 0
	}
	return points
}

func (s *playerSnapshot) CanMove() bool {
	can, err := s.e.movement.CanMove(s.ctx, s.p.ID)
	if err != nil {
		s.e.log.Warn("Movement lookup failed during condition evaluation", "player_id", s.p.ID, "error", err)
		return false
	}
	return can
}

func (s *playerSnapshot) Location() string {
	loc, err := s.e.movement.Location(s.ctx, s.p.ID)
	if err != nil {
		s.e.log.Warn("Location lookup failed during condition evaluation", "player_id", s.p.ID, "error", err)
		return ""
	}
	return loc
}
