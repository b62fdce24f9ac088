// Package engine implements the rules core: condition evaluation,
// scripted action execution, attack scheduling and resolution, and the
// round state machine. Each public operation is one sequential unit of
// work: load the guild document, mutate it in memory, write it back
// whole. There is no isolation across concurrent interactions; the
// store is last-write-wins.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/guildforge/engine/internal/queue"
	"github.com/guildforge/engine/internal/storage"
)

// EventSink receives fire-and-forget engine events. Publish failures
// are logged and swallowed; they never fail an interaction.
type EventSink interface {
	PublishTriggerFired(ctx context.Context, guildID, triggerID, playerID string, conditionResult bool) error
	PublishAttackQueued(ctx context.Context, guildID, attacker, defender string, round int) error
	PublishRoundResolved(ctx context.Context, guildID string, round int, good bool) error
	PublishGameReset(ctx context.Context, guildID string) error
}

// FollowUpSink accepts deferred responses for asynchronous delivery.
type FollowUpSink interface {
	Enqueue(ctx context.Context, fu *queue.FollowUp) error
}

// Engine executes triggers and resolves rounds against the document
// store.
type Engine struct {
	store     storage.Storage
	followUps FollowUpSink
	events    EventSink
	points    Points
	movement  Movement
	roles     Roles
	identity  Identity
	roll      Roller
	now       func() time.Time
	log       *slog.Logger
}

// New creates an engine with no-op collaborators. Wire real ones with
// the With* methods.
func New(store storage.Storage, log *slog.Logger) *Engine {
	return &Engine{
		store:    store,
		points:   nopPoints{},
		movement: nopMovement{},
		roles:    nopRoles{},
		identity: nopIdentity{},
		roll:     mathRoller{},
		now:      time.Now,
		log:      log,
	}
}

// WithFollowUps sets the deferred-response sink.
func (e *Engine) WithFollowUps(sink FollowUpSink) *Engine {
	e.followUps = sink
	return e
}

// WithEvents sets the event broadcaster.
func (e *Engine) WithEvents(sink EventSink) *Engine {
	e.events = sink
	return e
}

// WithPoints sets the points/stamina collaborator.
func (e *Engine) WithPoints(p Points) *Engine {
	e.points = p
	return e
}

// WithMovement sets the movement collaborator.
func (e *Engine) WithMovement(m Movement) *Engine {
	e.movement = m
	return e
}

// WithRoles sets the role-management collaborator.
func (e *Engine) WithRoles(r Roles) *Engine {
	e.roles = r
	return e
}

// WithIdentity sets the display-name resolver.
func (e *Engine) WithIdentity(id Identity) *Engine {
	e.identity = id
	return e
}

// WithRoller sets the random source (tests use a scripted roller).
func (e *Engine) WithRoller(r Roller) *Engine {
	e.roll = r
	return e
}

// WithClock overrides the engine's clock (tests).
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}
