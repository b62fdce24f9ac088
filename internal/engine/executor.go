package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/guildforge/engine/internal/queue"
	"github.com/guildforge/engine/pkg/guild"
	"github.com/guildforge/engine/pkg/respond"
	"github.com/guildforge/engine/pkg/trigger"
)

// FireOptions tunes one trigger invocation.
type FireOptions struct {
	// ForceFalse treats the trigger's conditions as failed without
	// evaluating them. Used when a structured input attached to the
	// trigger didn't match.
	ForceFalse bool
}

// FireTrigger runs a trigger's scripted actions for a player and
// returns the primary response. Additional text-bearing responses are
// enqueued for deferred delivery and not awaited. Side effects from
// actions that completed before a later action failed are kept; there
// is no rollback across actions.
func (e *Engine) FireTrigger(ctx context.Context, guildID, playerID, triggerID string, opts FireOptions) (*respond.Response, error) {
	rec, err := e.store.LoadGuild(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to load guild %s: %w", guildID, err)
	}
	if rec == nil {
		return nil, ErrGuildNotFound
	}

	tr, ok := rec.Triggers[triggerID]
	if !ok || tr == nil {
		return nil, ErrTriggerNotFound
	}

	player := rec.EnsurePlayer(playerID)

	passed := false
	if !opts.ForceFalse {
		passed = trigger.EvaluateConditions(tr.Conditions, e.snapshot(ctx, rec, player, tr), e.log)
	}

	actions := tr.ActionsFor(passed)

	// Stamp usage only when the gate passes, after evaluation, so
	// cooldown and use-count conditions see the pre-fire state and a
	// failed attempt does not burn a use or reset its own cooldown.
	if passed {
		tr.UseCount++
		player.UseCounts[tr.ID]++
		player.Cooldowns[tr.ID] = e.now()
	}

	var responses []respond.Response
	if len(actions) == 0 {
		if passed {
			responses = []respond.Response{{Text: "Nothing happened.", Ephemeral: true}}
		} else {
			responses = []respond.Response{{Text: "You don't meet the requirements for that.", Ephemeral: true}}
		}
	} else {
		responses = e.runActions(ctx, rec, player, tr, actions)
	}

	if err := e.store.SaveGuild(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save guild after trigger run: %w", err)
	}

	primary, deferred := splitResponses(responses)
	e.enqueueFollowUps(ctx, guildID, playerID, deferred)

	if e.events != nil {
		if err := e.events.PublishTriggerFired(ctx, guildID, triggerID, playerID, passed); err != nil {
			e.log.Warn("Failed to publish trigger event", "guild_id", guildID, "trigger_id", triggerID, "error", err)
		}
	}

	return primary, nil
}

// splitResponses picks the first content-bearing response as primary
// and defers the rest in original order.
func splitResponses(responses []respond.Response) (*respond.Response, []respond.Response) {
	var primary *respond.Response
	var deferred []respond.Response
	for i := range responses {
		if !responses[i].HasContent() {
			continue
		}
		if primary == nil {
			primary = &responses[i]
			continue
		}
		deferred = append(deferred, responses[i])
	}
	if primary == nil {
		primary = &respond.Response{Text: "Done.", Ephemeral: true}
	}
	return primary, deferred
}

func (e *Engine) enqueueFollowUps(ctx context.Context, guildID, playerID string, deferred []respond.Response) {
	if e.followUps == nil || len(deferred) == 0 {
		return
	}
	for _, r := range deferred {
		fu := &queue.FollowUp{
			ID:       uuid.NewString(),
			GuildID:  guildID,
			PlayerID: playerID,
			Response: r,
		}
		if err := e.followUps.Enqueue(ctx, fu); err != nil {
			// Deferred delivery has its own failure handling; the
			// primary response is already on its way.
			e.log.Error("Failed to enqueue follow-up", "guild_id", guildID, "player_id", playerID, "error", err)
		}
	}
}

// runActions executes an already-gated, already-sorted action list.
// display_text actions absorb immediately-following follow_up_button
// actions into one response. Each action's error is isolated: it logs,
// yields a generic failure line, and the run continues.
func (e *Engine) runActions(ctx context.Context, rec *guild.Record, player *guild.Player, tr *trigger.Trigger, actions []trigger.Action) []respond.Response {
	var out []respond.Response
	for i := 0; i < len(actions); i++ {
		a := actions[i]

		if a.Kind == trigger.ActionDisplayText {
			resp := respond.Response{Text: a.Text, Title: a.Title, ImageURL: a.ImageURL, Color: a.Color}
			for i+1 < len(actions) && actions[i+1].Kind == trigger.ActionFollowUpButton {
				i++
				resp.Buttons = append(resp.Buttons, e.buttonRef(rec, actions[i]))
			}
			out = append(out, resp)
			continue
		}

		resps, err := e.execAction(ctx, rec, player, tr, a)
		if err != nil {
			e.log.Error("Action failed",
				"trigger_id", tr.ID,
				"action_id", a.ID,
				"kind", a.Kind,
				"error", err)
			out = append(out, respond.Failure())
			continue
		}
		out = append(out, resps...)
	}
	return out
}

func (e *Engine) execAction(ctx context.Context, rec *guild.Record, player *guild.Player, tr *trigger.Trigger, a trigger.Action) ([]respond.Response, error) {
	switch a.Kind {
	case trigger.ActionDisplayText:
		// Handled by runActions for button bundling; standalone reach
		// here only through nested sub-lists that were not bundled.
		return []respond.Response{{Text: a.Text, Title: a.Title, ImageURL: a.ImageURL, Color: a.Color}}, nil

	case trigger.ActionGiveCurrency:
		return e.execGrant(player, tr, a, func() {
			player.AddCurrency(a.Amount)
		})

	case trigger.ActionGiveItem:
		if _, ok := rec.Item(a.ItemID); !ok {
			e.log.Warn("give_item references a missing item", "trigger_id", tr.ID, "item_id", a.ItemID)
			return nil, nil
		}
		return e.execGrant(player, tr, a, func() {
			player.Inventory.Grant(a.ItemID, quantityOrOne(a.Quantity), rec.IsCombatItem(a.ItemID))
		})

	case trigger.ActionGiveRole:
		return e.execRole(ctx, player, a, true)

	case trigger.ActionRemoveRole:
		return e.execRole(ctx, player, a, false)

	case trigger.ActionFollowUpButton:
		return []respond.Response{{Buttons: []respond.ButtonRef{e.buttonRef(rec, a)}}}, nil

	case trigger.ActionConditional:
		if a.Branch == nil {
			return nil, nil
		}
		passed := trigger.EvaluateConditions(a.Branch.Conditions, e.snapshot(ctx, rec, player, tr), e.log)
		sub := a.Branch.Then
		if !passed {
			sub = a.Branch.Else
		}
		return e.runActions(ctx, rec, player, tr, sortedByOrder(sub)), nil

	case trigger.ActionRandomOutcome:
		return e.execRandomOutcome(ctx, rec, player, tr, a)

	case trigger.ActionStoreDisplay:
		return e.execStoreDisplay(rec, a)

	case trigger.ActionBuyItem:
		return e.execBuyItem(rec, player, a)

	case trigger.ActionCheckPoints:
		enough, err := e.points.HasEnough(ctx, player.ID, a.Amount)
		if err != nil {
			return nil, fmt.Errorf("point check failed: %w", err)
		}
		if !enough {
			return []respond.Response{respond.Rejection("You don't have enough points for that.")}, nil
		}
		return nil, nil

	case trigger.ActionModifyPoints:
		if err := e.execModifyPoints(ctx, player, a); err != nil {
			return nil, err
		}
		return nil, nil

	case trigger.ActionMovePlayer:
		can, err := e.movement.CanMove(ctx, player.ID)
		if err != nil {
			return nil, fmt.Errorf("movement check failed: %w", err)
		}
		if !can {
			return []respond.Response{respond.Rejection("You can't move right now.")}, nil
		}
		if err := e.movement.Move(ctx, player.ID, a.Destination); err != nil {
			return nil, fmt.Errorf("move failed: %w", err)
		}
		return nil, nil

	case trigger.ActionCalculateResults:
		scopePlayer := ""
		if a.Scope == "self" {
			scopePlayer = player.ID
		}
		resp := e.standings(ctx, rec, scopePlayer)
		return []respond.Response{resp}, nil

	default:
		// Unknown kinds are data corruption, not programmer error:
		// skip quietly with a diagnostic.
		e.log.Warn("Unknown action kind", "trigger_id", tr.ID, "kind", a.Kind)
		return nil, nil
	}
}

// execGrant enforces the action's claim limit against the live action
// on the stored trigger (matched only by stable action ID, never by
// content), applies the grant, and records the claim. Unlimited grants
// carry no claim state, so they apply without the live lookup and work
// for actions that were authored without an ID.
func (e *Engine) execGrant(player *guild.Player, tr *trigger.Trigger, a trigger.Action, apply func()) ([]respond.Response, error) {
	if a.Limit == nil || a.Limit.Kind == trigger.LimitUnlimited {
		apply()
		return nil, nil
	}

	live := tr.FindAction(a.ID)
	if live == nil {
		// The action disappeared from the stored trigger mid-run.
		// Without a stable identity there is nothing safe to claim
		// against, so the grant is skipped.
		e.log.Warn("Granting action has no live counterpart", "trigger_id", tr.ID, "action_id", a.ID)
		return nil, nil
	}

	if live.Limit.Claimed(player.ID) {
		if live.Limit.Kind == trigger.LimitOnceGlobally {
			return []respond.Response{respond.Rejection("This reward has already been claimed.")}, nil
		}
		return []respond.Response{respond.Rejection("You've already claimed this reward.")}, nil
	}

	apply()
	live.Limit.Record(player.ID)
	return nil, nil
}

func (e *Engine) execRole(ctx context.Context, player *guild.Player, a trigger.Action, grant bool) ([]respond.Response, error) {
	manageable, err := e.roles.CanManage(ctx, a.RoleID)
	if err != nil {
		return nil, fmt.Errorf("role manageability check failed: %w", err)
	}
	if !manageable {
		return []respond.Response{respond.Rejection("I don't have permission to manage that role.")}, nil
	}

	has, err := e.roles.Has(ctx, player.ID, a.RoleID)
	if err != nil {
		return nil, fmt.Errorf("role membership check failed: %w", err)
	}
	if has == grant {
		return nil, nil // already in the target state
	}

	if grant {
		err = e.roles.Grant(ctx, player.ID, a.RoleID)
	} else {
		err = e.roles.Revoke(ctx, player.ID, a.RoleID)
	}
	if err != nil {
		return nil, fmt.Errorf("role update failed: %w", err)
	}
	return nil, nil
}

func (e *Engine) execRandomOutcome(ctx context.Context, rec *guild.Record, player *guild.Player, tr *trigger.Trigger, a trigger.Action) ([]respond.Response, error) {
	if len(a.Outcomes) == 0 {
		return nil, nil
	}

	total := 0
	for _, o := range a.Outcomes {
		total += o.EffectiveWeight()
	}

	draw := e.roll.IntN(total)
	cumulative := 0
	for _, o := range a.Outcomes {
		cumulative += o.EffectiveWeight()
		if draw < cumulative {
			return e.runActions(ctx, rec, player, tr, sortedByOrder(o.Actions)), nil
		}
	}
	return nil, nil
}

func (e *Engine) execStoreDisplay(rec *guild.Record, a trigger.Action) ([]respond.Response, error) {
	store, ok := rec.Stores[a.StoreID]
	if !ok || store == nil {
		return []respond.Response{respond.Rejection("That store no longer exists.")}, nil
	}

	var b strings.Builder
	for _, l := range store.Listings {
		if l == nil {
			continue
		}
		fmt.Fprintf(&b, "%s — %d coins", rec.ItemName(l.ItemID), l.Price)
		switch stock := l.GetStock(); {
		case stock < 0:
		case stock == 0:
			b.WriteString(" (sold out)")
		default:
			fmt.Fprintf(&b, " (%d left)", stock)
		}
		b.WriteString("\n")
	}

	return []respond.Response{{Title: store.Name, Text: strings.TrimRight(b.String(), "\n")}}, nil
}

// execBuyItem debits the price first and refunds it if the stock
// decrement refuses, so currency and stock never drift apart.
func (e *Engine) execBuyItem(rec *guild.Record, player *guild.Player, a trigger.Action) ([]respond.Response, error) {
	store, ok := rec.Stores[a.StoreID]
	if !ok || store == nil {
		return []respond.Response{respond.Rejection("That store no longer exists.")}, nil
	}

	listing := store.Listing(a.ItemID)
	if listing == nil {
		return []respond.Response{respond.Rejection("That item isn't sold here.")}, nil
	}

	qty := quantityOrOne(a.Quantity)

	if listing.MaxPerPlayer > 0 && player.Inventory.Quantity(a.ItemID)+qty > listing.MaxPerPlayer {
		return []respond.Response{respond.Rejection("You already own as many of those as you're allowed.")}, nil
	}

	cost := listing.Price * qty
	if player.Currency < cost {
		return []respond.Response{respond.Rejection("You can't afford that.")}, nil
	}

	player.Currency -= cost
	if !listing.DecrementStock(qty) {
		player.Currency += cost // refund, stock ran out
		return []respond.Response{respond.Rejection("Sold out.")}, nil
	}

	player.Inventory.Grant(a.ItemID, qty, rec.IsCombatItem(a.ItemID))
	player.Purchases = append(player.Purchases, guild.Purchase{
		StoreID:  a.StoreID,
		ItemID:   a.ItemID,
		Quantity: qty,
		Price:    cost,
		At:       e.now(),
	})

	text := fmt.Sprintf("You bought %d × %s for %d coins.", qty, rec.ItemName(a.ItemID), cost)
	return []respond.Response{{Text: text}}, nil
}

func (e *Engine) execModifyPoints(ctx context.Context, player *guild.Player, a trigger.Action) error {
	if a.Amount < 0 {
		if err := e.points.Use(ctx, player.ID, -a.Amount); err != nil {
			return fmt.Errorf("failed to spend points: %w", err)
		}
		return nil
	}
	current, err := e.points.Get(ctx, player.ID)
	if err != nil {
		return fmt.Errorf("failed to read points: %w", err)
	}
	if err := e.points.Set(ctx, player.ID, current+a.Amount); err != nil {
		return fmt.Errorf("failed to set points: %w", err)
	}
	return nil
}

func (e *Engine) buttonRef(rec *guild.Record, a trigger.Action) respond.ButtonRef {
	label := a.Label
	if target, ok := rec.Triggers[a.TargetTriggerID]; ok && target != nil {
		if label == "" {
			label = target.Label
		}
		return respond.ButtonRef{TriggerID: a.TargetTriggerID, Label: label}
	}
	// Deleted target renders a placeholder instead of failing
	if label == "" {
		label = "missing"
	}
	return respond.ButtonRef{TriggerID: a.TargetTriggerID, Label: label, Missing: true}
}

func sortedByOrder(actions []trigger.Action) []trigger.Action {
	out := make([]trigger.Action, len(actions))
	copy(out, actions)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}

func quantityOrOne(q int) int {
	if q <= 0 {
		return 1
	}
	return q
}
