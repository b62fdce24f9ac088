package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildforge/engine/pkg/guild"
	"github.com/guildforge/engine/pkg/trigger"
)

func seedGuild() *guild.Record {
	rec := guild.NewRecord("g1")
	rec.Items["potion"] = &guild.Item{ID: "potion", Name: "Potion", Consumable: true}
	rec.Items["sword"] = &guild.Item{ID: "sword", Name: "Sword", AttackValue: 5, Consumable: true}
	return rec
}

func TestFireTrigger_MissingGuildAndTrigger(t *testing.T) {
	e, _ := newTestEngine(t, seedGuild())
	ctx := context.Background()

	_, err := e.FireTrigger(ctx, "nope", "alice", "t1", FireOptions{})
	assert.ErrorIs(t, err, ErrGuildNotFound)

	_, err = e.FireTrigger(ctx, "g1", "alice", "nope", FireOptions{})
	assert.ErrorIs(t, err, ErrTriggerNotFound)
}

func TestFireTrigger_DisplayTextWithButtonBundling(t *testing.T) {
	rec := seedGuild()
	rec.Triggers["next"] = &trigger.Trigger{ID: "next", Label: "Continue"}
	rec.Triggers["start"] = &trigger.Trigger{
		ID: "start",
		Actions: []trigger.Action{
			{ID: "a1", Kind: trigger.ActionDisplayText, Order: 1, Text: "Welcome!", Title: "Hello"},
			{ID: "a2", Kind: trigger.ActionFollowUpButton, Order: 2, TargetTriggerID: "next"},
			{ID: "a3", Kind: trigger.ActionFollowUpButton, Order: 3, TargetTriggerID: "gone"},
		},
	}
	e, _ := newTestEngine(t, rec)

	resp, err := e.FireTrigger(context.Background(), "g1", "alice", "start", FireOptions{})
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, "Welcome!", resp.Text)
	require.Len(t, resp.Buttons, 2, "both follow-up buttons bundle into the text response")
	assert.Equal(t, "Continue", resp.Buttons[0].Label)
	assert.False(t, resp.Buttons[0].Missing)
	assert.True(t, resp.Buttons[1].Missing, "deleted target renders a placeholder")
}

func TestFireTrigger_DeferredFollowUps(t *testing.T) {
	rec := seedGuild()
	rec.Triggers["story"] = &trigger.Trigger{
		ID: "story",
		Actions: []trigger.Action{
			{ID: "a1", Kind: trigger.ActionDisplayText, Order: 1, Text: "Part one"},
			{ID: "a2", Kind: trigger.ActionDisplayText, Order: 2, Text: "Part two"},
			{ID: "a3", Kind: trigger.ActionDisplayText, Order: 3, Text: "Part three"},
		},
	}
	e, _ := newTestEngine(t, rec)
	sink := &capturedFollowUps{}
	e.WithFollowUps(sink)

	resp, err := e.FireTrigger(context.Background(), "g1", "alice", "story", FireOptions{})
	require.NoError(t, err)

	assert.Equal(t, "Part one", resp.Text, "first text-bearing response is primary")
	require.Len(t, sink.items, 2)
	assert.Equal(t, "Part two", sink.items[0].Response.Text, "deferred delivery preserves order")
	assert.Equal(t, "Part three", sink.items[1].Response.Text)
}

func TestFireTrigger_ExecuteOnBranches(t *testing.T) {
	rec := seedGuild()
	rec.Triggers["gate"] = &trigger.Trigger{
		ID: "gate",
		Conditions: []trigger.Condition{
			{Kind: trigger.CondCurrencyAtLeast, Value: 100},
		},
		Actions: []trigger.Action{
			{ID: "rich", Kind: trigger.ActionDisplayText, Order: 1, Text: "Welcome, high roller."},
			{ID: "poor", Kind: trigger.ActionDisplayText, Order: 1, Text: "Come back with more coin.", ExecuteOn: trigger.ExecuteOnFalse},
		},
	}
	rec.EnsurePlayer("alice").Currency = 500
	rec.EnsurePlayer("bob").Currency = 5
	e, _ := newTestEngine(t, rec)
	ctx := context.Background()

	resp, err := e.FireTrigger(ctx, "g1", "alice", "gate", FireOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Welcome, high roller.", resp.Text)

	resp, err = e.FireTrigger(ctx, "g1", "bob", "gate", FireOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Come back with more coin.", resp.Text)
}

func TestFireTrigger_ForceFalseOverride(t *testing.T) {
	rec := seedGuild()
	rec.Triggers["gate"] = &trigger.Trigger{
		ID: "gate",
		Actions: []trigger.Action{
			{ID: "yes", Kind: trigger.ActionDisplayText, Order: 1, Text: "Passed"},
			{ID: "no", Kind: trigger.ActionDisplayText, Order: 1, Text: "Failed", ExecuteOn: trigger.ExecuteOnFalse},
		},
	}
	e, _ := newTestEngine(t, rec)

	resp, err := e.FireTrigger(context.Background(), "g1", "alice", "gate", FireOptions{ForceFalse: true})
	require.NoError(t, err)
	assert.Equal(t, "Failed", resp.Text, "forced-false runs the false branch even with no conditions")
}

func TestFireTrigger_EmptyBranchMessages(t *testing.T) {
	rec := seedGuild()
	rec.Triggers["locked"] = &trigger.Trigger{
		ID: "locked",
		Conditions: []trigger.Condition{
			{Kind: trigger.CondCurrencyAtLeast, Value: 1000},
		},
		Actions: []trigger.Action{
			{ID: "a1", Kind: trigger.ActionDisplayText, Order: 1, Text: "Secret"},
		},
	}
	e, _ := newTestEngine(t, rec)

	resp, err := e.FireTrigger(context.Background(), "g1", "alice", "locked", FireOptions{})
	require.NoError(t, err)
	assert.Contains(t, resp.Text, "don't meet the requirements")
}

func TestFireTrigger_GiveCurrencyOncePerPlayer(t *testing.T) {
	rec := seedGuild()
	rec.Triggers["daily"] = &trigger.Trigger{
		ID: "daily",
		Actions: []trigger.Action{
			{
				ID: "grant", Kind: trigger.ActionGiveCurrency, Order: 1, Amount: 50,
				Limit: &trigger.Limit{Kind: trigger.LimitOncePerPlayer},
			},
			{ID: "msg", Kind: trigger.ActionDisplayText, Order: 2, Text: "Claim processed."},
		},
	}
	e, store := newTestEngine(t, rec)
	ctx := context.Background()

	_, err := e.FireTrigger(ctx, "g1", "alice", "daily", FireOptions{})
	require.NoError(t, err)

	saved := loadGuild(t, store, "g1")
	assert.Equal(t, 50, saved.Players["alice"].Currency)

	// Same player again: rejected, no second grant
	_, err = e.FireTrigger(ctx, "g1", "alice", "daily", FireOptions{})
	require.NoError(t, err)

	saved = loadGuild(t, store, "g1")
	assert.Equal(t, 50, saved.Players["alice"].Currency, "second claim grants nothing")

	// A different player still claims
	_, err = e.FireTrigger(ctx, "g1", "bob", "daily", FireOptions{})
	require.NoError(t, err)

	saved = loadGuild(t, store, "g1")
	assert.Equal(t, 50, saved.Players["bob"].Currency)
}

func TestFireTrigger_UnlimitedGrantWithoutActionID(t *testing.T) {
	// Admin-authored triggers routinely omit action IDs; a grant with
	// no Limit must still apply.
	rec := seedGuild()
	rec.Triggers["freebie"] = &trigger.Trigger{
		ID: "freebie",
		Actions: []trigger.Action{
			{Kind: trigger.ActionGiveCurrency, Order: 1, Amount: 50},
			{Kind: trigger.ActionGiveItem, Order: 2, ItemID: "potion", Quantity: 2},
			{Kind: trigger.ActionGiveCurrency, Order: 3, Amount: 10,
				Limit: &trigger.Limit{Kind: trigger.LimitUnlimited}},
		},
	}
	e, store := newTestEngine(t, rec)

	_, err := e.FireTrigger(context.Background(), "g1", "alice", "freebie", FireOptions{})
	require.NoError(t, err)

	saved := loadGuild(t, store, "g1")
	assert.Equal(t, 60, saved.Players["alice"].Currency)
	assert.Equal(t, 2, saved.Players["alice"].Inventory.Quantity("potion"))
}

func TestFireTrigger_GiveItemOnceGlobally(t *testing.T) {
	rec := seedGuild()
	rec.Triggers["relic"] = &trigger.Trigger{
		ID: "relic",
		Actions: []trigger.Action{
			{
				ID: "grant", Kind: trigger.ActionGiveItem, Order: 1, ItemID: "sword", Quantity: 1,
				Limit: &trigger.Limit{Kind: trigger.LimitOnceGlobally},
			},
		},
	}
	e, store := newTestEngine(t, rec)
	ctx := context.Background()

	_, err := e.FireTrigger(ctx, "g1", "alice", "relic", FireOptions{})
	require.NoError(t, err)
	_, err = e.FireTrigger(ctx, "g1", "bob", "relic", FireOptions{})
	require.NoError(t, err)

	saved := loadGuild(t, store, "g1")
	assert.Equal(t, 1, saved.Players["alice"].Inventory.Quantity("sword"), "first claimant wins")
	assert.Equal(t, 1, saved.Players["alice"].Inventory.UsableAttacks("sword"), "attack items arrive usable")
	assert.Equal(t, 0, saved.Players["bob"].Inventory.Quantity("sword"))
	assert.Equal(t, "alice", saved.Triggers["relic"].Actions[0].Limit.ClaimedByUser)
}

func TestFireTrigger_GiveItemMissingItemSkips(t *testing.T) {
	rec := seedGuild()
	rec.Triggers["ghost"] = &trigger.Trigger{
		ID: "ghost",
		Actions: []trigger.Action{
			{ID: "a1", Kind: trigger.ActionGiveItem, Order: 1, ItemID: "deleted-item"},
			{ID: "a2", Kind: trigger.ActionDisplayText, Order: 2, Text: "Still here."},
		},
	}
	e, _ := newTestEngine(t, rec)

	resp, err := e.FireTrigger(context.Background(), "g1", "alice", "ghost", FireOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Still here.", resp.Text, "missing item degrades to a skip, not an abort")
}

func TestFireTrigger_ConditionalBranch(t *testing.T) {
	rec := seedGuild()
	rec.Triggers["fork"] = &trigger.Trigger{
		ID: "fork",
		Actions: []trigger.Action{
			{
				ID: "cond", Kind: trigger.ActionConditional, Order: 1,
				Branch: &trigger.Branch{
					Conditions: []trigger.Condition{{Kind: trigger.CondHasItem, ItemID: "potion"}},
					Then:       []trigger.Action{{ID: "t1", Kind: trigger.ActionDisplayText, Text: "You have a potion."}},
					Else:       []trigger.Action{{ID: "e1", Kind: trigger.ActionDisplayText, Text: "No potion for you."}},
				},
			},
		},
	}
	rec.EnsurePlayer("alice").Inventory.Set("potion", 1, 0)
	e, _ := newTestEngine(t, rec)
	ctx := context.Background()

	resp, err := e.FireTrigger(ctx, "g1", "alice", "fork", FireOptions{})
	require.NoError(t, err)
	assert.Equal(t, "You have a potion.", resp.Text)

	resp, err = e.FireTrigger(ctx, "g1", "bob", "fork", FireOptions{})
	require.NoError(t, err)
	assert.Equal(t, "No potion for you.", resp.Text)
}

func TestFireTrigger_RandomOutcomeWeights(t *testing.T) {
	rec := seedGuild()
	rec.Triggers["gamble"] = &trigger.Trigger{
		ID: "gamble",
		Actions: []trigger.Action{
			{
				ID: "spin", Kind: trigger.ActionRandomOutcome, Order: 1,
				Outcomes: []trigger.Outcome{
					{Weight: 3, Actions: []trigger.Action{{ID: "o1", Kind: trigger.ActionDisplayText, Text: "Common"}}},
					{Weight: 1, Actions: []trigger.Action{{ID: "o2", Kind: trigger.ActionDisplayText, Text: "Rare"}}},
				},
			},
		},
	}
	e, _ := newTestEngine(t, rec)
	ctx := context.Background()

	// Draw 2 lands inside the first outcome's cumulative weight [0,3)
	e.WithRoller(&scriptedRoller{draws: []int{2}})
	resp, err := e.FireTrigger(ctx, "g1", "alice", "gamble", FireOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Common", resp.Text)

	// Draw 3 lands in the second outcome's range [3,4)
	e.WithRoller(&scriptedRoller{draws: []int{3}})
	resp, err = e.FireTrigger(ctx, "g1", "alice", "gamble", FireOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Rare", resp.Text)
}

func TestFireTrigger_BuyItemRefundsOnSoldOut(t *testing.T) {
	rec := seedGuild()
	stock := 0
	rec.Stores["shop"] = &guild.Store{
		ID:   "shop",
		Name: "General Store",
		Listings: []*guild.Listing{
			{ItemID: "potion", Price: 30, Stock: &stock},
		},
	}
	rec.Triggers["buy"] = &trigger.Trigger{
		ID: "buy",
		Actions: []trigger.Action{
			{ID: "b1", Kind: trigger.ActionBuyItem, Order: 1, StoreID: "shop", ItemID: "potion", Quantity: 1},
		},
	}
	rec.EnsurePlayer("alice").Currency = 100
	e, store := newTestEngine(t, rec)

	resp, err := e.FireTrigger(context.Background(), "g1", "alice", "buy", FireOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Sold out.", resp.Text)

	saved := loadGuild(t, store, "g1")
	assert.Equal(t, 100, saved.Players["alice"].Currency, "debit is refunded when stock refuses")
	assert.Equal(t, 0, saved.Players["alice"].Inventory.Quantity("potion"))
}

func TestFireTrigger_BuyItemHappyPath(t *testing.T) {
	rec := seedGuild()
	stock := 2
	rec.Stores["shop"] = &guild.Store{
		ID:   "shop",
		Name: "General Store",
		Listings: []*guild.Listing{
			{ItemID: "potion", Price: 30, Stock: &stock},
		},
	}
	rec.Triggers["buy"] = &trigger.Trigger{
		ID: "buy",
		Actions: []trigger.Action{
			{ID: "b1", Kind: trigger.ActionBuyItem, Order: 1, StoreID: "shop", ItemID: "potion", Quantity: 1},
		},
	}
	rec.EnsurePlayer("alice").Currency = 100
	e, store := newTestEngine(t, rec)

	resp, err := e.FireTrigger(context.Background(), "g1", "alice", "buy", FireOptions{})
	require.NoError(t, err)
	assert.Contains(t, resp.Text, "You bought 1 × Potion")

	saved := loadGuild(t, store, "g1")
	assert.Equal(t, 70, saved.Players["alice"].Currency)
	assert.Equal(t, 1, saved.Players["alice"].Inventory.Quantity("potion"))
	assert.Equal(t, 1, *saved.Stores["shop"].Listings[0].Stock)
	require.Len(t, saved.Players["alice"].Purchases, 1)
}

func TestFireTrigger_BuyItemInsufficientFunds(t *testing.T) {
	rec := seedGuild()
	rec.Stores["shop"] = &guild.Store{
		ID:       "shop",
		Listings: []*guild.Listing{{ItemID: "potion", Price: 30}},
	}
	rec.Triggers["buy"] = &trigger.Trigger{
		ID: "buy",
		Actions: []trigger.Action{
			{ID: "b1", Kind: trigger.ActionBuyItem, Order: 1, StoreID: "shop", ItemID: "potion"},
		},
	}
	rec.EnsurePlayer("alice").Currency = 10
	e, store := newTestEngine(t, rec)

	resp, err := e.FireTrigger(context.Background(), "g1", "alice", "buy", FireOptions{})
	require.NoError(t, err)
	assert.Equal(t, "You can't afford that.", resp.Text)

	saved := loadGuild(t, store, "g1")
	assert.Equal(t, 10, saved.Players["alice"].Currency, "no partial debit")
}

func TestFireTrigger_BuyItemOwnershipCap(t *testing.T) {
	rec := seedGuild()
	rec.Stores["shop"] = &guild.Store{
		ID:       "shop",
		Listings: []*guild.Listing{{ItemID: "potion", Price: 10, MaxPerPlayer: 2}},
	}
	rec.Triggers["buy"] = &trigger.Trigger{
		ID: "buy",
		Actions: []trigger.Action{
			{ID: "b1", Kind: trigger.ActionBuyItem, Order: 1, StoreID: "shop", ItemID: "potion"},
		},
	}
	p := rec.EnsurePlayer("alice")
	p.Currency = 100
	p.Inventory.Set("potion", 2, 0)
	e, store := newTestEngine(t, rec)

	resp, err := e.FireTrigger(context.Background(), "g1", "alice", "buy", FireOptions{})
	require.NoError(t, err)
	assert.Contains(t, resp.Text, "as many of those")

	saved := loadGuild(t, store, "g1")
	assert.Equal(t, 100, saved.Players["alice"].Currency)
	assert.Equal(t, 2, saved.Players["alice"].Inventory.Quantity("potion"))
}

func TestFireTrigger_RoleActionsIdempotent(t *testing.T) {
	rec := seedGuild()
	rec.Triggers["promote"] = &trigger.Trigger{
		ID: "promote",
		Actions: []trigger.Action{
			{ID: "r1", Kind: trigger.ActionGiveRole, Order: 1, RoleID: "vip"},
		},
	}
	e, _ := newTestEngine(t, rec)
	roles := newMockRoles()
	e.WithRoles(roles)
	ctx := context.Background()

	_, err := e.FireTrigger(ctx, "g1", "alice", "promote", FireOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, roles.grants)

	// Already a member: no second grant call
	_, err = e.FireTrigger(ctx, "g1", "alice", "promote", FireOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, roles.grants)
}

func TestFireTrigger_RoleUnmanageable(t *testing.T) {
	rec := seedGuild()
	rec.Triggers["promote"] = &trigger.Trigger{
		ID: "promote",
		Actions: []trigger.Action{
			{ID: "r1", Kind: trigger.ActionGiveRole, Order: 1, RoleID: "admin"},
		},
	}
	e, _ := newTestEngine(t, rec)
	roles := newMockRoles()
	roles.unmanageable["admin"] = true
	e.WithRoles(roles)

	resp, err := e.FireTrigger(context.Background(), "g1", "alice", "promote", FireOptions{})
	require.NoError(t, err)
	assert.Contains(t, resp.Text, "permission")
	assert.Equal(t, 0, roles.grants)
}

func TestFireTrigger_CheckPointsGate(t *testing.T) {
	rec := seedGuild()
	rec.Triggers["climb"] = &trigger.Trigger{
		ID: "climb",
		Actions: []trigger.Action{
			{ID: "p1", Kind: trigger.ActionCheckPoints, Order: 1, Amount: 10},
			{ID: "p2", Kind: trigger.ActionDisplayText, Order: 2, Text: "You climb the wall."},
		},
	}
	e, _ := newTestEngine(t, rec)
	points := &mockPoints{balances: map[string]int{"alice": 20, "bob": 3}}
	e.WithPoints(points)
	ctx := context.Background()

	resp, err := e.FireTrigger(ctx, "g1", "alice", "climb", FireOptions{})
	require.NoError(t, err)
	assert.Equal(t, "You climb the wall.", resp.Text)

	resp, err = e.FireTrigger(ctx, "g1", "bob", "climb", FireOptions{})
	require.NoError(t, err)
	assert.Contains(t, resp.Text, "enough points")
}

func TestFireTrigger_ModifyPoints(t *testing.T) {
	rec := seedGuild()
	rec.Triggers["rest"] = &trigger.Trigger{
		ID: "rest",
		Actions: []trigger.Action{
			{ID: "p1", Kind: trigger.ActionModifyPoints, Order: 1, Amount: 5},
		},
	}
	e, _ := newTestEngine(t, rec)
	points := &mockPoints{balances: map[string]int{"alice": 10}}
	e.WithPoints(points)

	_, err := e.FireTrigger(context.Background(), "g1", "alice", "rest", FireOptions{})
	require.NoError(t, err)
	assert.Equal(t, 15, points.balances["alice"])
}

func TestFireTrigger_UseCountAndCooldownStamp(t *testing.T) {
	rec := seedGuild()
	rec.Triggers["tap"] = &trigger.Trigger{
		ID:      "tap",
		Actions: []trigger.Action{{ID: "a1", Kind: trigger.ActionDisplayText, Order: 1, Text: "Tapped"}},
	}
	e, store := newTestEngine(t, rec)
	ctx := context.Background()

	_, err := e.FireTrigger(ctx, "g1", "alice", "tap", FireOptions{})
	require.NoError(t, err)
	_, err = e.FireTrigger(ctx, "g1", "alice", "tap", FireOptions{})
	require.NoError(t, err)

	saved := loadGuild(t, store, "g1")
	assert.Equal(t, 2, saved.Triggers["tap"].UseCount)
	assert.Equal(t, 2, saved.Players["alice"].UseCounts["tap"])
	assert.False(t, saved.Players["alice"].Cooldowns["tap"].IsZero())
}

func TestFireTrigger_FailedGateBurnsNothing(t *testing.T) {
	rec := seedGuild()
	rec.Triggers["gate"] = &trigger.Trigger{
		ID: "gate",
		Conditions: []trigger.Condition{
			{Kind: trigger.CondCurrencyAtLeast, Value: 1000},
		},
		Actions: []trigger.Action{{ID: "a1", Kind: trigger.ActionDisplayText, Order: 1, Text: "In"}},
	}
	e, store := newTestEngine(t, rec)

	_, err := e.FireTrigger(context.Background(), "g1", "alice", "gate", FireOptions{})
	require.NoError(t, err)

	saved := loadGuild(t, store, "g1")
	assert.Equal(t, 0, saved.Triggers["gate"].UseCount)
	assert.Equal(t, 0, saved.Players["alice"].UseCounts["gate"])
	assert.True(t, saved.Players["alice"].Cooldowns["gate"].IsZero(),
		"a failed attempt must not reset its own cooldown")
}

func TestStandings(t *testing.T) {
	rec := seedGuild()
	rec.EnsurePlayer("alice").Currency = 100
	rec.EnsurePlayer("bob").Currency = 250
	e, _ := newTestEngine(t, rec)

	resp := e.standings(context.Background(), rec, "")
	assert.Equal(t, "Standings", resp.Title)
	assert.Contains(t, resp.Text, "1. bob — 250 coins")
	assert.Contains(t, resp.Text, "2. alice — 100 coins")

	self := e.standings(context.Background(), rec, "alice")
	assert.Equal(t, "alice has 100 coins.", self.Text)
}
