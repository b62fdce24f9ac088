package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildforge/engine/pkg/guild"
)

func roundGuild() *guild.Record {
	rec := guild.NewRecord("g1")
	rec.Items["farm"] = &guild.Item{ID: "farm", Name: "Farm", GoodOutcomeValue: 10, BadOutcomeValue: -5}
	rec.Round = guild.RoundConfig{
		TotalRounds:      3,
		StartProbability: 70,
		MidProbability:   50,
		EndProbability:   30,
		StartingCurrency: 100,
	}
	return rec
}

func TestAdvanceRound_NotConfigured(t *testing.T) {
	rec := guild.NewRecord("g1")
	e, _ := newTestEngine(t, rec)

	resp, err := e.AdvanceRound(context.Background(), "g1")
	require.NoError(t, err)
	assert.Contains(t, resp.Text, "haven't been configured")
}

func TestAdvanceRound_MissingGuild(t *testing.T) {
	e, _ := newTestEngine(t, roundGuild())

	_, err := e.AdvanceRound(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrGuildNotFound)
}

func TestAdvanceRound_StartIsSilent(t *testing.T) {
	e, store := newTestEngine(t, roundGuild())

	resp, err := e.AdvanceRound(context.Background(), "g1")
	require.NoError(t, err)
	assert.Contains(t, resp.Text, "Round 1 is underway")

	saved := loadGuild(t, store, "g1")
	assert.Equal(t, 1, saved.Round.CurrentRound)
}

func TestAdvanceRound_CompletedGameAsksForReset(t *testing.T) {
	rec := roundGuild()
	rec.Round.CurrentRound = 4
	e, store := newTestEngine(t, rec)

	resp, err := e.AdvanceRound(context.Background(), "g1")
	require.NoError(t, err)
	assert.Contains(t, resp.Text, "Reset the game")

	saved := loadGuild(t, store, "g1")
	assert.Equal(t, 4, saved.Round.CurrentRound, "completed game never advances")
}

func TestAdvanceRound_GoodOutcomeEconomics(t *testing.T) {
	rec := roundGuild()
	rec.Round.CurrentRound = 1
	p := rec.EnsurePlayer("alice")
	p.Currency = 100
	p.Inventory.Set("farm", 2, 0)
	e, store := newTestEngine(t, rec)
	e.WithRoller(&scriptedRoller{draws: []int{69}}) // 69 < 70, good round

	resp, err := e.AdvanceRound(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, "Round 1 results", resp.Title)
	assert.Contains(t, resp.Text, "Fortune favored the guild!")
	assert.Contains(t, resp.Text, "alice gained 20 coins.")

	saved := loadGuild(t, store, "g1")
	assert.Equal(t, 120, saved.Players["alice"].Currency, "2 farms × 10 per good round")
	assert.Equal(t, 2, saved.Round.CurrentRound)
}

func TestAdvanceRound_BadOutcomeEconomics(t *testing.T) {
	rec := roundGuild()
	rec.Round.CurrentRound = 1
	p := rec.EnsurePlayer("alice")
	p.Currency = 100
	p.Inventory.Set("farm", 2, 0)
	e, store := newTestEngine(t, rec)
	e.WithRoller(&scriptedRoller{draws: []int{70}}) // 70 >= 70, bad round

	resp, err := e.AdvanceRound(context.Background(), "g1")
	require.NoError(t, err)
	assert.Contains(t, resp.Text, "Hard times struck the guild.")
	assert.Contains(t, resp.Text, "alice lost 10 coins.")

	saved := loadGuild(t, store, "g1")
	assert.Equal(t, 90, saved.Players["alice"].Currency)
}

func TestAdvanceRound_SkipsUninitializedAndMissingItems(t *testing.T) {
	rec := roundGuild()
	rec.Round.CurrentRound = 1
	p := rec.EnsurePlayer("alice")
	p.Inventory.Set("farm", 1, 0)
	p.Inventory.Set("deleted-item", 3, 0)
	ghost := rec.EnsurePlayer("ghost")
	ghost.Initialized = false
	ghost.Inventory.Set("farm", 5, 0)
	e, store := newTestEngine(t, rec)
	e.WithRoller(&scriptedRoller{draws: []int{0}})

	resp, err := e.AdvanceRound(context.Background(), "g1")
	require.NoError(t, err)
	assert.NotContains(t, resp.Text, "ghost")

	saved := loadGuild(t, store, "g1")
	assert.Equal(t, 10, saved.Players["alice"].Currency, "deleted item contributes nothing")
	assert.Equal(t, 0, saved.Players["ghost"].Currency)
}

func TestAdvanceRound_FinalRoundAnnouncesEnd(t *testing.T) {
	rec := roundGuild()
	rec.Round.CurrentRound = 3
	rec.EnsurePlayer("alice")
	e, store := newTestEngine(t, rec)
	e.WithRoller(&scriptedRoller{draws: []int{99}}) // 99 >= 30, bad final round

	resp, err := e.AdvanceRound(context.Background(), "g1")
	require.NoError(t, err)
	assert.Contains(t, resp.Text, "Round 3 of 3")
	assert.Contains(t, resp.Text, "That was the final round!")

	saved := loadGuild(t, store, "g1")
	assert.True(t, saved.Round.Completed())
}

func TestAdvanceRound_FailedSaveLeavesCounterRetriable(t *testing.T) {
	rec := roundGuild()
	rec.Round.CurrentRound = 1
	rec.EnsurePlayer("alice")
	e, store := newTestEngine(t, rec)
	store.SetSaveError(assert.AnError)

	_, err := e.AdvanceRound(context.Background(), "g1")
	require.Error(t, err)

	store.SetSaveError(nil)
	saved := loadGuild(t, store, "g1")
	assert.Equal(t, 1, saved.Round.CurrentRound, "stored counter untouched, retry replays the round")
}

func TestResetGame(t *testing.T) {
	rec := roundGuild()
	rec.Items["bomb"] = &guild.Item{ID: "bomb", Name: "Bomb", AttackValue: 10, Consumable: true}
	rec.Round.CurrentRound = 3
	rec.Round.DefaultItems = map[string]int{"farm": 1, "bomb": 2}
	p := rec.EnsurePlayer("alice")
	p.Currency = 7
	p.Inventory.Set("farm", 9, 0)
	p.Cooldowns["t1"] = time.Now()
	p.UseCounts["t1"] = 4
	p.Purchases = []guild.Purchase{{ItemID: "farm", Quantity: 1}}
	rec.AppendAttack(guild.AttackRecord{ID: "a1", Attacker: "alice", Defender: "bob", ItemID: "bomb", Quantity: 1, Round: 3})
	e, store := newTestEngine(t, rec)

	resp, err := e.ResetGame(context.Background(), "g1")
	require.NoError(t, err)
	assert.Contains(t, resp.Text, "has been reset")

	saved := loadGuild(t, store, "g1")
	got := saved.Players["alice"]
	assert.Equal(t, 100, got.Currency)
	assert.Equal(t, 1, got.Inventory.Quantity("farm"))
	assert.Equal(t, 2, got.Inventory.Quantity("bomb"))
	assert.Equal(t, 2, got.Inventory.UsableAttacks("bomb"), "combat defaults arrive usable")
	assert.Empty(t, got.Cooldowns)
	assert.Empty(t, got.UseCounts)
	assert.Empty(t, got.Purchases)
	assert.Empty(t, saved.RoundAttacks(3))
	assert.Equal(t, 0, saved.Round.CurrentRound)
	assert.False(t, saved.Round.Started())
}
