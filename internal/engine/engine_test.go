package engine

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/guildforge/engine/internal/queue"
	"github.com/guildforge/engine/internal/storage"
	"github.com/guildforge/engine/pkg/guild"
)

// scriptedRoller returns pre-arranged draws in sequence, then zeros.
type scriptedRoller struct {
	draws []int
	next  int
}

func (r *scriptedRoller) IntN(n int) int {
	if r.next >= len(r.draws) {
		return 0
	}
	v := r.draws[r.next]
	r.next++
	if v >= n {
		v = n - 1
	}
	return v
}

// capturedFollowUps records enqueued follow-ups instead of delivering.
type capturedFollowUps struct {
	items []*queue.FollowUp
}

func (c *capturedFollowUps) Enqueue(_ context.Context, fu *queue.FollowUp) error {
	c.items = append(c.items, fu)
	return nil
}

// mockPoints is an in-memory points collaborator.
type mockPoints struct {
	balances map[string]int
}

func (m *mockPoints) HasEnough(_ context.Context, playerID string, amount int) (bool, error) {
	return m.balances[playerID] >= amount, nil
}

func (m *mockPoints) Use(_ context.Context, playerID string, amount int) error {
	m.balances[playerID] -= amount
	return nil
}

func (m *mockPoints) Get(_ context.Context, playerID string) (int, error) {
	return m.balances[playerID], nil
}

func (m *mockPoints) Set(_ context.Context, playerID string, amount int) error {
	m.balances[playerID] = amount
	return nil
}

// mockRoles tracks role membership in memory.
type mockRoles struct {
	members      map[string]map[string]bool // playerID -> roleID -> member
	unmanageable map[string]bool
	grants       int
	revokes      int
}

func newMockRoles() *mockRoles {
	return &mockRoles{
		members:      make(map[string]map[string]bool),
		unmanageable: make(map[string]bool),
	}
}

func (m *mockRoles) Has(_ context.Context, playerID, roleID string) (bool, error) {
	return m.members[playerID][roleID], nil
}

func (m *mockRoles) Grant(_ context.Context, playerID, roleID string) error {
	if m.members[playerID] == nil {
		m.members[playerID] = make(map[string]bool)
	}
	m.members[playerID][roleID] = true
	m.grants++
	return nil
}

func (m *mockRoles) Revoke(_ context.Context, playerID, roleID string) error {
	delete(m.members[playerID], roleID)
	m.revokes++
	return nil
}

func (m *mockRoles) CanManage(_ context.Context, roleID string) (bool, error) {
	return !m.unmanageable[roleID], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestEngine builds an engine over mock storage with a seeded guild.
func newTestEngine(t *testing.T, rec *guild.Record) (*Engine, *storage.MockStorage) {
	t.Helper()
	store := storage.NewMockStorage()
	if rec != nil {
		require.NoError(t, store.SaveGuild(context.Background(), rec))
	}
	return New(store, testLogger()), store
}

func loadGuild(t *testing.T, store *storage.MockStorage, guildID string) *guild.Record {
	t.Helper()
	rec, err := store.LoadGuild(context.Background(), guildID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	return rec
}
