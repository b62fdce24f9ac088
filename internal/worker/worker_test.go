package worker

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildforge/engine/internal/queue"
	"github.com/guildforge/engine/pkg/respond"
)

// mockPresenter records deliveries and can fail a set number of times.
type mockPresenter struct {
	delivered []*queue.FollowUp
	failures  int
}

func (m *mockPresenter) Deliver(_ context.Context, fu *queue.FollowUp) error {
	if m.failures > 0 {
		m.failures--
		return errors.New("platform unavailable")
	}
	m.delivered = append(m.delivered, fu)
	return nil
}

func setupWorker(t *testing.T, presenter Presenter) (*Worker, *queue.FollowUpQueue, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	client, err := queue.NewClient("redis://"+mr.Addr(), logger)
	if err != nil {
		t.Fatalf("Failed to create queue client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	q := queue.NewFollowUpQueue(client)
	return New(q, presenter, logger, "test-worker"), q, mr
}

func TestWorker_DeliversFollowUp(t *testing.T) {
	presenter := &mockPresenter{}
	w, q, _ := setupWorker(t, presenter)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, &queue.FollowUp{
		ID:       "f1",
		GuildID:  "g1",
		PlayerID: "alice",
		Response: respond.Response{Text: "Round results incoming"},
	}))

	require.NoError(t, w.deliverNext())

	require.Len(t, presenter.delivered, 1)
	assert.Equal(t, "f1", presenter.delivered[0].ID)

	depth, err := q.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, depth)
}

func TestWorker_RequeuesOnDeliveryFailure(t *testing.T) {
	presenter := &mockPresenter{failures: 1}
	w, q, _ := setupWorker(t, presenter)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, &queue.FollowUp{ID: "f1", GuildID: "g1", PlayerID: "alice"}))

	// First pass fails and re-queues
	require.NoError(t, w.deliverNext())
	assert.Empty(t, presenter.delivered)

	depth, err := q.Depth(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, depth)

	// Second pass succeeds with the attempt count carried over
	require.NoError(t, w.deliverNext())
	require.Len(t, presenter.delivered, 1)
	assert.Equal(t, 1, presenter.delivered[0].Attempts)
}

func TestWorker_DropsAfterMaxAttempts(t *testing.T) {
	presenter := &mockPresenter{failures: maxAttempts + 1}
	w, q, _ := setupWorker(t, presenter)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, &queue.FollowUp{ID: "f1", GuildID: "g1", PlayerID: "alice"}))

	for i := 0; i < maxAttempts; i++ {
		require.NoError(t, w.deliverNext())
	}

	assert.Empty(t, presenter.delivered)
	depth, err := q.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, depth, "exhausted follow-up is dropped, not re-queued")
}
