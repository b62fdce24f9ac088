package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/guildforge/engine/internal/queue"
)

const (
	dequeueTimeout = 5 * time.Second
	retryDelay     = 1 * time.Second
	maxAttempts    = 3
)

// Worker drains the follow-up queue and hands each response to the
// presenter for delivery. Delivery is at-least-once: a failed delivery
// is re-queued until its attempt budget runs out.
type Worker struct {
	id        string
	queue     *queue.FollowUpQueue
	presenter Presenter
	log       *slog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

// New creates a new worker instance
func New(followUps *queue.FollowUpQueue, presenter Presenter, log *slog.Logger, workerID string) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}

	return &Worker{
		id:        workerID,
		queue:     followUps,
		presenter: presenter,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start begins delivering follow-ups from the queue
func (w *Worker) Start() error {
	w.log.Info("Worker starting", "worker_id", w.id)

	for {
		select {
		case <-w.ctx.Done():
			w.log.Info("Worker shutting down", "worker_id", w.id)
			return nil
		default:
			if err := w.deliverNext(); err != nil {
				w.log.Error("Error delivering follow-up", "error", err, "worker_id", w.id)
				// Continue processing even on error
				time.Sleep(retryDelay)
			}
		}
	}
}

// Stop gracefully shuts down the worker
func (w *Worker) Stop() {
	w.log.Info("Worker stop requested", "worker_id", w.id)
	w.cancel()
}

// deliverNext pulls the next follow-up off the queue and presents it.
func (w *Worker) deliverNext() error {
	ctx, cancel := context.WithTimeout(w.ctx, dequeueTimeout)
	defer cancel()

	fu, err := w.queue.BlockingDequeue(ctx, dequeueTimeout)
	if err != nil {
		return fmt.Errorf("failed to dequeue follow-up: %w", err)
	}
	if fu == nil {
		// Queue is empty or timeout occurred, which is normal
		return nil
	}

	w.log.Info("Received follow-up from queue",
		"worker_id", w.id,
		"follow_up_id", fu.ID,
		"guild_id", fu.GuildID,
		"player_id", fu.PlayerID)

	if err := w.presenter.Deliver(w.ctx, fu); err != nil {
		fu.Attempts++
		if fu.Attempts >= maxAttempts {
			w.log.Error("Dropping follow-up after repeated delivery failures",
				"worker_id", w.id,
				"follow_up_id", fu.ID,
				"guild_id", fu.GuildID,
				"attempts", fu.Attempts,
				"error", err)
			return nil
		}
		w.log.Warn("Delivery failed, re-queueing follow-up",
			"worker_id", w.id,
			"follow_up_id", fu.ID,
			"attempts", fu.Attempts,
			"error", err)
		if qErr := w.queue.Enqueue(w.ctx, fu); qErr != nil {
			return fmt.Errorf("failed to re-queue follow-up: %w", qErr)
		}
		return nil
	}

	w.log.Debug("Follow-up delivered",
		"worker_id", w.id,
		"follow_up_id", fu.ID,
		"guild_id", fu.GuildID)
	return nil
}
