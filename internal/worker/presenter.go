package worker

import (
	"context"
	"log/slog"

	"github.com/guildforge/engine/internal/queue"
)

// Presenter delivers a follow-up response to the chat platform. The
// engine and worker are platform-agnostic; the concrete presenter owns
// formatting and the platform API call.
type Presenter interface {
	Deliver(ctx context.Context, fu *queue.FollowUp) error
}

// LogPresenter writes deliveries to the log. It stands in wherever no
// platform adapter is configured, keeping the queue drained.
type LogPresenter struct {
	log *slog.Logger
}

func NewLogPresenter(log *slog.Logger) *LogPresenter {
	return &LogPresenter{log: log}
}

func (p *LogPresenter) Deliver(_ context.Context, fu *queue.FollowUp) error {
	p.log.Info("Follow-up response",
		"guild_id", fu.GuildID,
		"player_id", fu.PlayerID,
		"title", fu.Response.Title,
		"text", fu.Response.Text,
		"buttons", len(fu.Response.Buttons))
	return nil
}
