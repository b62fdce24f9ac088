package handlers

import (
	"errors"
	"net/http"

	"github.com/guildforge/engine/internal/engine"
	"github.com/guildforge/engine/pkg/respond"
)

func (h *GuildHandler) handleRound(w http.ResponseWriter, r *http.Request, guildID, verb string) {
	var resp *respond.Response
	var err error

	switch verb {
	case "advance":
		resp, err = h.engine.AdvanceRound(r.Context(), guildID)
	case "reset":
		resp, err = h.engine.ResetGame(r.Context(), guildID)
	default:
		h.writeError(w, http.StatusNotFound, "Unknown round operation. Supported: advance, reset")
		return
	}

	if err != nil {
		if errors.Is(err, engine.ErrGuildNotFound) {
			h.writeError(w, http.StatusNotFound, "Guild not found")
			return
		}
		h.logger.Error("Round operation failed", "guild_id", guildID, "operation", verb, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Round operation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}
