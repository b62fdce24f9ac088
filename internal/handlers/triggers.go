package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/guildforge/engine/internal/engine"
)

// FireTriggerRequest is the body for firing a trigger as a player.
type FireTriggerRequest struct {
	PlayerID string `json:"player_id"`
	// ForceFalse runs the trigger's false branch without evaluating
	// conditions. Set by callers whose structured input didn't match.
	ForceFalse bool `json:"force_false,omitempty"`
}

func (h *GuildHandler) handleFire(w http.ResponseWriter, r *http.Request, guildID, triggerID string) {
	var req FireTriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid fire request", "guild_id", guildID, "trigger_id", triggerID, "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid request body. Expected JSON with 'player_id' field.")
		return
	}
	if req.PlayerID == "" {
		h.writeError(w, http.StatusBadRequest, "player_id is required")
		return
	}

	resp, err := h.engine.FireTrigger(r.Context(), guildID, req.PlayerID, triggerID, engine.FireOptions{
		ForceFalse: req.ForceFalse,
	})
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrGuildNotFound):
			h.writeError(w, http.StatusNotFound, "Guild not found")
		case errors.Is(err, engine.ErrTriggerNotFound):
			h.writeError(w, http.StatusNotFound, "Trigger not found")
		default:
			h.logger.Error("Failed to fire trigger",
				"guild_id", guildID,
				"trigger_id", triggerID,
				"player_id", req.PlayerID,
				"error", err)
			h.writeError(w, http.StatusInternalServerError, "Failed to fire trigger")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}
