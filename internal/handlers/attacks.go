package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/guildforge/engine/internal/engine"
)

// ScheduleAttackRequest is the body for queueing an attack into the
// current round.
type ScheduleAttackRequest struct {
	AttackerID string `json:"attacker_id"`
	DefenderID string `json:"defender_id"`
	ItemID     string `json:"item_id"`
	Quantity   int    `json:"quantity"`
}

func (h *GuildHandler) handleAttack(w http.ResponseWriter, r *http.Request, guildID string) {
	var req ScheduleAttackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid attack request", "guild_id", guildID, "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid request body. Expected JSON with attacker, defender, item and quantity.")
		return
	}
	if req.AttackerID == "" || req.DefenderID == "" || req.ItemID == "" {
		h.writeError(w, http.StatusBadRequest, "attacker_id, defender_id and item_id are required")
		return
	}

	resp, err := h.engine.ScheduleAttack(r.Context(), guildID, req.AttackerID, req.DefenderID, req.ItemID, req.Quantity)
	if err != nil {
		if errors.Is(err, engine.ErrGuildNotFound) {
			h.writeError(w, http.StatusNotFound, "Guild not found")
			return
		}
		h.logger.Error("Failed to schedule attack",
			"guild_id", guildID,
			"attacker_id", req.AttackerID,
			"defender_id", req.DefenderID,
			"error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to schedule attack")
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}
