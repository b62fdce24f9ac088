package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/guildforge/engine/internal/engine"
	"github.com/guildforge/engine/internal/storage"
	"github.com/guildforge/engine/pkg/guild"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// GuildHandler serves the guild resource tree.
type GuildHandler struct {
	storage storage.Storage
	engine  *engine.Engine
	logger  *slog.Logger
}

func NewGuildHandler(storage storage.Storage, engine *engine.Engine, logger *slog.Logger) *GuildHandler {
	return &GuildHandler{
		storage: storage,
		engine:  engine,
		logger:  logger,
	}
}

// ServeHTTP routes guild requests.
// Routes:
// GET /v1/guilds/{id}                          - Read guild document
// PUT /v1/guilds/{id}                          - Replace guild document
// GET /v1/guilds/{id}/stores/{sid}             - Store view with live stock
// POST /v1/guilds/{id}/triggers/{tid}/fire     - Fire a trigger as a player
// POST /v1/guilds/{id}/attacks                 - Schedule an attack
// POST /v1/guilds/{id}/round/advance           - Advance the round
// POST /v1/guilds/{id}/round/reset             - Reset the game
func (h *GuildHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/guilds"), "/")
	segments := strings.Split(path, "/")
	if path == "" || segments[0] == "" {
		h.writeError(w, http.StatusBadRequest, "Guild ID is required")
		return
	}
	guildID := segments[0]

	switch {
	case len(segments) == 1:
		switch r.Method {
		case http.MethodGet:
			h.handleGet(w, r, guildID)
		case http.MethodPut:
			h.handlePut(w, r, guildID)
		default:
			h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, PUT")
		}

	case len(segments) == 3 && segments[1] == "stores":
		if r.Method != http.MethodGet {
			h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
			return
		}
		h.handleStoreView(w, r, guildID, segments[2])

	case len(segments) == 4 && segments[1] == "triggers" && segments[3] == "fire":
		if r.Method != http.MethodPost {
			h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
			return
		}
		h.handleFire(w, r, guildID, segments[2])

	case len(segments) == 2 && segments[1] == "attacks":
		if r.Method != http.MethodPost {
			h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
			return
		}
		h.handleAttack(w, r, guildID)

	case len(segments) == 3 && segments[1] == "round":
		if r.Method != http.MethodPost {
			h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
			return
		}
		h.handleRound(w, r, guildID, segments[2])

	default:
		h.writeError(w, http.StatusNotFound, "Unknown guild resource")
	}
}

func (h *GuildHandler) handleGet(w http.ResponseWriter, r *http.Request, guildID string) {
	rec, err := h.storage.LoadGuild(r.Context(), guildID)
	if err != nil {
		h.logger.Error("Failed to load guild", "guild_id", guildID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to load guild")
		return
	}
	if rec == nil {
		h.writeError(w, http.StatusNotFound, "Guild not found")
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

func (h *GuildHandler) handlePut(w http.ResponseWriter, r *http.Request, guildID string) {
	var rec guild.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		h.logger.Warn("Invalid guild document", "guild_id", guildID, "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid request body. Expected a guild document.")
		return
	}
	if rec.ID != "" && rec.ID != guildID {
		h.writeError(w, http.StatusBadRequest, "Guild ID in body does not match URL")
		return
	}
	rec.ID = guildID
	rec.Normalize()

	if err := h.storage.SaveGuild(r.Context(), &rec); err != nil {
		h.logger.Error("Failed to save guild", "guild_id", guildID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to save guild")
		return
	}
	h.logger.Info("Guild document replaced", "guild_id", guildID)
	h.writeJSON(w, http.StatusOK, &rec)
}

// StoreViewResponse is the read-only store projection with live stock.
type StoreViewResponse struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Listings []StoreViewListing `json:"listings"`
}

type StoreViewListing struct {
	ItemID   string `json:"item_id"`
	ItemName string `json:"item_name"`
	Price    int    `json:"price"`
	// Stock is -1 for unlimited listings.
	Stock        int `json:"stock"`
	MaxPerPlayer int `json:"max_per_player,omitempty"`
}

func (h *GuildHandler) handleStoreView(w http.ResponseWriter, r *http.Request, guildID, storeID string) {
	rec, err := h.storage.LoadGuild(r.Context(), guildID)
	if err != nil {
		h.logger.Error("Failed to load guild", "guild_id", guildID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to load guild")
		return
	}
	if rec == nil {
		h.writeError(w, http.StatusNotFound, "Guild not found")
		return
	}

	store, ok := rec.Stores[storeID]
	if !ok || store == nil {
		h.writeError(w, http.StatusNotFound, "Store not found")
		return
	}

	view := StoreViewResponse{
		ID:       store.ID,
		Name:     store.Name,
		Listings: make([]StoreViewListing, 0, len(store.Listings)),
	}
	for _, l := range store.Listings {
		if l == nil {
			continue
		}
		view.Listings = append(view.Listings, StoreViewListing{
			ItemID:       l.ItemID,
			ItemName:     rec.ItemName(l.ItemID),
			Price:        l.Price,
			Stock:        l.GetStock(),
			MaxPerPlayer: l.MaxPerPlayer,
		})
	}
	h.writeJSON(w, http.StatusOK, view)
}

func (h *GuildHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

func (h *GuildHandler) writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		h.logger.Error("Failed to encode error response", "error", err)
	}
}
