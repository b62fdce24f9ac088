package engine

import "context"

// Points is the points/stamina subsystem consumed by check_points and
// modify_points actions and point-balance conditions. Only the gating
// contract lives in this engine; regeneration is the collaborator's.
type Points interface {
	HasEnough(ctx context.Context, playerID string, amount int) (bool, error)
	Use(ctx context.Context, playerID string, amount int) error
	Get(ctx context.Context, playerID string) (int, error)
	Set(ctx context.Context, playerID string, amount int) error
}

// Movement is the map/movement subsystem consumed by move_player
// actions and can_move/at_location conditions.
type Movement interface {
	CanMove(ctx context.Context, playerID string) (bool, error)
	Move(ctx context.Context, playerID, destination string) error
	Location(ctx context.Context, playerID string) (string, error)
}

// Roles manages chat-platform role membership. CanManage reports
// whether the bot's own privilege rank can manage the target role.
type Roles interface {
	Has(ctx context.Context, playerID, roleID string) (bool, error)
	Grant(ctx context.Context, playerID, roleID string) error
	Revoke(ctx context.Context, playerID, roleID string) error
	CanManage(ctx context.Context, roleID string) (bool, error)
}

// Identity maps a participant id to a display name for rendering
// attribution in results. Failures degrade to a placeholder name.
type Identity interface {
	DisplayName(ctx context.Context, playerID string) (string, error)
}

// nopPoints, nopMovement and nopRoles are the defaults when no
// collaborator is wired: conditions on them evaluate permissively
// closed (no points, no movement, no roles).

type nopPoints struct{}

func (nopPoints) HasEnough(context.Context, string, int) (bool, error) { return false, nil }
func (nopPoints) Use(context.Context, string, int) error               { return nil }
func (nopPoints) Get(context.Context, string) (int, error)             { return 0, nil }
func (nopPoints) Set(context.Context, string, int) error               { return nil }

type nopMovement struct{}

func (nopMovement) CanMove(context.Context, string) (bool, error)    { return false, nil }
func (nopMovement) Move(context.Context, string, string) error       { return nil }
func (nopMovement) Location(context.Context, string) (string, error) { return "", nil }

type nopRoles struct{}

func (nopRoles) Has(context.Context, string, string) (bool, error) { return false, nil }
func (nopRoles) Grant(context.Context, string, string) error       { return nil }
func (nopRoles) Revoke(context.Context, string, string) error      { return nil }
func (nopRoles) CanManage(context.Context, string) (bool, error)   { return true, nil }

type nopIdentity struct{}

func (nopIdentity) DisplayName(_ context.Context, playerID string) (string, error) {
	return playerID, nil
}

// nameCache memoizes identity lookups for one unit of work. It is
// created per invocation and discarded with it; there is no ambient
// module-level cache to invalidate.
type nameCache struct {
	ctx      context.Context
	identity Identity
	names    map[string]string
}

const placeholderName = "someone"

func newNameCache(ctx context.Context, identity Identity) *nameCache {
	return &nameCache{
		ctx:      ctx,
		identity: identity,
		names:    make(map[string]string),
	}
}

func (c *nameCache) name(playerID string) string {
	if cached, ok := c.names[playerID]; ok {
		return cached
	}
	name, err := c.identity.DisplayName(c.ctx, playerID)
	if err != nil || name == "" {
		name = placeholderName
	}
	c.names[playerID] = name
	return name
}
