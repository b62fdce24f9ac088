package inventory

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntry_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name       string
		data       string
		wantQty    int
		wantUsable int
		wantLegacy bool
	}{
		{
			name:       "legacy scalar shape",
			data:       `3`,
			wantQty:    3,
			wantUsable: 0,
			wantLegacy: true,
		},
		{
			name:       "structured shape",
			data:       `{"quantity":5,"usableAttacksAvailable":2}`,
			wantQty:    5,
			wantUsable: 2,
			wantLegacy: false,
		},
		{
			name:       "structured shape clamps usable to quantity",
			data:       `{"quantity":2,"usableAttacksAvailable":9}`,
			wantQty:    2,
			wantUsable: 2,
			wantLegacy: false,
		},
		{
			name:       "legacy zero",
			data:       `0`,
			wantQty:    0,
			wantUsable: 0,
			wantLegacy: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e Entry
			require.NoError(t, json.Unmarshal([]byte(tt.data), &e))
			assert.Equal(t, tt.wantQty, e.Quantity)
			assert.Equal(t, tt.wantUsable, e.UsableAttacks)
			assert.Equal(t, tt.wantLegacy, e.IsLegacy())
		})
	}
}

func TestEntry_MarshalAlwaysStructured(t *testing.T) {
	var e Entry
	require.NoError(t, json.Unmarshal([]byte(`4`), &e))

	out, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"quantity":4,"usableAttacksAvailable":0}`, string(out))
}

func TestInventory_Set(t *testing.T) {
	inv := Inventory{}

	inv.Set("sword", 3, 5)
	assert.Equal(t, 3, inv.Quantity("sword"))
	assert.Equal(t, 3, inv.UsableAttacks("sword"), "usable clamps to quantity")

	inv.Set("sword", 3, -1)
	assert.Equal(t, 0, inv.UsableAttacks("sword"))

	inv.Set("sword", 0, 0)
	_, ok := inv["sword"]
	assert.False(t, ok, "zero quantity removes the entry")
}

func TestInventory_Grant(t *testing.T) {
	inv := Inventory{}

	inv.Grant("rock", 2, false)
	assert.Equal(t, 2, inv.Quantity("rock"))
	assert.Equal(t, 0, inv.UsableAttacks("rock"))

	inv.Grant("sword", 2, true)
	inv.Grant("sword", 1, true)
	assert.Equal(t, 3, inv.Quantity("sword"))
	assert.Equal(t, 3, inv.UsableAttacks("sword"))
}

func TestInventory_Migrate(t *testing.T) {
	raw := `{"sword":2,"rock":5,"shield":{"quantity":1,"usableAttacksAvailable":0}}`
	var inv Inventory
	require.NoError(t, json.Unmarshal([]byte(raw), &inv))

	isCombat := func(itemID string) bool { return itemID == "sword" }

	changed := inv.Migrate(isCombat)
	assert.True(t, changed)
	assert.Equal(t, Entry{Quantity: 2, UsableAttacks: 2}, inv["sword"])
	assert.Equal(t, Entry{Quantity: 5, UsableAttacks: 0}, inv["rock"])
	assert.Equal(t, Entry{Quantity: 1, UsableAttacks: 0}, inv["shield"])

	// Second run is a no-op
	changed = inv.Migrate(isCombat)
	assert.False(t, changed)
	assert.Equal(t, Entry{Quantity: 2, UsableAttacks: 2}, inv["sword"])
}

func TestInventory_MigrateRoundTrip(t *testing.T) {
	// A migrated inventory re-serialized and re-parsed stays stable.
	var inv Inventory
	require.NoError(t, json.Unmarshal([]byte(`{"sword":2}`), &inv))
	inv.Migrate(func(string) bool { return true })

	out, err := json.Marshal(inv)
	require.NoError(t, err)

	var again Inventory
	require.NoError(t, json.Unmarshal(out, &again))
	assert.False(t, again.Migrate(func(string) bool { return true }))
	assert.Equal(t, inv, again)
}
