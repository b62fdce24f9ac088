package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/guildforge/engine/pkg/guild"
	"github.com/guildforge/engine/pkg/trigger"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <guild.json>\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	validator := &GuildValidator{}

	if err := validator.validateFile(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Guild document is valid!")
}

type GuildValidator struct {
	errors []string
}

func (v *GuildValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	v.errors = nil

	if !json.Valid(data) {
		return fmt.Errorf("file %s contains invalid JSON", filename)
	}

	var rec guild.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("file %s failed JSON unmarshaling: %w", filename, err)
	}
	rec.Normalize()

	v.validateGuild(&rec)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}

	return nil
}

func (v *GuildValidator) validateGuild(rec *guild.Record) {
	v.validateRoundConfig(rec.Round)

	for storeID, store := range rec.Stores {
		v.validateStore(rec, storeID, store)
	}

	for triggerID, tr := range rec.Triggers {
		if tr == nil {
			v.addError(fmt.Sprintf("trigger %q is null", triggerID))
			continue
		}
		v.validateActions(rec, triggerID, tr.Actions, map[string]bool{})
	}

	for itemID := range rec.Round.DefaultItems {
		if _, ok := rec.Item(itemID); !ok {
			v.addError(fmt.Sprintf("default item %q does not exist in the item catalog", itemID))
		}
	}
}

func (v *GuildValidator) validateRoundConfig(rc guild.RoundConfig) {
	if rc.TotalRounds < 0 {
		v.addError("total_rounds must not be negative")
	}
	for name, p := range map[string]int{
		"round_one_probability":   rc.StartProbability,
		"mid_round_probability":   rc.MidProbability,
		"final_round_probability": rc.EndProbability,
	} {
		if p < 0 || p > 100 {
			v.addError(fmt.Sprintf("%s %d is out of range 0-100", name, p))
		}
	}
	if rc.StartingCurrency < 0 {
		v.addError("starting_currency must not be negative")
	}
}

func (v *GuildValidator) validateStore(rec *guild.Record, storeID string, store *guild.Store) {
	if store == nil {
		v.addError(fmt.Sprintf("store %q is null", storeID))
		return
	}
	for i, l := range store.Listings {
		if l == nil {
			v.addError(fmt.Sprintf("store %q listing %d is null", storeID, i))
			continue
		}
		if l.Price < 0 {
			v.addError(fmt.Sprintf("store %q listing %q has negative price", storeID, l.ItemID))
		}
		if _, ok := rec.Item(l.ItemID); !ok {
			v.addError(fmt.Sprintf("store %q sells unknown item %q", storeID, l.ItemID))
		}
	}
}

// validateActions walks an action list, descending into conditional
// branches and random outcomes. seen spans the whole trigger so that
// duplicate action IDs across nested lists are caught too.
func (v *GuildValidator) validateActions(rec *guild.Record, triggerID string, actions []trigger.Action, seen map[string]bool) {
	for _, a := range actions {
		ctx := fmt.Sprintf("trigger %q action %q", triggerID, a.ID)

		if a.ID != "" {
			if seen[a.ID] {
				v.addError(fmt.Sprintf("%s: duplicate action ID", ctx))
			}
			seen[a.ID] = true
		}

		switch a.Kind {
		case trigger.ActionDisplayText:
			if a.Text == "" {
				v.addError(fmt.Sprintf("%s: display_text without text", ctx))
			}

		case trigger.ActionGiveCurrency:
			if a.Amount == 0 {
				v.addError(fmt.Sprintf("%s: give_currency with zero amount", ctx))
			}

		case trigger.ActionGiveItem:
			if _, ok := rec.Item(a.ItemID); !ok {
				v.addError(fmt.Sprintf("%s: references unknown item %q", ctx, a.ItemID))
			}

		case trigger.ActionGiveRole, trigger.ActionRemoveRole:
			if a.RoleID == "" {
				v.addError(fmt.Sprintf("%s: role action without role_id", ctx))
			}

		case trigger.ActionFollowUpButton:
			if _, ok := rec.Triggers[a.TargetTriggerID]; !ok {
				v.addError(fmt.Sprintf("%s: button targets unknown trigger %q", ctx, a.TargetTriggerID))
			}

		case trigger.ActionConditional:
			if a.Branch == nil {
				v.addError(fmt.Sprintf("%s: conditional without branch", ctx))
				continue
			}
			v.validateActions(rec, triggerID, a.Branch.Then, seen)
			v.validateActions(rec, triggerID, a.Branch.Else, seen)

		case trigger.ActionRandomOutcome:
			if len(a.Outcomes) == 0 {
				v.addError(fmt.Sprintf("%s: random_outcome without outcomes", ctx))
			}
			for _, o := range a.Outcomes {
				if o.Weight < 0 {
					v.addError(fmt.Sprintf("%s: negative outcome weight", ctx))
				}
				v.validateActions(rec, triggerID, o.Actions, seen)
			}

		case trigger.ActionStoreDisplay, trigger.ActionBuyItem:
			if _, ok := rec.Stores[a.StoreID]; !ok {
				v.addError(fmt.Sprintf("%s: references unknown store %q", ctx, a.StoreID))
			}
			if a.Kind == trigger.ActionBuyItem {
				if _, ok := rec.Item(a.ItemID); !ok {
					v.addError(fmt.Sprintf("%s: buys unknown item %q", ctx, a.ItemID))
				}
			}

		case trigger.ActionCheckPoints, trigger.ActionModifyPoints, trigger.ActionMovePlayer, trigger.ActionCalculateResults:
			// No structural references to verify

		default:
			v.addError(fmt.Sprintf("%s: unknown action kind %q", ctx, a.Kind))
		}

		if a.Limit != nil {
			// Claims are matched by action ID, so a claimable limit
			// on an ID-less action could never be enforced.
			if a.Limit.Kind != trigger.LimitUnlimited && a.ID == "" {
				v.addError(fmt.Sprintf("%s: claimable limit requires an action ID", ctx))
			}
			switch a.Limit.Kind {
			case trigger.LimitUnlimited, trigger.LimitOncePerPlayer, trigger.LimitOnceGlobally:
			default:
				v.addError(fmt.Sprintf("%s: unknown limit kind %q", ctx, a.Limit.Kind))
			}
		}
	}
}

func (v *GuildValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}
