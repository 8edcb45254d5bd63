/*
reconcile.go - Set-diff reconciliation of commissioner edits

ALGORITHM (per team, independently):
  1. Key every action by (kind, playerID, contractLength) - structural keys
  2. removed = original - current, added = current - original
  3. Emit one remove per removed action BEFORE any add: removing an action
     refunds its credit, and the same batch may spend that freed credit
     (remove amnesty on A, add amnesty on B)
  4. Emit one add per added action

  Teams do not share resource counters, so cross-team order carries no
  semantics; teams and ops are sorted only to keep replays reproducible.

NOT ATOMIC:
  The MutationService has no multi-action transaction. If op i fails, ops
  before i stand and the remainder of the batch is abandoned; the caller
  gets a PartialBatchError and re-runs reconciliation, whose fresh diff
  emits only what is still missing. Reconcile(x, x) is always empty, which
  is what makes the re-drive safe.
*/
package commish

import (
	"context"
	"sort"

	"github.com/warp/cap-engine/league"
)

// =============================================================================
// PLAN - pure diff
// =============================================================================

// Plan computes the operations that move original to current. Removals for
// a team always precede that team's additions. The result is
// deterministic: teams sorted by ID, ops sorted by key within each phase.
func Plan(original, current map[league.TeamID][]PendingAction) []Op {
	teamIDs := make(map[league.TeamID]struct{})
	for id := range original {
		teamIDs[id] = struct{}{}
	}
	for id := range current {
		teamIDs[id] = struct{}{}
	}

	sorted := make([]league.TeamID, 0, len(teamIDs))
	for id := range teamIDs {
		sorted = append(sorted, id)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var ops []Op
	for _, teamID := range sorted {
		ops = append(ops, planTeam(teamID, original[teamID], current[teamID])...)
	}
	return ops
}

func planTeam(teamID league.TeamID, original, current []PendingAction) []Op {
	origSet := keySet(original)
	currSet := keySet(current)

	var removed, added []PendingAction
	for key, action := range origSet {
		if _, ok := currSet[key]; !ok {
			removed = append(removed, action)
		}
	}
	for key, action := range currSet {
		if _, ok := origSet[key]; !ok {
			added = append(added, action)
		}
	}
	sortActions(removed)
	sortActions(added)

	ops := make([]Op, 0, len(removed)+len(added))
	for _, a := range removed {
		a.TeamID = teamID
		ops = append(ops, Op{Direction: OpRemove, TeamID: teamID, Action: a})
	}
	for _, a := range added {
		a.TeamID = teamID
		ops = append(ops, Op{Direction: OpAdd, TeamID: teamID, Action: a})
	}
	return ops
}

// keySet collapses a slice to its identity set. Duplicate keys within one
// side collapse to a single entry, which is what makes remove-then-re-add
// of the identical action a no-op in the diff.
func keySet(actions []PendingAction) map[ActionKey]PendingAction {
	set := make(map[ActionKey]PendingAction, len(actions))
	for _, a := range actions {
		set[a.Key()] = a
	}
	return set
}

func sortActions(actions []PendingAction) {
	sort.Slice(actions, func(i, j int) bool {
		a, b := actions[i].Key(), actions[j].Key()
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.PlayerID != b.PlayerID {
			return a.PlayerID < b.PlayerID
		}
		return a.ContractLength < b.ContractLength
	})
}

// =============================================================================
// RECONCILE - drive the mutation service
// =============================================================================

// Result reports a fully applied batch.
type Result struct {
	Applied []Op
}

// Reconcile validates the edited set, plans the diff, and applies it
// sequentially through the MutationService. Each call is awaited before
// the next is issued, preserving the remove-before-add credit ordering.
//
// On the first failed call the remainder of the batch is abandoned and a
// *PartialBatchError is returned; already-applied operations stand. A
// clean re-run against refreshed original state emits only the remaining
// delta.
func Reconcile(ctx context.Context, svc league.MutationService, leagueID league.LeagueID,
	original, current map[league.TeamID][]PendingAction) (*Result, error) {

	// Validation never reaches the service: a malformed edit fails the
	// whole batch before any network call.
	for teamID, actions := range current {
		for _, a := range actions {
			if err := a.Validate(); err != nil {
				return nil, &league.EligibilityError{
					TeamID: teamID, PlayerID: a.PlayerID,
					Action: string(a.Kind), Cause: err,
				}
			}
		}
	}

	plan := Plan(original, current)
	applied := make([]Op, 0, len(plan))

	for _, op := range plan {
		var err error
		length := 0
		if op.Action.Kind == league.ActionContract {
			length = op.Action.ContractLength
		}
		switch op.Direction {
		case OpRemove:
			err = svc.RemoveCommissionerAction(ctx, leagueID, op.TeamID, op.Action.PlayerID, op.Action.Kind, length)
		case OpAdd:
			err = svc.AddCommissionerAction(ctx, leagueID, op.TeamID, op.Action.PlayerID, op.Action.Kind, length)
		}
		if err != nil {
			return nil, &PartialBatchError{Applied: applied, Failed: op, Err: err}
		}
		applied = append(applied, op)
	}

	return &Result{Applied: applied}, nil
}
