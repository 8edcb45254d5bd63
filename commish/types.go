/*
Package commish implements the commissioner batch-edit reconciler.

PURPOSE:
  A commissioner stages add/remove edits of pending actions across every
  team, then commits them as one logical batch against a MutationService
  that only exposes single-action calls. This package computes the
  symmetric difference between the original and edited action sets and
  drives the service: removals first, then additions.

KEY CONCEPTS IN THIS FILE (types.go):
  - PendingAction: One staged action (tagged by league.ActionKind;
    ContractLength meaningful only for contract actions)
  - ActionKey: Structural identity - a comparable struct, not a formatted
    string, so player IDs containing separator characters cannot collide
  - Op / OpDirection: One emitted add or remove call
  - PartialBatchError: Reported when a batch stops mid-flight

IDENTITY:
  Two actions are the same iff (type, playerID, contractLength) match,
  with contractLength participating only for contract actions. Changing a
  contract's length is therefore remove-old + add-new - there is no
  modify operation.

SEE ALSO:
  - reconcile.go: The diff/apply algorithm
*/
package commish

import (
	"fmt"

	"github.com/warp/cap-engine/league"
)

// =============================================================================
// PENDING ACTION
// =============================================================================

// PendingAction is one staged commissioner edit for a team.
type PendingAction struct {
	TeamID   league.TeamID
	PlayerID league.PlayerID
	Kind     league.ActionKind

	// ContractLength is meaningful only when Kind == ActionContract.
	ContractLength int
}

// Key returns the action's structural identity. ContractLength is zeroed
// for non-contract kinds so that, e.g., two RFA entries for the same
// player always collapse to one key.
func (a PendingAction) Key() ActionKey {
	k := ActionKey{Kind: a.Kind, PlayerID: a.PlayerID}
	if a.Kind == league.ActionContract {
		k.ContractLength = a.ContractLength
	}
	return k
}

// Validate rejects malformed actions before they enter a diff.
func (a PendingAction) Validate() error {
	if !league.ValidKind(a.Kind) {
		return fmt.Errorf("unknown action kind %q", a.Kind)
	}
	if a.PlayerID == "" {
		return fmt.Errorf("pending action missing player id")
	}
	if a.Kind == league.ActionContract {
		if a.ContractLength < league.NewContractMinLength || a.ContractLength > league.NewContractMaxLength {
			return &league.ContractLengthError{Length: a.ContractLength}
		}
	}
	return nil
}

// ActionKey is the comparable identity used for set difference.
type ActionKey struct {
	Kind           league.ActionKind
	PlayerID       league.PlayerID
	ContractLength int
}

// =============================================================================
// OPERATIONS
// =============================================================================

type OpDirection string

const (
	OpRemove OpDirection = "remove"
	OpAdd    OpDirection = "add"
)

// Op is one single-action MutationService call emitted by a plan.
type Op struct {
	Direction OpDirection
	TeamID    league.TeamID
	Action    PendingAction
}

func (o Op) String() string {
	return fmt.Sprintf("%s %s:%s team=%s", o.Direction, o.Action.Kind, o.Action.PlayerID, o.TeamID)
}

// =============================================================================
// PARTIAL BATCH FAILURE
// =============================================================================

// PartialBatchError reports a batch that stopped at a failed operation.
// Everything in Applied has already taken effect and is NOT rolled back;
// the commissioner's edited set is left as-is, so re-running
// reconciliation diffs against the partially-mutated state and emits only
// the remaining delta.
type PartialBatchError struct {
	Applied []Op
	Failed  Op
	Err     error
}

func (e *PartialBatchError) Error() string {
	return fmt.Sprintf("reconciliation stopped at %s after %d applied ops: %v",
		e.Failed, len(e.Applied), e.Err)
}

func (e *PartialBatchError) Unwrap() error { return e.Err }
