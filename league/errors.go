/*
errors.go - Centralized error types for the cap engine

PURPOSE:
  All error types in one place. The taxonomy has three tiers:

  1. Validation errors - caught locally, BEFORE any MutationService call.
     A request that fails validation never leaves the process.
  2. Mutation failures - the MutationService rejected the action or the
     call itself failed. Surfaced with the service-provided message when
     present, generic fallback otherwise.
  3. Partial batch failures - commish.PartialBatchError (see commish
     package): one operation in a reconciliation batch failed; prior
     operations remain applied.

PROPAGATION:
  No automatic retry, no silent suppression. A failed single action leaves
  all local state unchanged and is safe to retry.

USAGE:
  if league.IsValidation(err) {
      // 400-class: caller input problem, nothing was sent upstream
  }
*/
package league

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrContractLengthOutOfBounds is returned when a new-contract length is
	// outside [1, 10]. The engine refuses rather than clamps.
	ErrContractLengthOutOfBounds = errors.New("contract length out of bounds")

	// ErrNoActiveContract is returned when an RFA / amnesty / extension is
	// attempted on a player without an active contract.
	ErrNoActiveContract = errors.New("player has no active contract")

	// ErrHasActiveContract is returned when a new contract is attempted for
	// a player who already has one.
	ErrHasActiveContract = errors.New("player already has an active contract")

	// ErrResourceExhausted is returned when the relevant per-season counter
	// is zero.
	ErrResourceExhausted = errors.New("resource counter exhausted")

	// ErrTeamNotFound / ErrPlayerNotFound / ErrLeagueNotFound are returned
	// when a referenced record does not exist.
	ErrTeamNotFound   = errors.New("team not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrLeagueNotFound = errors.New("league not found")

	// ErrContractNotFound is returned when removing or mutating a contract
	// that is not on the roster.
	ErrContractNotFound = errors.New("contract not found")

	// ErrAmnestyIrreversible is returned on any attempt to transition an
	// amnestied contract back to active inside the engine.
	ErrAmnestyIrreversible = errors.New("amnesty cannot be reversed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// RulesError reports an invalid league-rules field.
type RulesError struct {
	Field  string
	Reason string
}

func (e *RulesError) Error() string {
	return fmt.Sprintf("invalid rules: %s %s", e.Field, e.Reason)
}

// ContractLengthError reports a refused new-contract length.
type ContractLengthError struct {
	Length int
}

func (e *ContractLengthError) Error() string {
	return fmt.Sprintf("contract length %d not in [%d, %d]",
		e.Length, NewContractMinLength, NewContractMaxLength)
}

func (e *ContractLengthError) Unwrap() error { return ErrContractLengthOutOfBounds }

// EligibilityError reports why an action was refused by the resource ledger.
type EligibilityError struct {
	TeamID   TeamID
	PlayerID PlayerID
	Action   string
	Cause    error
}

func (e *EligibilityError) Error() string {
	return fmt.Sprintf("%s not allowed for team %s player %s: %v",
		e.Action, e.TeamID, e.PlayerID, e.Cause)
}

func (e *EligibilityError) Unwrap() error { return e.Cause }

// MutationError wraps a MutationService failure with the service message
// when one was provided.
type MutationError struct {
	Op      string
	Message string
	Err     error
}

func (e *MutationError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s failed", e.Op)
}

func (e *MutationError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidation reports whether err is a local validation error that was
// (or must be) caught before any MutationService call.
func IsValidation(err error) bool {
	var re *RulesError
	return errors.Is(err, ErrContractLengthOutOfBounds) ||
		errors.Is(err, ErrNoActiveContract) ||
		errors.Is(err, ErrHasActiveContract) ||
		errors.Is(err, ErrResourceExhausted) ||
		errors.Is(err, ErrAmnestyIrreversible) ||
		errors.As(err, &re)
}

// IsNotFound reports whether err indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTeamNotFound) ||
		errors.Is(err, ErrPlayerNotFound) ||
		errors.Is(err, ErrLeagueNotFound) ||
		errors.Is(err, ErrContractNotFound)
}
