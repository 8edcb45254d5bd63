/*
ledger.go - Resource counters and action eligibility

PURPOSE:
  Each team holds a per-season budget of RFA, amnesty, and extension
  credits. The ledger answers "may this team take this action right now?"
  It is a read-only snapshot: the MutationService is the sole authority
  that decrements a counter, and only on a confirmed action.

CRITICAL INVARIANTS:
  1. Counters are bounded below at 0 and never decremented speculatively.
  2. Eligibility = counter > 0, plus the contract-side precondition:
     RFA / amnesty / extension need an active contract; a new contract
     needs the inverse (no contract).
  3. After every successful mutation the caller refreshes its snapshot -
     local counter arithmetic is never trusted as ground truth.

ROLLOVER:
  Unused allotments reset every Rules.RolloverEvery seasons (see
  Counters.Rollover), applied at season boundaries by the store.
*/
package league

// =============================================================================
// COUNTERS - Per team, per season
// =============================================================================

// Counters is a team's remaining action budget for one season.
type Counters struct {
	TeamID        TeamID
	Season        Season
	RFALeft       int
	AmnestyLeft   int
	ExtensionLeft int
}

// NewCounters returns a full allotment per the league rules.
func NewCounters(teamID TeamID, season Season, rules Rules) Counters {
	return Counters{
		TeamID:        teamID,
		Season:        season,
		RFALeft:       rules.RFAAllowed,
		AmnestyLeft:   rules.AmnestyAllowed,
		ExtensionLeft: rules.ExtensionAllowed,
	}
}

func (c Counters) CanRFA() bool     { return c.RFALeft > 0 }
func (c Counters) CanAmnesty() bool { return c.AmnestyLeft > 0 }
func (c Counters) CanExtend() bool  { return c.ExtensionLeft > 0 }

// Rollover advances the counters to a new season. Resets are anchored to
// absolute season numbers divisible by RolloverEvery, so stepping one
// season at a time and jumping several seasons land on the same reset
// points. With RolloverEvery of zero or one the allotment resets every
// season.
func (c Counters) Rollover(to Season, rules Rules) Counters {
	if to <= c.Season {
		return c
	}
	every := rules.RolloverEvery
	if every < 1 {
		every = 1
	}
	next := c
	next.Season = to
	if int(to)%every == 0 {
		next.RFALeft = rules.RFAAllowed
		next.AmnestyLeft = rules.AmnestyAllowed
		next.ExtensionLeft = rules.ExtensionAllowed
	}
	return next
}

// =============================================================================
// ACTION KINDS
// =============================================================================

// ActionKind enumerates the roster actions governed by the ledger.
type ActionKind string

const (
	ActionContract  ActionKind = "contract"
	ActionRFA       ActionKind = "rfa"
	ActionAmnesty   ActionKind = "amnesty"
	ActionExtension ActionKind = "extension"
)

// ValidKind reports whether k names a known action kind.
func ValidKind(k ActionKind) bool {
	switch k {
	case ActionContract, ActionRFA, ActionAmnesty, ActionExtension:
		return true
	}
	return false
}

// =============================================================================
// ELIGIBILITY
// =============================================================================

// ValidateAction checks whether an action may be submitted at all. This
// runs BEFORE any MutationService call; a request failing here never
// reaches the network. contractLength is only meaningful for
// ActionContract.
func ValidateAction(kind ActionKind, contract Contract, counters Counters, length int) error {
	switch kind {
	case ActionContract:
		if contract.LengthYears != 0 {
			return &EligibilityError{
				TeamID: contract.TeamID, PlayerID: contract.PlayerID,
				Action: string(kind), Cause: ErrHasActiveContract,
			}
		}
		if length < NewContractMinLength || length > NewContractMaxLength {
			return &ContractLengthError{Length: length}
		}
		return nil

	case ActionRFA:
		if !counters.CanRFA() {
			return exhausted(kind, contract)
		}
	case ActionAmnesty:
		if !counters.CanAmnesty() {
			return exhausted(kind, contract)
		}
	case ActionExtension:
		if !counters.CanExtend() {
			return exhausted(kind, contract)
		}
	default:
		return &EligibilityError{
			TeamID: contract.TeamID, PlayerID: contract.PlayerID,
			Action: string(kind), Cause: ErrNoActiveContract,
		}
	}

	// RFA / amnesty / extension all require a live contract.
	if contract.LengthYears == 0 || contract.Status != StatusActive {
		return &EligibilityError{
			TeamID: contract.TeamID, PlayerID: contract.PlayerID,
			Action: string(kind), Cause: ErrNoActiveContract,
		}
	}
	return nil
}

func exhausted(kind ActionKind, c Contract) error {
	return &EligibilityError{
		TeamID: c.TeamID, PlayerID: c.PlayerID,
		Action: string(kind), Cause: ErrResourceExhausted,
	}
}

// Spend returns counters with the credit for kind consumed. Called only by
// MutationService implementations after the action is confirmed; engine
// callers never invoke it on their local snapshot.
func (c Counters) Spend(kind ActionKind) (Counters, error) {
	switch kind {
	case ActionRFA:
		if c.RFALeft <= 0 {
			return c, ErrResourceExhausted
		}
		c.RFALeft--
	case ActionAmnesty:
		if c.AmnestyLeft <= 0 {
			return c, ErrResourceExhausted
		}
		c.AmnestyLeft--
	case ActionExtension:
		if c.ExtensionLeft <= 0 {
			return c, ErrResourceExhausted
		}
		c.ExtensionLeft--
	case ActionContract:
		// New contracts spend cap space, not a counter.
	}
	return c, nil
}

// Refund returns counters with the credit for kind restored. Used when a
// commissioner removes a previously applied action; the freed credit may
// be reused later in the same batch.
func (c Counters) Refund(kind ActionKind) Counters {
	switch kind {
	case ActionRFA:
		c.RFALeft++
	case ActionAmnesty:
		c.AmnestyLeft++
	case ActionExtension:
		c.ExtensionLeft++
	case ActionContract:
	}
	return c
}
