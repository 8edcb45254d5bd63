/*
contract.go - Contract model and status state machine

PURPOSE:
  A Contract ties one player to one team for a term measured in seasons.
  This file holds the pure data model, the derivations (end season, cap
  coverage per projection offset), and the status transitions.

STATUS STATE MACHINE:
  no-contract -> active:     new contract (length 1-10)
  active -> active:          extension (adds years, status unchanged)
  active -> rfa:             RFA tender (re-termed to the rules' RFA length,
                             starting next season)
  active -> amnestied:       amnesty (irreversible in the engine)
  active -> expired:         automatic at season rollover when the term is
                             exhausted

  Every transition passes resource-ledger eligibility first (ledger.go).
  Transition helpers here return a modified copy; they never write through
  to storage - the MutationService is the sole authority that persists a
  transition and decrements the matching counter.

LENGTH SEMANTICS:
  LengthYears == 0 means "no contract": the player sits on the roster as a
  free agent at a placeholder amount. A zero-length contract cannot be
  extended, tendered, or amnestied - only replaced by a new contract.
*/
package league

// =============================================================================
// CONTRACT STATUS
// =============================================================================

type ContractStatus string

const (
	// StatusNone marks a zero-length placeholder (player without a contract).
	StatusNone ContractStatus = "none"

	StatusActive    ContractStatus = "active"
	StatusExpired   ContractStatus = "expired"
	StatusAmnestied ContractStatus = "amnestied"
	StatusRFA       ContractStatus = "rfa"
)

// =============================================================================
// CONTRACT
// =============================================================================

// Contract belongs to exactly one (team, player) pair at a time.
type Contract struct {
	ID       string
	TeamID   TeamID
	PlayerID PlayerID

	// LengthYears is the base term. 0 means "no contract".
	LengthYears int

	// ExtensionYears adds to the base term. Additive, never replaces.
	ExtensionYears int

	StartSeason  Season
	AnnualAmount Money
	Status       ContractStatus
}

// EndSeason is the last season the contract covers.
func (c Contract) EndSeason() Season {
	return c.StartSeason + Season(c.LengthYears+c.ExtensionYears) - 1
}

func (c Contract) IsExtended() bool { return c.ExtensionYears > 0 }

// IsActive reports whether the contract has a live term. RFA tenders count
// as active for cap purposes.
func (c Contract) IsActive() bool {
	return c.LengthYears > 0 && (c.Status == StatusActive || c.Status == StatusRFA)
}

// TotalYears is the remaining term measured from the current season, base
// plus extension.
func (c Contract) TotalYears() int { return c.LengthYears + c.ExtensionYears }

// CoversOffset reports whether the contract counts against the cap at the
// given projection offset (0 = current season).
//
// Offset 0 always counts the current-season amount, including the
// zero-length placeholder for a not-yet-signed player. For offset > 0 the
// contract counts iff its total remaining term exceeds the offset; the
// term is measured relative to the current season, not to StartSeason.
// Amnestied contracts count at no offset: their cap relief runs from the
// amnesty season forward. Expired contracts count at no offset either.
func (c Contract) CoversOffset(offset int) bool {
	if c.Status == StatusAmnestied || c.Status == StatusExpired {
		return false
	}
	if offset == 0 {
		return true
	}
	return c.TotalYears() > offset
}

// =============================================================================
// STATE TRANSITIONS - pure copies, persisted only by the MutationService
// =============================================================================

// WithNewTerm starts a fresh contract on a zero-length placeholder.
// Refuses lengths outside [1, 10] and players who already hold an active
// contract.
func (c Contract) WithNewTerm(length int, season Season) (Contract, error) {
	if c.LengthYears != 0 {
		return c, ErrHasActiveContract
	}
	if length < NewContractMinLength || length > NewContractMaxLength {
		return c, &ContractLengthError{Length: length}
	}
	c.LengthYears = length
	c.ExtensionYears = 0
	c.StartSeason = season
	c.Status = StatusActive
	return c, nil
}

// Extended adds the rules' extension length to an active contract. The
// status self-loops on active.
func (c Contract) Extended(rules Rules) (Contract, error) {
	if c.LengthYears == 0 || c.Status != StatusActive {
		return c, ErrNoActiveContract
	}
	c.ExtensionYears += rules.ExtensionLength
	return c, nil
}

// Tendered converts an active contract into an RFA tender: status rfa,
// re-termed to the rules' RFA length starting next season.
func (c Contract) Tendered(rules Rules, currentSeason Season) (Contract, error) {
	if c.LengthYears == 0 || c.Status != StatusActive {
		return c, ErrNoActiveContract
	}
	c.Status = StatusRFA
	c.LengthYears = rules.RFALength
	c.ExtensionYears = 0
	c.StartSeason = currentSeason + 1
	return c, nil
}

// Amnestied releases the contract: it stops counting against the cap from
// the amnesty season forward. Irreversible inside the engine - the only
// path back is the commissioner tool invoking the inverse MutationService
// call.
func (c Contract) Amnestied() (Contract, error) {
	if c.Status == StatusAmnestied {
		return c, ErrAmnestyIrreversible
	}
	if c.LengthYears == 0 || c.Status != StatusActive {
		return c, ErrNoActiveContract
	}
	c.Status = StatusAmnestied
	return c, nil
}

// ExpireIfDone marks the contract expired when its term is exhausted as of
// the given season. Called at season rollover, never user-triggered.
func (c Contract) ExpireIfDone(season Season) Contract {
	if c.LengthYears == 0 || c.Status == StatusAmnestied || c.Status == StatusExpired {
		return c
	}
	if c.EndSeason() < season {
		c.Status = StatusExpired
	}
	return c
}
