/*
rules.go - League configuration registry

PURPOSE:
  Rules is the complete league configuration: the salary-cap limit, contract
  length bounds, the terms applied by RFA tenders and extensions, and the
  per-season allotments of RFA / amnesty / extension credits.

KEY CONCEPTS:
  - Rules: Pure value holder; no behavior beyond validation
  - Allotments: How many credits each team gets per season
  - RolloverEvery: How many seasons pass before unused allotments reset

RULES ARE NOT POLICY LOGIC:
  The rules object never decides whether an action is allowed - that is the
  ledger's job (ledger.go). Rules only say what the numbers are.
*/
package league

// =============================================================================
// RULES - League configuration
// =============================================================================

// Rules holds the league configuration. All mutation goes through the
// MutationService (UpdateLeagueRules); engine code treats Rules as read-only.
type Rules struct {
	// CapLimit is the per-team per-season spending ceiling.
	CapLimit Money

	// MaxContractLength bounds new contract terms, in years. Valid range 1-20.
	MaxContractLength int

	// RFALength is the term, in years, of a tendered RFA contract.
	RFALength int

	// ExtensionLength is the number of years an extension adds.
	ExtensionLength int

	// TaxiSlots is the number of taxi-squad slots per roster.
	TaxiSlots int

	// Per-season action allotments.
	RFAAllowed       int
	ExtensionAllowed int
	AmnestyAllowed   int

	// RolloverEvery is the number of seasons after which unused allotments
	// reset to the full per-season amount.
	RolloverEvery int
}

// NewContractMinLength / NewContractMaxLength bound user-entered contract
// lengths. Out-of-range lengths are refused, never clamped: clamping would
// silently change the money/term tradeoff the user asked for.
const (
	NewContractMinLength = 1
	NewContractMaxLength = 10
)

// Validate checks structural invariants: every count is non-negative and
// the max contract length is at least one year.
func (r Rules) Validate() error {
	if r.MaxContractLength < 1 || r.MaxContractLength > 20 {
		return &RulesError{Field: "max_contract_length", Reason: "must be in [1, 20]"}
	}
	if r.CapLimit.IsNegative() {
		return &RulesError{Field: "cap_limit", Reason: "must not be negative"}
	}
	for field, v := range map[string]int{
		"rfa_length":        r.RFALength,
		"extension_length":  r.ExtensionLength,
		"taxi_slots":        r.TaxiSlots,
		"rfa_allowed":       r.RFAAllowed,
		"extension_allowed": r.ExtensionAllowed,
		"amnesty_allowed":   r.AmnestyAllowed,
		"rollover_every":    r.RolloverEvery,
	} {
		if v < 0 {
			return &RulesError{Field: field, Reason: "must not be negative"}
		}
	}
	return nil
}

// DefaultRules returns the standard league configuration: a 260 cap,
// ten-year max contracts, one-year RFA tenders, two-year extensions, and
// one credit of each kind per season.
func DefaultRules() Rules {
	return Rules{
		CapLimit:          NewMoney(260),
		MaxContractLength: 10,
		RFALength:         1,
		ExtensionLength:   2,
		TaxiSlots:         4,
		RFAAllowed:        1,
		ExtensionAllowed:  1,
		AmnestyAllowed:    1,
		RolloverEvery:     1,
	}
}

// RulesUpdate carries a partial rules edit. Nil fields keep the current
// value; the MutationService validates the merged result before persisting.
type RulesUpdate struct {
	CapLimit          *int64
	MaxContractLength *int
	RFALength         *int
	ExtensionLength   *int
	TaxiSlots         *int
	RFAAllowed        *int
	ExtensionAllowed  *int
	AmnestyAllowed    *int
	RolloverEvery     *int
}

// Apply merges the update into a copy of r.
func (u RulesUpdate) Apply(r Rules) Rules {
	if u.CapLimit != nil {
		r.CapLimit = NewMoney(*u.CapLimit)
	}
	if u.MaxContractLength != nil {
		r.MaxContractLength = *u.MaxContractLength
	}
	if u.RFALength != nil {
		r.RFALength = *u.RFALength
	}
	if u.ExtensionLength != nil {
		r.ExtensionLength = *u.ExtensionLength
	}
	if u.TaxiSlots != nil {
		r.TaxiSlots = *u.TaxiSlots
	}
	if u.RFAAllowed != nil {
		r.RFAAllowed = *u.RFAAllowed
	}
	if u.ExtensionAllowed != nil {
		r.ExtensionAllowed = *u.ExtensionAllowed
	}
	if u.AmnestyAllowed != nil {
		r.AmnestyAllowed = *u.AmnestyAllowed
	}
	if u.RolloverEvery != nil {
		r.RolloverEvery = *u.RolloverEvery
	}
	return r
}
