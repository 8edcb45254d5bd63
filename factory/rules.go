/*
Package factory converts JSON league-rules documents into league.Rules.

PURPOSE:
  League configuration arrives as JSON (admin endpoint, seed files). This
  package parses it, fills defaults for omitted fields, and validates the
  result before it reaches the engine.

FORMAT:
  {
    "cap_limit": 260,
    "max_contract_length": 10,
    "rfa_length": 1,
    "extension_length": 2,
    "taxi_slots": 4,
    "rfa_allowed": 1,
    "extension_allowed": 1,
    "amnesty_allowed": 1,
    "rollover_every": 1
  }

  Omitted fields take the DefaultRules value.
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/warp/cap-engine/league"
)

// RulesJSON is the wire form of league rules. Pointer fields distinguish
// "omitted" from "zero".
type RulesJSON struct {
	CapLimit          *int64 `json:"cap_limit,omitempty"`
	MaxContractLength *int   `json:"max_contract_length,omitempty"`
	RFALength         *int   `json:"rfa_length,omitempty"`
	ExtensionLength   *int   `json:"extension_length,omitempty"`
	TaxiSlots         *int   `json:"taxi_slots,omitempty"`
	RFAAllowed        *int   `json:"rfa_allowed,omitempty"`
	ExtensionAllowed  *int   `json:"extension_allowed,omitempty"`
	AmnestyAllowed    *int   `json:"amnesty_allowed,omitempty"`
	RolloverEvery     *int   `json:"rollover_every,omitempty"`
}

// ToUpdate converts the wire form into the engine's partial update.
func (j RulesJSON) ToUpdate() league.RulesUpdate {
	return league.RulesUpdate{
		CapLimit:          j.CapLimit,
		MaxContractLength: j.MaxContractLength,
		RFALength:         j.RFALength,
		ExtensionLength:   j.ExtensionLength,
		TaxiSlots:         j.TaxiSlots,
		RFAAllowed:        j.RFAAllowed,
		ExtensionAllowed:  j.ExtensionAllowed,
		AmnestyAllowed:    j.AmnestyAllowed,
		RolloverEvery:     j.RolloverEvery,
	}
}

// ParseRules parses a JSON document into complete rules, defaulting
// omitted fields and validating the result.
func ParseRules(data []byte) (league.Rules, error) {
	var j RulesJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return league.Rules{}, fmt.Errorf("invalid rules json: %w", err)
	}
	rules := j.ToUpdate().Apply(league.DefaultRules())
	if err := rules.Validate(); err != nil {
		return league.Rules{}, err
	}
	return rules, nil
}

// FromRules renders rules back into the wire form.
func FromRules(r league.Rules) RulesJSON {
	capLimit := r.CapLimit.Value.IntPart()
	return RulesJSON{
		CapLimit:          &capLimit,
		MaxContractLength: &r.MaxContractLength,
		RFALength:         &r.RFALength,
		ExtensionLength:   &r.ExtensionLength,
		TaxiSlots:         &r.TaxiSlots,
		RFAAllowed:        &r.RFAAllowed,
		ExtensionAllowed:  &r.ExtensionAllowed,
		AmnestyAllowed:    &r.AmnestyAllowed,
		RolloverEvery:     &r.RolloverEvery,
	}
}
