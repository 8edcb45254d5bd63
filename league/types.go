/*
Package league provides the core contract & salary-cap engine.

PURPOSE:
  This package contains the domain types and algorithms for tracking player
  contracts against a per-season salary cap: the contract model, the
  multi-year cap projection, and the resource ledger that governs how many
  RFA / amnesty / extension actions a team may use per season.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A currency amount backed by decimal.Decimal
  - TeamID / PlayerID / LeagueID: Type-safe identifiers
  - Player / Position: Immutable player identity
  - Season: An absolute season year (e.g. 2026); offsets are relative

DESIGN PRINCIPLES:
  1. Precision: Money uses decimal.Decimal, never float64
  2. Type Safety: Strong typing for IDs prevents mixing team/player IDs
  3. Read-only snapshots: projections never mutate the inputs
  4. Single write path: all mutation goes through the MutationService

SEE ALSO:
  - rules.go: League configuration (cap limit, allotments)
  - contract.go: Contract model and status state machine
  - projection.go: Multi-season cap projection
  - ledger.go: Resource counters and eligibility
*/
package league

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Currency amount (cap dollars)
// =============================================================================

// Money is a currency amount in league cap units. Amounts entering the
// engine are non-negative integers; decimal arithmetic keeps averages and
// remainders exact.
type Money struct {
	Value decimal.Decimal
}

func NewMoney(value int64) Money {
	return Money{Value: decimal.NewFromInt(value)}
}

func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Value: d}
}

func ZeroMoney() Money { return Money{Value: decimal.Zero} }

func (m Money) Add(o Money) Money           { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money           { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) Div(n decimal.Decimal) Money { return Money{Value: m.Value.Div(n)} }
func (m Money) Neg() Money                  { return Money{Value: m.Value.Neg()} }
func (m Money) IsZero() bool                { return m.Value.IsZero() }
func (m Money) IsNegative() bool            { return m.Value.IsNegative() }
func (m Money) IsPositive() bool            { return m.Value.IsPositive() }
func (m Money) GreaterThan(o Money) bool    { return m.Value.GreaterThan(o.Value) }
func (m Money) LessThan(o Money) bool       { return m.Value.LessThan(o.Value) }
func (m Money) Equal(o Money) bool          { return m.Value.Equal(o.Value) }
func (m Money) Float64() float64            { f, _ := m.Value.Float64(); return f }
func (m Money) String() string              { return m.Value.String() }

// =============================================================================
// IDENTIFIERS
// =============================================================================

type LeagueID string
type TeamID string
type PlayerID string

// Season is an absolute season year. Projection offsets are relative to the
// league's current season (offset 0).
type Season int

// =============================================================================
// PLAYER - Immutable identity
// =============================================================================

type Position string

const (
	PositionQB  Position = "QB"
	PositionRB  Position = "RB"
	PositionWR  Position = "WR"
	PositionTE  Position = "TE"
	PositionK   Position = "K"
	PositionDEF Position = "DEF"
)

// positionRank orders positions for roster display. Unknown positions are
// valid and sort last.
var positionRank = map[Position]int{
	PositionQB:  0,
	PositionRB:  1,
	PositionWR:  2,
	PositionTE:  3,
	PositionK:   4,
	PositionDEF: 5,
}

// SortRank returns the display ordering for this position. Positions not in
// the enumerated set rank after every known position.
func (p Position) SortRank() int {
	if r, ok := positionRank[p]; ok {
		return r
	}
	return len(positionRank)
}

// Player identity is immutable; contracts reference players by ID.
type Player struct {
	ID       PlayerID
	Name     string
	Position Position
}

// =============================================================================
// TEAM INFO
// =============================================================================

// TeamInfo is the roster-level view handed back by the data provider.
type TeamInfo struct {
	ID      TeamID
	Name    string
	OwnerID string
	Players []Player
}
