/*
projection.go - Multi-season cap projection

PURPOSE:
  Computes cap consumption per season for a roster of contracts, one
  snapshot per season offset 0..horizon inclusive (offset 0 = current
  season). Also produces the league-average series used for comparison.

ALGORITHM:
  For each offset k, sum AnnualAmount over contracts where
  Contract.CoversOffset(k) holds:
    - k == 0 always counts, even for a zero-length placeholder
    - k > 0 counts iff lengthYears + extensionYears > k
      (total remaining term, measured from the current season)
    - amnestied contracts count at no offset

NUMERIC SEMANTICS:
  Amounts are non-negative integers carried as decimals; the engine
  introduces no rounding. League averages divide with decimal semantics.

OVER-CAP vs NEAR-CAP:
  CapRemaining may go negative - over-cap is representable, never clamped.
  OverCap (remaining <= 0) and NearCap (>= 88% utilization) are distinct
  signals; callers must not conflate them.
*/
package league

import (
	"github.com/shopspring/decimal"
)

// DefaultHorizon is the system-wide projection horizon: season 0 plus four
// future seasons.
const DefaultHorizon = 4

// nearCapThreshold is the utilization fraction at which a team is warned.
var nearCapThreshold = decimal.RequireFromString("0.88")

// =============================================================================
// SEASON CAP SNAPSHOT
// =============================================================================

// SeasonCapSnapshot is the computed cap state for one team in one projected
// season.
type SeasonCapSnapshot struct {
	Season       Season
	Offset       int
	CapUsed      Money
	CapRemaining Money
}

// OverCap reports the hard condition: nothing left to spend.
func (s SeasonCapSnapshot) OverCap() bool {
	return s.CapRemaining.IsNegative() || s.CapRemaining.IsZero()
}

// NearCap reports the soft warning: utilization at or above 88% of the
// limit. An over-cap team is also near-cap.
func (s SeasonCapSnapshot) NearCap() bool {
	limit := s.CapUsed.Add(s.CapRemaining)
	if limit.IsZero() || limit.IsNegative() {
		return s.CapUsed.IsPositive()
	}
	util := s.CapUsed.Value.Div(limit.Value)
	return util.GreaterThanOrEqual(nearCapThreshold)
}

// =============================================================================
// PROJECTION
// =============================================================================

// ProjectTeam computes one snapshot per offset 0..horizon inclusive for a
// team's contracts. A team with no contracts projects all-zero usage.
func ProjectTeam(contracts []Contract, rules Rules, currentSeason Season, horizon int) []SeasonCapSnapshot {
	if horizon < 0 {
		horizon = 0
	}
	out := make([]SeasonCapSnapshot, 0, horizon+1)
	for k := 0; k <= horizon; k++ {
		used := ZeroMoney()
		for _, c := range contracts {
			if c.CoversOffset(k) {
				used = used.Add(c.AnnualAmount)
			}
		}
		out = append(out, SeasonCapSnapshot{
			Season:       currentSeason + Season(k),
			Offset:       k,
			CapUsed:      used,
			CapRemaining: rules.CapLimit.Sub(used),
		})
	}
	return out
}

// CurrentCap is the offset-0 snapshot on its own, for callers that only
// need the present-season state.
func CurrentCap(contracts []Contract, rules Rules, currentSeason Season) SeasonCapSnapshot {
	return ProjectTeam(contracts, rules, currentSeason, 0)[0]
}

// ProjectLeagueAverage averages per-season usage across every team's
// contracts, returning the same snapshot structure. An empty league yields
// nil; callers fall back to the requesting team's own series (see
// AverageOrSelf).
func ProjectLeagueAverage(teams map[TeamID][]Contract, rules Rules, currentSeason Season, horizon int) []SeasonCapSnapshot {
	if len(teams) == 0 {
		return nil
	}
	if horizon < 0 {
		horizon = 0
	}

	sums := make([]Money, horizon+1)
	for i := range sums {
		sums[i] = ZeroMoney()
	}
	for _, contracts := range teams {
		series := ProjectTeam(contracts, rules, currentSeason, horizon)
		for i, snap := range series {
			sums[i] = sums[i].Add(snap.CapUsed)
		}
	}

	n := decimal.NewFromInt(int64(len(teams)))
	out := make([]SeasonCapSnapshot, horizon+1)
	for k := range out {
		avg := sums[k].Div(n)
		out[k] = SeasonCapSnapshot{
			Season:       currentSeason + Season(k),
			Offset:       k,
			CapUsed:      avg,
			CapRemaining: rules.CapLimit.Sub(avg),
		}
	}
	return out
}

// AverageOrSelf returns the league-average series, falling back to the
// team's own projection when the league has no other data. Fallback, not
// an error.
func AverageOrSelf(teams map[TeamID][]Contract, own []Contract, rules Rules, currentSeason Season, horizon int) []SeasonCapSnapshot {
	if avg := ProjectLeagueAverage(teams, rules, currentSeason, horizon); avg != nil {
		return avg
	}
	return ProjectTeam(own, rules, currentSeason, horizon)
}
