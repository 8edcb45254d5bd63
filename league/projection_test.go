package league_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/cap-engine/league"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func money(n int64) league.Money { return league.NewMoney(n) }

func activeContract(player string, amount int64, years int) league.Contract {
	return league.Contract{
		ID:           "c-" + player,
		TeamID:       "team-1",
		PlayerID:     league.PlayerID(player),
		LengthYears:  years,
		StartSeason:  2026,
		AnnualAmount: money(amount),
		Status:       league.StatusActive,
	}
}

func testRules() league.Rules {
	return league.DefaultRules()
}

// =============================================================================
// PROJECTION TESTS
// =============================================================================

func TestProjectTeam_MixedTermRoster(t *testing.T) {
	// GIVEN: cap limit 260, two contracts {40, 3yr} and {20, 1yr}
	// WHEN: projecting over 3+ seasons
	// THEN: season 0 usage 60 / remaining 200, season 1 usage 40, season 3 usage 0

	contracts := []league.Contract{
		activeContract("p1", 40, 3),
		activeContract("p2", 20, 1),
	}

	series := league.ProjectTeam(contracts, testRules(), 2026, 3)
	require.Len(t, series, 4)

	assert.True(t, series[0].CapUsed.Equal(money(60)), "season 0 usage: %s", series[0].CapUsed)
	assert.True(t, series[0].CapRemaining.Equal(money(200)), "season 0 remaining: %s", series[0].CapRemaining)
	assert.True(t, series[1].CapUsed.Equal(money(40)), "season 1 usage: %s", series[1].CapUsed)
	assert.True(t, series[3].CapUsed.IsZero(), "season 3 usage: %s", series[3].CapUsed)
}

func TestProjectTeam_ZeroLengthPlaceholderCountsOnlyAtOffsetZero(t *testing.T) {
	// GIVEN: a zero-length "no contract yet" placeholder at amount 10
	// WHEN: projecting
	// THEN: it contributes at offset 0 and never after

	placeholder := league.Contract{
		TeamID:       "team-1",
		PlayerID:     "p-fa",
		LengthYears:  0,
		AnnualAmount: money(10),
		Status:       league.StatusNone,
	}

	series := league.ProjectTeam([]league.Contract{placeholder}, testRules(), 2026, 4)
	assert.True(t, series[0].CapUsed.Equal(money(10)))
	for _, snap := range series[1:] {
		assert.True(t, snap.CapUsed.IsZero(), "offset %d should be zero, got %s", snap.Offset, snap.CapUsed)
	}
}

func TestProjectTeam_ExtensionLengthensCoverage(t *testing.T) {
	// GIVEN: a 2-year contract extended by 2 years
	// WHEN: projecting over 4 seasons
	// THEN: it covers offsets 0-3 and drops off at offset 4

	c := activeContract("p1", 30, 2)
	c.ExtensionYears = 2

	series := league.ProjectTeam([]league.Contract{c}, testRules(), 2026, 4)
	for k := 0; k <= 3; k++ {
		assert.True(t, series[k].CapUsed.Equal(money(30)), "offset %d", k)
	}
	assert.True(t, series[4].CapUsed.IsZero())
}

func TestProjectTeam_AmnestiedContributesNothing(t *testing.T) {
	// GIVEN: an amnestied 3-year contract
	// WHEN: projecting
	// THEN: zero at every offset, including 0

	c := activeContract("p1", 50, 3)
	c.Status = league.StatusAmnestied

	series := league.ProjectTeam([]league.Contract{c}, testRules(), 2026, 3)
	for _, snap := range series {
		assert.True(t, snap.CapUsed.IsZero(), "offset %d", snap.Offset)
	}
}

func TestProjectTeam_EmptyRosterProjectsAllZero(t *testing.T) {
	series := league.ProjectTeam(nil, testRules(), 2026, 4)
	require.Len(t, series, 5)
	for _, snap := range series {
		assert.True(t, snap.CapUsed.IsZero())
		assert.True(t, snap.CapRemaining.Equal(testRules().CapLimit))
	}
}

func TestProjectTeam_CapInvariantHoldsExactly(t *testing.T) {
	// THEN: capRemaining + capUsed == capLimit at every offset, no drift

	contracts := []league.Contract{
		activeContract("p1", 37, 5),
		activeContract("p2", 81, 2),
		activeContract("p3", 3, 1),
	}
	rules := testRules()

	for _, snap := range league.ProjectTeam(contracts, rules, 2026, 5) {
		sum := snap.CapRemaining.Add(snap.CapUsed)
		assert.True(t, sum.Equal(rules.CapLimit), "offset %d: %s + %s != %s",
			snap.Offset, snap.CapRemaining, snap.CapUsed, rules.CapLimit)
	}
}

func TestProjectTeam_OverCapRepresentable(t *testing.T) {
	// GIVEN: usage above the cap
	// THEN: remaining goes negative, OverCap is set, nothing is clamped

	contracts := []league.Contract{activeContract("p1", 300, 2)}
	snap := league.CurrentCap(contracts, testRules(), 2026)

	assert.True(t, snap.CapRemaining.Equal(money(-40)))
	assert.True(t, snap.OverCap())
	assert.True(t, snap.NearCap(), "over cap implies near cap")
}

func TestSnapshot_NearCapThreshold(t *testing.T) {
	// 88% of 260 is 228.8: usage 229 warns, usage 228 does not.
	near := league.CurrentCap([]league.Contract{activeContract("p1", 229, 1)}, testRules(), 2026)
	under := league.CurrentCap([]league.Contract{activeContract("p1", 228, 1)}, testRules(), 2026)

	assert.True(t, near.NearCap())
	assert.False(t, near.OverCap(), "near cap is distinct from over cap")
	assert.False(t, under.NearCap())
}

// =============================================================================
// LEAGUE AVERAGE
// =============================================================================

func TestProjectLeagueAverage_AveragesAcrossTeams(t *testing.T) {
	// GIVEN: two teams using 60 and 20 in season 0
	// THEN: the average series reports 40

	teams := map[league.TeamID][]league.Contract{
		"team-1": {activeContract("p1", 60, 2)},
		"team-2": {activeContract("p2", 20, 2)},
	}

	avg := league.ProjectLeagueAverage(teams, testRules(), 2026, 1)
	require.Len(t, avg, 2)
	assert.True(t, avg[0].CapUsed.Equal(money(40)), "got %s", avg[0].CapUsed)
}

func TestAverageOrSelf_FallsBackToOwnSeries(t *testing.T) {
	// GIVEN: a league with no other teams
	// THEN: the "average" is the team's own projection - fallback, not error

	own := []league.Contract{activeContract("p1", 55, 2)}
	series := league.AverageOrSelf(nil, own, testRules(), 2026, 2)

	require.Len(t, series, 3)
	assert.True(t, series[0].CapUsed.Equal(money(55)))
}

// =============================================================================
// CONTRACT DERIVATIONS
// =============================================================================

func TestContract_EndSeason(t *testing.T) {
	c := activeContract("p1", 10, 3)
	assert.Equal(t, league.Season(2028), c.EndSeason())

	c.ExtensionYears = 2
	assert.Equal(t, league.Season(2030), c.EndSeason())
	assert.True(t, c.IsExtended())
}
