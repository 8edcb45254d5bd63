package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/cap-engine/api"
	"github.com/warp/cap-engine/league"
	"github.com/warp/cap-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

const leagueID = "league-1"

// newServer wires the router over a seeded in-memory backend: two teams,
// with t1 holding 40/3yr + 20/1yr against a 260 cap.
func newServer(t *testing.T) (*memory.Store, http.Handler) {
	t.Helper()
	store := memory.New()
	require.NoError(t, store.CreateLeague(leagueID, league.DefaultRules(), 2026))
	require.NoError(t, store.AddTeam(leagueID, league.TeamInfo{
		ID: "t1", Name: "Team One",
		Players: []league.Player{
			{ID: "p1", Name: "Alpha Back", Position: league.PositionRB},
			{ID: "p2", Name: "Beta Wide", Position: league.PositionWR},
		},
	}))
	require.NoError(t, store.AddTeam(leagueID, league.TeamInfo{
		ID: "t2", Name: "Team Two",
		Players: []league.Player{
			{ID: "p9", Name: "Gamma Arm", Position: league.PositionQB},
		},
	}))
	require.NoError(t, store.PutContract(leagueID, league.Contract{
		TeamID: "t1", PlayerID: "p1", LengthYears: 3, StartSeason: 2026,
		AnnualAmount: league.NewMoney(40), Status: league.StatusActive,
	}))
	require.NoError(t, store.PutContract(leagueID, league.Contract{
		TeamID: "t1", PlayerID: "p2", LengthYears: 1, StartSeason: 2026,
		AnnualAmount: league.NewMoney(20), Status: league.StatusActive,
	}))
	return store, api.NewRouter(api.NewHandler(store), nil)
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

// =============================================================================
// PROJECTION / CAP
// =============================================================================

func TestGetProjection_MixedTermRoster(t *testing.T) {
	_, router := newServer(t)

	rec := do(t, router, http.MethodGet,
		"/api/leagues/"+leagueID+"/teams/t1/projection?horizon=3", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	dto := decode[api.ProjectionDTO](t, rec)
	require.Len(t, dto.Team, 4)
	assert.Equal(t, "60", dto.Team[0].CapUsed)
	assert.Equal(t, "200", dto.Team[0].CapRemaining)
	assert.Equal(t, "40", dto.Team[1].CapUsed, "1-year deal dropped off")
	assert.Equal(t, "0", dto.Team[3].CapUsed)
	assert.Len(t, dto.LeagueAverage, 4, "average series spans the same horizon")
}

func TestGetProjection_BadHorizonRejected(t *testing.T) {
	_, router := newServer(t)

	rec := do(t, router, http.MethodGet,
		"/api/leagues/"+leagueID+"/teams/t1/projection?horizon=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCap_UnknownTeamIs404(t *testing.T) {
	_, router := newServer(t)

	rec := do(t, router, http.MethodGet, "/api/leagues/"+leagueID+"/teams/nope/cap", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetCap_UnknownLeagueIs404(t *testing.T) {
	_, router := newServer(t)

	rec := do(t, router, http.MethodGet, "/api/leagues/nope/teams/t1/cap", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// ELIGIBILITY / ROSTER
// =============================================================================

func TestGetEligibility_ReflectsCounters(t *testing.T) {
	store, router := newServer(t)

	rec := do(t, router, http.MethodGet, "/api/leagues/"+leagueID+"/teams/t1/eligibility", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	dto := decode[api.EligibilityDTO](t, rec)
	assert.True(t, dto.CanAmnesty)
	assert.Equal(t, 1, dto.AmnestyLeft)

	// Spend the credit; the endpoint flips.
	_, err := store.AddAmnesty(context.Background(),
		league.ActionRequest{LeagueID: leagueID, TeamID: "t1", PlayerID: "p1"})
	require.NoError(t, err)

	rec = do(t, router, http.MethodGet, "/api/leagues/"+leagueID+"/teams/t1/eligibility", nil)
	dto = decode[api.EligibilityDTO](t, rec)
	assert.False(t, dto.CanAmnesty)
	assert.Equal(t, 0, dto.AmnestyLeft)
}

func TestGetRoster_SortedWithCapTotals(t *testing.T) {
	_, router := newServer(t)

	rec := do(t, router, http.MethodGet, "/api/leagues/"+leagueID+"/teams/t1/roster", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	dto := decode[api.RosterDTO](t, rec)
	assert.Equal(t, "Team One", dto.TeamName)
	assert.Equal(t, "60", dto.CapUsed)
	require.Len(t, dto.Contracts, 2)
	// RB ranks ahead of WR in the fixed position order.
	assert.Equal(t, "p1", dto.Contracts[0].PlayerID)
	assert.Equal(t, "Alpha Back", dto.Contracts[0].PlayerName)
}

// =============================================================================
// SINGLE ACTIONS
// =============================================================================

func actionPath(kind string) string {
	return fmt.Sprintf("/api/leagues/%s/actions/%s", leagueID, kind)
}

func TestSubmitAction_NewContract(t *testing.T) {
	_, router := newServer(t)

	rec := do(t, router, http.MethodPost, actionPath("contract"), api.ActionRequestDTO{
		TeamID: "t2", PlayerID: "p9", ContractLength: 4,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	dto := decode[api.ActionResultDTO](t, rec)
	assert.Equal(t, 4, dto.Contract.LengthYears)
	assert.Equal(t, "active", dto.Contract.Status)
	assert.Equal(t, 2029, dto.Contract.EndSeason)
}

func TestSubmitAction_BadLengthsNeverReachBackend(t *testing.T) {
	// Lengths outside [1, 10] are refused with 400 and no state change.
	store, router := newServer(t)

	for _, bad := range []int{0, 11} {
		rec := do(t, router, http.MethodPost, actionPath("contract"), api.ActionRequestDTO{
			TeamID: "t2", PlayerID: "p9", ContractLength: bad,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code, "length %d", bad)
	}

	contracts, err := store.AllContracts(context.Background(), leagueID)
	require.NoError(t, err)
	for _, c := range contracts {
		assert.NotEqual(t, league.PlayerID("p9"), c.PlayerID, "refused request must not create a contract")
	}
}

func TestSubmitAction_UnknownKindIs400(t *testing.T) {
	_, router := newServer(t)

	rec := do(t, router, http.MethodPost, actionPath("trade"), api.ActionRequestDTO{
		TeamID: "t1", PlayerID: "p1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitAction_ExhaustedCounterIs409(t *testing.T) {
	_, router := newServer(t)

	first := do(t, router, http.MethodPost, actionPath("amnesty"), api.ActionRequestDTO{
		TeamID: "t1", PlayerID: "p1",
	})
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())

	second := do(t, router, http.MethodPost, actionPath("amnesty"), api.ActionRequestDTO{
		TeamID: "t1", PlayerID: "p2",
	})
	assert.Equal(t, http.StatusConflict, second.Code)
}

// =============================================================================
// RECONCILIATION
// =============================================================================

func reconcilePath() string { return "/api/leagues/" + leagueID + "/reconcile" }

func TestReconcile_AppliesDiff(t *testing.T) {
	_, router := newServer(t)

	rec := do(t, router, http.MethodPost, reconcilePath(), api.ReconcileRequest{
		Original: map[string][]api.PendingActionDTO{},
		Current: map[string][]api.PendingActionDTO{
			"t1": {{PlayerID: "p1", Type: "rfa"}},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	dto := decode[api.ReconcileResponse](t, rec)
	require.Len(t, dto.Applied, 1)
	assert.Equal(t, "add", dto.Applied[0].Direction)
	assert.Equal(t, "rfa", dto.Applied[0].Type)
	assert.Nil(t, dto.Failed)
}

func TestReconcile_PartialFailureIs409WithProgress(t *testing.T) {
	// Two amnesty additions against a single credit: the first applies,
	// the second stops the batch. The response names both.
	_, router := newServer(t)

	rec := do(t, router, http.MethodPost, reconcilePath(), api.ReconcileRequest{
		Original: map[string][]api.PendingActionDTO{},
		Current: map[string][]api.PendingActionDTO{
			"t1": {
				{PlayerID: "p1", Type: "amnesty"},
				{PlayerID: "p2", Type: "amnesty"},
			},
		},
	})
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	dto := decode[api.ReconcileResponse](t, rec)
	require.Len(t, dto.Applied, 1)
	assert.Equal(t, "p1", dto.Applied[0].PlayerID)
	require.NotNil(t, dto.Failed)
	assert.Equal(t, "p2", dto.Failed.PlayerID)
	assert.NotEmpty(t, dto.Error)
}

func TestReconcile_MalformedEditIs400(t *testing.T) {
	_, router := newServer(t)

	rec := do(t, router, http.MethodPost, reconcilePath(), api.ReconcileRequest{
		Original: map[string][]api.PendingActionDTO{},
		Current: map[string][]api.PendingActionDTO{
			"t1": {{PlayerID: "p9", Type: "contract", ContractLength: 11}},
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// ACTIVITY
// =============================================================================

func TestGetActivity_MergedPage(t *testing.T) {
	store, router := newServer(t)
	require.NoError(t, store.PutActivity(leagueID,
		league.RemoteActivityItem{ID: "r1", Kind: "waiver", TeamID: "t2", Detail: "waiver claim", Timestamp: 1_700_000_000_000},
		league.RemoteActivityItem{ID: "r2", Kind: "trade", TeamID: "t2", Detail: "trade", Timestamp: 1_700_000_000_001},
	))

	rec := do(t, router, http.MethodGet, "/api/leagues/"+leagueID+"/activity?limit=10", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	dto := decode[api.ActivityPageDTO](t, rec)
	// 2 remote + 2 contract-derived local items, newest first.
	require.Len(t, dto.Items, 4)
	assert.False(t, dto.HasMore)
	for i := 1; i < len(dto.Items); i++ {
		assert.GreaterOrEqual(t, dto.Items[i-1].Timestamp, dto.Items[i].Timestamp)
	}
	assert.Equal(t, "Team Two", dto.Items[len(dto.Items)-1].TeamName, "remote item resolved to team name")
}

func TestGetActivity_FullPageSignalsMore(t *testing.T) {
	store, router := newServer(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.PutActivity(leagueID, league.RemoteActivityItem{
			ID: fmt.Sprintf("r%d", i), Kind: "waiver", TeamID: "t1",
			Detail: "claim", Timestamp: int64(1_700_000_000_000 + i),
		}))
	}

	rec := do(t, router, http.MethodGet, "/api/leagues/"+leagueID+"/activity?offset=1&limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	dto := decode[api.ActivityPageDTO](t, rec)
	assert.Len(t, dto.Items, 2)
	assert.True(t, dto.HasMore)
}

func TestGetActivity_BadLimitIs400(t *testing.T) {
	_, router := newServer(t)

	rec := do(t, router, http.MethodGet, "/api/leagues/"+leagueID+"/activity?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// ADMIN
// =============================================================================

func TestUpdateRules_PartialEdit(t *testing.T) {
	_, router := newServer(t)

	rec := do(t, router, http.MethodPut, "/api/leagues/"+leagueID+"/rules",
		map[string]any{"cap_limit": 300})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.EqualValues(t, 300, got["cap_limit"])
	assert.EqualValues(t, 10, got["max_contract_length"], "omitted fields untouched")
}

func TestUpdateRules_InvalidMergeIs400(t *testing.T) {
	_, router := newServer(t)

	rec := do(t, router, http.MethodPut, "/api/leagues/"+leagueID+"/rules",
		map[string]any{"max_contract_length": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRollover_AdvancesSeason(t *testing.T) {
	_, router := newServer(t)

	rec := do(t, router, http.MethodPost, "/api/leagues/"+leagueID+"/rollover", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 2027, got["current_season"])
}
