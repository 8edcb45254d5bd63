package commish_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/cap-engine/commish"
	"github.com/warp/cap-engine/league"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// recordingService logs the order of commissioner calls and can fail a
// chosen call.
type recordingService struct {
	calls  []string
	failAt string // call signature to fail on, empty = never
}

func callSig(dir string, teamID league.TeamID, playerID league.PlayerID, kind league.ActionKind) string {
	return fmt.Sprintf("%s %s:%s:%s", dir, teamID, kind, playerID)
}

func (s *recordingService) record(sig string) error {
	if s.failAt == sig {
		return errors.New("injected failure")
	}
	s.calls = append(s.calls, sig)
	return nil
}

func (s *recordingService) AddCommissionerAction(_ context.Context, _ league.LeagueID, teamID league.TeamID,
	playerID league.PlayerID, kind league.ActionKind, _ int) error {
	return s.record(callSig("add", teamID, playerID, kind))
}

func (s *recordingService) RemoveCommissionerAction(_ context.Context, _ league.LeagueID, teamID league.TeamID,
	playerID league.PlayerID, kind league.ActionKind, _ int) error {
	return s.record(callSig("remove", teamID, playerID, kind))
}

func (s *recordingService) AddContract(context.Context, league.ActionRequest) (*league.MutationResult, error) {
	return nil, errors.New("not used")
}
func (s *recordingService) AddRFA(context.Context, league.ActionRequest) (*league.MutationResult, error) {
	return nil, errors.New("not used")
}
func (s *recordingService) AddExtension(context.Context, league.ActionRequest) (*league.MutationResult, error) {
	return nil, errors.New("not used")
}
func (s *recordingService) AddAmnesty(context.Context, league.ActionRequest) (*league.MutationResult, error) {
	return nil, errors.New("not used")
}
func (s *recordingService) UpdateLeagueRules(context.Context, league.LeagueID, league.RulesUpdate) (*league.Rules, error) {
	return nil, errors.New("not used")
}

func rfa(player string) commish.PendingAction {
	return commish.PendingAction{PlayerID: league.PlayerID(player), Kind: league.ActionRFA}
}

func amnesty(player string) commish.PendingAction {
	return commish.PendingAction{PlayerID: league.PlayerID(player), Kind: league.ActionAmnesty}
}

func contract(player string, length int) commish.PendingAction {
	return commish.PendingAction{PlayerID: league.PlayerID(player), Kind: league.ActionContract, ContractLength: length}
}

func sets(teamID string, actions ...commish.PendingAction) map[league.TeamID][]commish.PendingAction {
	return map[league.TeamID][]commish.PendingAction{league.TeamID(teamID): actions}
}

// =============================================================================
// PLAN - pure diff properties
// =============================================================================

func TestPlan_IdenticalSetsYieldNoOps(t *testing.T) {
	// reconcile(X, X) is empty for every X.
	x := sets("t1", rfa("p1"), contract("p2", 4), amnesty("p3"))
	assert.Empty(t, commish.Plan(x, x))
	assert.Empty(t, commish.Plan(nil, nil))
}

func TestPlan_RemoveBeforeAdd(t *testing.T) {
	// GIVEN: original {rfa:P1}, current {amnesty:P1}
	// THEN: remove(rfa:P1) is emitted before add(amnesty:P1) so the freed
	// credit is available to the addition

	ops := commish.Plan(sets("t1", rfa("p1")), sets("t1", amnesty("p1")))
	require.Len(t, ops, 2)
	assert.Equal(t, commish.OpRemove, ops[0].Direction)
	assert.Equal(t, league.ActionRFA, ops[0].Action.Kind)
	assert.Equal(t, commish.OpAdd, ops[1].Direction)
	assert.Equal(t, league.ActionAmnesty, ops[1].Action.Kind)
}

func TestPlan_RemoveThenReAddCancelsOut(t *testing.T) {
	// An action removed and re-added identically inside one edit session
	// nets to nothing in the key-set diff, regardless of UI edit order.
	original := sets("t1", amnesty("p1"))
	current := sets("t1", amnesty("p1")) // removed then re-added: same set

	assert.Empty(t, commish.Plan(original, current))
}

func TestPlan_ContractLengthChangeIsRemovePlusAdd(t *testing.T) {
	// There is no modify: a length change is remove-old + add-new.
	ops := commish.Plan(sets("t1", contract("p1", 3)), sets("t1", contract("p1", 5)))
	require.Len(t, ops, 2)
	assert.Equal(t, commish.OpRemove, ops[0].Direction)
	assert.Equal(t, 3, ops[0].Action.ContractLength)
	assert.Equal(t, commish.OpAdd, ops[1].Direction)
	assert.Equal(t, 5, ops[1].Action.ContractLength)
}

func TestPlan_LengthIgnoredForNonContractKinds(t *testing.T) {
	// contractLength participates in identity only for contract actions.
	a := commish.PendingAction{PlayerID: "p1", Kind: league.ActionRFA, ContractLength: 3}
	b := commish.PendingAction{PlayerID: "p1", Kind: league.ActionRFA, ContractLength: 7}
	assert.Equal(t, a.Key(), b.Key())
	assert.Empty(t, commish.Plan(sets("t1", a), sets("t1", b)))
}

func TestPlan_StructuralKeysSurviveHostileIDs(t *testing.T) {
	// A player id containing separator characters cannot collide with a
	// composite key - identity is a struct, not a formatted string.
	weird := commish.PendingAction{PlayerID: "p:1:rfa", Kind: league.ActionAmnesty}
	plain := commish.PendingAction{PlayerID: "p", Kind: league.ActionAmnesty}

	ops := commish.Plan(sets("t1", weird), sets("t1", plain))
	require.Len(t, ops, 2, "distinct players must diff as distinct actions")
}

func TestPlan_TeamsAreIndependent(t *testing.T) {
	original := map[league.TeamID][]commish.PendingAction{
		"t1": {rfa("p1")},
		"t2": {amnesty("p2")},
	}
	current := map[league.TeamID][]commish.PendingAction{
		"t1": {rfa("p1")}, // unchanged
		"t2": {rfa("p9")}, // swap
	}

	ops := commish.Plan(original, current)
	require.Len(t, ops, 2)
	for _, op := range ops {
		assert.Equal(t, league.TeamID("t2"), op.TeamID)
	}
}

// =============================================================================
// RECONCILE - driving the service
// =============================================================================

func TestReconcile_AppliesInPlanOrder(t *testing.T) {
	svc := &recordingService{}

	result, err := commish.Reconcile(context.Background(), svc, "league-1",
		sets("t1", rfa("p1")), sets("t1", amnesty("p1")))
	require.NoError(t, err)
	require.Len(t, result.Applied, 2)

	assert.Equal(t, []string{
		"remove t1:rfa:p1",
		"add t1:amnesty:p1",
	}, svc.calls)
}

func TestReconcile_NoEditsNoCalls(t *testing.T) {
	svc := &recordingService{}
	x := sets("t1", contract("p1", 2))

	result, err := commish.Reconcile(context.Background(), svc, "league-1", x, x)
	require.NoError(t, err)
	assert.Empty(t, result.Applied)
	assert.Empty(t, svc.calls, "identical sets must not touch the service")
}

func TestReconcile_PartialFailureStopsAndReports(t *testing.T) {
	// GIVEN: a batch of remove + two adds where the first add fails
	// THEN: the removal stands, the batch stops, and the error names the
	// failed op so the caller can re-run against fresh state

	svc := &recordingService{failAt: "add t1:amnesty:p2"}

	_, err := commish.Reconcile(context.Background(), svc, "league-1",
		sets("t1", rfa("p1")),
		sets("t1", amnesty("p2"), rfa("p3")))

	var partial *commish.PartialBatchError
	require.ErrorAs(t, err, &partial)
	require.Len(t, partial.Applied, 1)
	assert.Equal(t, commish.OpRemove, partial.Applied[0].Direction)
	assert.Equal(t, commish.OpAdd, partial.Failed.Direction)
	assert.Equal(t, league.PlayerID("p2"), partial.Failed.Action.PlayerID)

	// The rfa:p3 add after the failure was never attempted.
	assert.Equal(t, []string{"remove t1:rfa:p1"}, svc.calls)
}

func TestReconcile_ValidatesBeforeAnyCall(t *testing.T) {
	// A malformed edit (contract length 11) fails the batch locally;
	// nothing reaches the service.
	svc := &recordingService{}

	_, err := commish.Reconcile(context.Background(), svc, "league-1",
		nil, sets("t1", contract("p1", 11)))

	require.Error(t, err)
	assert.ErrorIs(t, err, league.ErrContractLengthOutOfBounds)
	assert.Empty(t, svc.calls)
}
