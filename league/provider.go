/*
provider.go - External collaborator interfaces

PURPOSE:
  The engine consumes two external services and owns neither:

  - DataProvider: read-only league state (rosters, rules, contracts,
    remote activity history).
  - MutationService: the SOLE authority over contracts and resource
    counters. One call per action type, no multi-action transaction.
    Every successful call returns the updated state; callers refresh
    their snapshots from it instead of doing local counter arithmetic.

CONCURRENCY:
  The engine has no internal threading model. Every call here is a
  single-flight request/response and a potential suspension point; all
  take a context. No retries are built in - a failed call is reported
  upward and retrying is the caller's choice.
*/
package league

import "context"

// =============================================================================
// DATA PROVIDER - read side
// =============================================================================

// RosterData is the provider's league snapshot.
type RosterData struct {
	Teams         []TeamInfo
	Rules         Rules
	CurrentSeason Season
}

// RemoteActivityItem is one entry of remote transaction history. Timestamps
// arrive in mixed epoch units and are normalized by the activity package.
type RemoteActivityItem struct {
	ID        string
	Kind      string // trade, waiver, free_agent, draft, commissioner
	TeamID    TeamID
	Detail    string
	Timestamp int64
}

// DataProvider reads league state. Implementations: store/sqlite (local
// persistence), store/memory (tests/dev); a remote sports-league API
// adapter slots in the same way.
type DataProvider interface {
	Rosters(ctx context.Context, leagueID LeagueID, userID string) (*RosterData, error)
	AllContracts(ctx context.Context, leagueID LeagueID) ([]Contract, error)
	Activity(ctx context.Context, leagueID LeagueID, offset, limit int) ([]RemoteActivityItem, error)
	TeamCounters(ctx context.Context, leagueID LeagueID, teamID TeamID) (*Counters, error)
}

// =============================================================================
// MUTATION SERVICE - write side
// =============================================================================

// ActionRequest identifies a single roster action. ContractLength is only
// set for new-contract actions.
type ActionRequest struct {
	LeagueID       LeagueID
	TeamID         TeamID
	PlayerID       PlayerID
	ContractLength int
}

// MutationResult is the refreshed state after a confirmed action.
type MutationResult struct {
	Contract Contract
	Counters Counters
}

// MutationService applies contract and resource actions. Counters are
// decremented here and nowhere else; on failure no state changes and the
// call is safe to retry.
type MutationService interface {
	AddContract(ctx context.Context, req ActionRequest) (*MutationResult, error)
	AddRFA(ctx context.Context, req ActionRequest) (*MutationResult, error)
	AddExtension(ctx context.Context, req ActionRequest) (*MutationResult, error)
	AddAmnesty(ctx context.Context, req ActionRequest) (*MutationResult, error)

	// Commissioner batch path. actionType follows ActionKind; removal
	// refunds the credit the action consumed.
	AddCommissionerAction(ctx context.Context, leagueID LeagueID, teamID TeamID, playerID PlayerID, actionType ActionKind, contractLength int) error
	RemoveCommissionerAction(ctx context.Context, leagueID LeagueID, teamID TeamID, playerID PlayerID, actionType ActionKind, contractLength int) error

	UpdateLeagueRules(ctx context.Context, leagueID LeagueID, update RulesUpdate) (*Rules, error)
}
