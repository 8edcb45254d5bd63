/*
Package memory provides an in-memory MutationService and DataProvider
(for testing/dev).

Semantics mirror store/sqlite: counters are decremented only inside a
confirmed action, failed actions change nothing, and commissioner removals
refund the credit the action consumed.
*/
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/warp/cap-engine/league"
)

// =============================================================================
// STORE
// =============================================================================

type leagueState struct {
	rules         league.Rules
	currentSeason league.Season
	teams         []league.TeamInfo
	players       map[league.PlayerID]league.Player
	contracts     map[contractKey]league.Contract
	counters      map[league.TeamID]league.Counters
	commishActs   map[commishKey]struct{}
	activity      []league.RemoteActivityItem
}

type contractKey struct {
	TeamID   league.TeamID
	PlayerID league.PlayerID
}

type commishKey struct {
	TeamID         league.TeamID
	PlayerID       league.PlayerID
	Kind           league.ActionKind
	ContractLength int
}

// Store keeps every league in memory behind one mutex.
type Store struct {
	mu      sync.RWMutex
	leagues map[league.LeagueID]*leagueState
}

var _ league.DataProvider = (*Store)(nil)
var _ league.MutationService = (*Store)(nil)

func New() *Store {
	return &Store{leagues: make(map[league.LeagueID]*leagueState)}
}

// CreateLeague registers a league with the given rules and season.
func (s *Store) CreateLeague(id league.LeagueID, rules league.Rules, season league.Season) error {
	if err := rules.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leagues[id] = &leagueState{
		rules:         rules,
		currentSeason: season,
		players:       make(map[league.PlayerID]league.Player),
		contracts:     make(map[contractKey]league.Contract),
		counters:      make(map[league.TeamID]league.Counters),
		commishActs:   make(map[commishKey]struct{}),
	}
	return nil
}

// AddTeam registers a team with a fresh counter allotment.
func (s *Store) AddTeam(leagueID league.LeagueID, team league.TeamInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ls, ok := s.leagues[leagueID]
	if !ok {
		return league.ErrLeagueNotFound
	}
	ls.teams = append(ls.teams, team)
	ls.counters[team.ID] = league.NewCounters(team.ID, ls.currentSeason, ls.rules)
	for _, p := range team.Players {
		ls.players[p.ID] = p
	}
	return nil
}

// PutContract seeds or replaces a contract directly (fixtures only; real
// mutation goes through the action methods).
func (s *Store) PutContract(leagueID league.LeagueID, c league.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ls, ok := s.leagues[leagueID]
	if !ok {
		return league.ErrLeagueNotFound
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	ls.contracts[contractKey{TeamID: c.TeamID, PlayerID: c.PlayerID}] = c
	return nil
}

// PutActivity seeds remote history items (fixtures only).
func (s *Store) PutActivity(leagueID league.LeagueID, items ...league.RemoteActivityItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ls, ok := s.leagues[leagueID]
	if !ok {
		return league.ErrLeagueNotFound
	}
	ls.activity = append(ls.activity, items...)
	return nil
}

// =============================================================================
// DATA PROVIDER
// =============================================================================

func (s *Store) Rosters(_ context.Context, leagueID league.LeagueID, _ string) (*league.RosterData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ls, ok := s.leagues[leagueID]
	if !ok {
		return nil, league.ErrLeagueNotFound
	}
	teams := make([]league.TeamInfo, len(ls.teams))
	copy(teams, ls.teams)
	return &league.RosterData{
		Teams:         teams,
		Rules:         ls.rules,
		CurrentSeason: ls.currentSeason,
	}, nil
}

func (s *Store) AllContracts(_ context.Context, leagueID league.LeagueID) ([]league.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ls, ok := s.leagues[leagueID]
	if !ok {
		return nil, league.ErrLeagueNotFound
	}
	out := make([]league.Contract, 0, len(ls.contracts))
	for _, c := range ls.contracts {
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) Activity(_ context.Context, leagueID league.LeagueID, offset, limit int) ([]league.RemoteActivityItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ls, ok := s.leagues[leagueID]
	if !ok {
		return nil, league.ErrLeagueNotFound
	}
	if offset >= len(ls.activity) || limit <= 0 {
		return nil, nil
	}
	end := offset + limit
	if end > len(ls.activity) {
		end = len(ls.activity)
	}
	page := make([]league.RemoteActivityItem, end-offset)
	copy(page, ls.activity[offset:end])
	return page, nil
}

func (s *Store) TeamCounters(_ context.Context, leagueID league.LeagueID, teamID league.TeamID) (*league.Counters, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ls, ok := s.leagues[leagueID]
	if !ok {
		return nil, league.ErrLeagueNotFound
	}
	c, ok := ls.counters[teamID]
	if !ok {
		return nil, league.ErrTeamNotFound
	}
	return &c, nil
}

// =============================================================================
// MUTATION SERVICE - single actions
// =============================================================================

func (s *Store) AddContract(_ context.Context, req league.ActionRequest) (*league.MutationResult, error) {
	return s.apply(req, league.ActionContract)
}

func (s *Store) AddRFA(_ context.Context, req league.ActionRequest) (*league.MutationResult, error) {
	return s.apply(req, league.ActionRFA)
}

func (s *Store) AddExtension(_ context.Context, req league.ActionRequest) (*league.MutationResult, error) {
	return s.apply(req, league.ActionExtension)
}

func (s *Store) AddAmnesty(_ context.Context, req league.ActionRequest) (*league.MutationResult, error) {
	return s.apply(req, league.ActionAmnesty)
}

// apply validates, transitions the contract, and spends the counter under
// one lock. Any error leaves state untouched.
func (s *Store) apply(req league.ActionRequest, kind league.ActionKind) (*league.MutationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ls, ok := s.leagues[req.LeagueID]
	if !ok {
		return nil, league.ErrLeagueNotFound
	}
	counters, ok := ls.counters[req.TeamID]
	if !ok {
		return nil, league.ErrTeamNotFound
	}

	key := contractKey{TeamID: req.TeamID, PlayerID: req.PlayerID}
	contract, ok := ls.contracts[key]
	if !ok {
		if kind != league.ActionContract {
			return nil, league.ErrContractNotFound
		}
		contract = league.Contract{
			ID:       uuid.NewString(),
			TeamID:   req.TeamID,
			PlayerID: req.PlayerID,
			Status:   league.StatusNone,
		}
	}

	if err := league.ValidateAction(kind, contract, counters, req.ContractLength); err != nil {
		return nil, err
	}

	var err error
	switch kind {
	case league.ActionContract:
		contract, err = contract.WithNewTerm(req.ContractLength, ls.currentSeason)
	case league.ActionRFA:
		contract, err = contract.Tendered(ls.rules, ls.currentSeason)
	case league.ActionExtension:
		contract, err = contract.Extended(ls.rules)
	case league.ActionAmnesty:
		contract, err = contract.Amnestied()
	}
	if err != nil {
		return nil, err
	}

	counters, err = counters.Spend(kind)
	if err != nil {
		return nil, err
	}

	ls.contracts[key] = contract
	ls.counters[req.TeamID] = counters
	ls.activity = append(ls.activity, league.RemoteActivityItem{
		ID:        uuid.NewString(),
		Kind:      "commissioner",
		TeamID:    req.TeamID,
		Detail:    fmt.Sprintf("%s applied for player %s", kind, req.PlayerID),
		Timestamp: time.Now().UnixMilli(),
	})
	return &league.MutationResult{Contract: contract, Counters: counters}, nil
}

// =============================================================================
// MUTATION SERVICE - commissioner batch path
// =============================================================================

func (s *Store) AddCommissionerAction(ctx context.Context, leagueID league.LeagueID, teamID league.TeamID,
	playerID league.PlayerID, actionType league.ActionKind, contractLength int) error {

	_, err := s.apply(league.ActionRequest{
		LeagueID: leagueID, TeamID: teamID, PlayerID: playerID, ContractLength: contractLength,
	}, actionType)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ls := s.leagues[leagueID]
	ls.commishActs[commishKey{TeamID: teamID, PlayerID: playerID, Kind: actionType, ContractLength: contractLength}] = struct{}{}
	return nil
}

func (s *Store) RemoveCommissionerAction(_ context.Context, leagueID league.LeagueID, teamID league.TeamID,
	playerID league.PlayerID, actionType league.ActionKind, contractLength int) error {

	s.mu.Lock()
	defer s.mu.Unlock()

	ls, ok := s.leagues[leagueID]
	if !ok {
		return league.ErrLeagueNotFound
	}
	counters, ok := ls.counters[teamID]
	if !ok {
		return league.ErrTeamNotFound
	}
	ck := commishKey{TeamID: teamID, PlayerID: playerID, Kind: actionType, ContractLength: contractLength}
	if _, ok := ls.commishActs[ck]; !ok {
		return &league.MutationError{
			Op:      "remove_commissioner_action",
			Message: fmt.Sprintf("no recorded %s action for player %s", actionType, playerID),
		}
	}

	// Undo the contract effect.
	key := contractKey{TeamID: teamID, PlayerID: playerID}
	contract, ok := ls.contracts[key]
	if !ok {
		return league.ErrContractNotFound
	}
	switch actionType {
	case league.ActionContract:
		contract.LengthYears = 0
		contract.ExtensionYears = 0
		contract.Status = league.StatusNone
	case league.ActionAmnesty:
		// The one sanctioned path back from amnestied: the commissioner's
		// inverse call, never local state surgery.
		contract.Status = league.StatusActive
	case league.ActionRFA:
		contract.Status = league.StatusActive
	case league.ActionExtension:
		contract.ExtensionYears -= ls.rules.ExtensionLength
		if contract.ExtensionYears < 0 {
			contract.ExtensionYears = 0
		}
	}

	delete(ls.commishActs, ck)
	ls.contracts[key] = contract
	ls.counters[teamID] = counters.Refund(actionType)
	return nil
}

// =============================================================================
// MUTATION SERVICE - rules & rollover
// =============================================================================

func (s *Store) UpdateLeagueRules(_ context.Context, leagueID league.LeagueID, update league.RulesUpdate) (*league.Rules, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ls, ok := s.leagues[leagueID]
	if !ok {
		return nil, league.ErrLeagueNotFound
	}
	merged := update.Apply(ls.rules)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	ls.rules = merged
	return &merged, nil
}

// RolloverSeason advances the league one season: exhausted contracts
// expire automatically and counters reset per the rollover cadence.
func (s *Store) RolloverSeason(_ context.Context, leagueID league.LeagueID) (league.Season, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ls, ok := s.leagues[leagueID]
	if !ok {
		return 0, league.ErrLeagueNotFound
	}
	next := ls.currentSeason + 1
	for key, c := range ls.contracts {
		ls.contracts[key] = c.ExpireIfDone(next)
	}
	for teamID, c := range ls.counters {
		ls.counters[teamID] = c.Rollover(next, ls.rules)
	}
	ls.currentSeason = next
	return next, nil
}
