/*
Package sqlite provides a SQLite-backed MutationService and DataProvider.

PURPOSE:
  Persists leagues, rosters, contracts, resource counters, and the
  commissioner action log. In production the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  league.DataProvider:    Rosters, contracts, activity, counters (reads)
  league.MutationService: Single actions, commissioner batch path, rules

AUTHORITY:
  This store is the single write path for contracts and counters. A
  counter is decremented in the SAME database transaction that records
  the action; nothing is decremented speculatively, and a failed action
  rolls back completely. That is what makes engine-side retries safe.

KEY TABLES:
  leagues:              Rules + current season per league
  teams / players:      Roster identity
  contracts:            One row per (team, player); status state machine
  counters:             Per-team per-season action budget
  commissioner_actions: Applied batch-path actions (for removal lookup)
  activity:             Transaction history feed (append-only)

WAL MODE:
  SQLite is opened with WAL for better concurrency: readers don't block,
  single writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/cap.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - league/provider.go: Interface definitions
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/cap-engine/league"
)

// Store implements league.DataProvider and league.MutationService.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

var _ league.DataProvider = (*Store)(nil)
var _ league.MutationService = (*Store)(nil)

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS leagues (
		id TEXT PRIMARY KEY,
		cap_limit TEXT NOT NULL,
		max_contract_length INTEGER NOT NULL,
		rfa_length INTEGER NOT NULL,
		extension_length INTEGER NOT NULL,
		taxi_slots INTEGER NOT NULL,
		rfa_allowed INTEGER NOT NULL,
		extension_allowed INTEGER NOT NULL,
		amnesty_allowed INTEGER NOT NULL,
		rollover_every INTEGER NOT NULL,
		current_season INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS teams (
		id TEXT NOT NULL,
		league_id TEXT NOT NULL,
		name TEXT NOT NULL,
		owner_id TEXT,
		PRIMARY KEY (league_id, id)
	);

	CREATE TABLE IF NOT EXISTS players (
		id TEXT NOT NULL,
		league_id TEXT NOT NULL,
		team_id TEXT NOT NULL,
		name TEXT NOT NULL,
		position TEXT NOT NULL,
		PRIMARY KEY (league_id, id)
	);
	CREATE INDEX IF NOT EXISTS idx_players_team ON players(league_id, team_id);

	-- One contract per (team, player) pair at a time.
	CREATE TABLE IF NOT EXISTS contracts (
		id TEXT PRIMARY KEY,
		league_id TEXT NOT NULL,
		team_id TEXT NOT NULL,
		player_id TEXT NOT NULL,
		length_years INTEGER NOT NULL,
		extension_years INTEGER NOT NULL DEFAULT 0,
		start_season INTEGER NOT NULL,
		annual_amount TEXT NOT NULL,
		status TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE (league_id, team_id, player_id)
	);
	CREATE INDEX IF NOT EXISTS idx_contracts_league ON contracts(league_id);
	CREATE INDEX IF NOT EXISTS idx_contracts_team ON contracts(league_id, team_id);

	-- Per-team per-season action budget. Decremented only inside the same
	-- transaction that records the action.
	CREATE TABLE IF NOT EXISTS counters (
		league_id TEXT NOT NULL,
		team_id TEXT NOT NULL,
		season INTEGER NOT NULL,
		rfa_left INTEGER NOT NULL,
		amnesty_left INTEGER NOT NULL,
		extension_left INTEGER NOT NULL,
		PRIMARY KEY (league_id, team_id)
	);

	-- Applied commissioner actions, keyed for batch-path removal.
	CREATE TABLE IF NOT EXISTS commissioner_actions (
		league_id TEXT NOT NULL,
		team_id TEXT NOT NULL,
		player_id TEXT NOT NULL,
		action_type TEXT NOT NULL,
		contract_length INTEGER NOT NULL DEFAULT 0,
		applied_at TEXT NOT NULL,
		PRIMARY KEY (league_id, team_id, player_id, action_type, contract_length)
	);

	-- Transaction history feed (append-only).
	CREATE TABLE IF NOT EXISTS activity (
		id TEXT PRIMARY KEY,
		league_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		team_id TEXT NOT NULL,
		detail TEXT NOT NULL,
		ts INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_activity_league_ts ON activity(league_id, ts DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SETUP / SEED
// =============================================================================

// CreateLeague persists a league with the given rules and season.
func (s *Store) CreateLeague(ctx context.Context, id league.LeagueID, rules league.Rules, season league.Season) error {
	if err := rules.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leagues (id, cap_limit, max_contract_length, rfa_length, extension_length,
			taxi_slots, rfa_allowed, extension_allowed, amnesty_allowed, rollover_every,
			current_season, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(id), rules.CapLimit.String(), rules.MaxContractLength, rules.RFALength,
		rules.ExtensionLength, rules.TaxiSlots, rules.RFAAllowed, rules.ExtensionAllowed,
		rules.AmnestyAllowed, rules.RolloverEvery, int(season), time.Now().UTC().Format(time.RFC3339))
	return err
}

// AddTeam persists a team, its players, and a fresh counter allotment.
func (s *Store) AddTeam(ctx context.Context, leagueID league.LeagueID, team league.TeamInfo) error {
	rules, season, err := s.leagueRow(ctx, leagueID)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO teams (id, league_id, name, owner_id) VALUES (?, ?, ?, ?)`,
		string(team.ID), string(leagueID), team.Name, team.OwnerID); err != nil {
		return err
	}
	for _, p := range team.Players {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO players (id, league_id, team_id, name, position) VALUES (?, ?, ?, ?, ?)`,
			string(p.ID), string(leagueID), string(team.ID), p.Name, string(p.Position)); err != nil {
			return err
		}
	}
	c := league.NewCounters(team.ID, season, rules)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO counters (league_id, team_id, season, rfa_left, amnesty_left, extension_left)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		string(leagueID), string(team.ID), int(c.Season), c.RFALeft, c.AmnestyLeft, c.ExtensionLeft); err != nil {
		return err
	}
	return tx.Commit()
}

// PutContract seeds or replaces a contract row directly (fixtures only;
// real mutation goes through the action methods).
func (s *Store) PutContract(ctx context.Context, leagueID league.LeagueID, c league.Contract) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, upsertContractSQL,
		c.ID, string(leagueID), string(c.TeamID), string(c.PlayerID), c.LengthYears,
		c.ExtensionYears, int(c.StartSeason), c.AnnualAmount.String(), string(c.Status),
		time.Now().UTC().Format(time.RFC3339))
	return err
}

const upsertContractSQL = `
	INSERT INTO contracts (id, league_id, team_id, player_id, length_years, extension_years,
		start_season, annual_amount, status, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (league_id, team_id, player_id) DO UPDATE SET
		length_years = excluded.length_years,
		extension_years = excluded.extension_years,
		start_season = excluded.start_season,
		annual_amount = excluded.annual_amount,
		status = excluded.status,
		updated_at = excluded.updated_at`

// =============================================================================
// DATA PROVIDER
// =============================================================================

func (s *Store) leagueRow(ctx context.Context, leagueID league.LeagueID) (league.Rules, league.Season, error) {
	var (
		rules    league.Rules
		capLimit string
		season   int
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT cap_limit, max_contract_length, rfa_length, extension_length, taxi_slots,
			rfa_allowed, extension_allowed, amnesty_allowed, rollover_every, current_season
		FROM leagues WHERE id = ?`, string(leagueID)).Scan(
		&capLimit, &rules.MaxContractLength, &rules.RFALength, &rules.ExtensionLength,
		&rules.TaxiSlots, &rules.RFAAllowed, &rules.ExtensionAllowed, &rules.AmnestyAllowed,
		&rules.RolloverEvery, &season)
	if errors.Is(err, sql.ErrNoRows) {
		return rules, 0, league.ErrLeagueNotFound
	}
	if err != nil {
		return rules, 0, err
	}
	d, err := decimal.NewFromString(capLimit)
	if err != nil {
		return rules, 0, fmt.Errorf("corrupt cap_limit %q: %w", capLimit, err)
	}
	rules.CapLimit = league.MoneyFromDecimal(d)
	return rules, league.Season(season), nil
}

func (s *Store) Rosters(ctx context.Context, leagueID league.LeagueID, _ string) (*league.RosterData, error) {
	rules, season, err := s.leagueRow(ctx, leagueID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, COALESCE(owner_id, '') FROM teams WHERE league_id = ? ORDER BY id`,
		string(leagueID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []league.TeamInfo
	for rows.Next() {
		var t league.TeamInfo
		var id string
		if err := rows.Scan(&id, &t.Name, &t.OwnerID); err != nil {
			return nil, err
		}
		t.ID = league.TeamID(id)
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range teams {
		players, err := s.teamPlayers(ctx, leagueID, teams[i].ID)
		if err != nil {
			return nil, err
		}
		teams[i].Players = players
	}

	return &league.RosterData{Teams: teams, Rules: rules, CurrentSeason: season}, nil
}

func (s *Store) teamPlayers(ctx context.Context, leagueID league.LeagueID, teamID league.TeamID) ([]league.Player, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, position FROM players WHERE league_id = ? AND team_id = ?`,
		string(leagueID), string(teamID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []league.Player
	for rows.Next() {
		var p league.Player
		var id, pos string
		if err := rows.Scan(&id, &p.Name, &pos); err != nil {
			return nil, err
		}
		p.ID = league.PlayerID(id)
		p.Position = league.Position(pos)
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *Store) AllContracts(ctx context.Context, leagueID league.LeagueID) ([]league.Contract, error) {
	rows, err := s.db.QueryContext(ctx, selectContractSQL+
		` WHERE league_id = ? ORDER BY team_id, player_id`, string(leagueID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []league.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

const selectContractSQL = `
	SELECT id, team_id, player_id, length_years, extension_years, start_season,
		annual_amount, status
	FROM contracts`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContract(row rowScanner) (league.Contract, error) {
	var c league.Contract
	var teamID, playerID, amount, status string
	var start int
	if err := row.Scan(&c.ID, &teamID, &playerID, &c.LengthYears, &c.ExtensionYears,
		&start, &amount, &status); err != nil {
		return c, err
	}
	c.TeamID = league.TeamID(teamID)
	c.PlayerID = league.PlayerID(playerID)
	c.StartSeason = league.Season(start)
	c.Status = league.ContractStatus(status)
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return c, fmt.Errorf("corrupt annual_amount %q: %w", amount, err)
	}
	c.AnnualAmount = league.MoneyFromDecimal(d)
	return c, nil
}

func (s *Store) Activity(ctx context.Context, leagueID league.LeagueID, offset, limit int) ([]league.RemoteActivityItem, error) {
	if limit <= 0 {
		return nil, nil
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, team_id, detail, ts FROM activity
		WHERE league_id = ? ORDER BY ts DESC, id LIMIT ? OFFSET ?`,
		string(leagueID), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []league.RemoteActivityItem
	for rows.Next() {
		var it league.RemoteActivityItem
		var teamID string
		if err := rows.Scan(&it.ID, &it.Kind, &teamID, &it.Detail, &it.Timestamp); err != nil {
			return nil, err
		}
		it.TeamID = league.TeamID(teamID)
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *Store) TeamCounters(ctx context.Context, leagueID league.LeagueID, teamID league.TeamID) (*league.Counters, error) {
	c, err := countersRow(ctx, s.db, leagueID, teamID)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func countersRow(ctx context.Context, q queryRower, leagueID league.LeagueID, teamID league.TeamID) (league.Counters, error) {
	var c league.Counters
	var season int
	err := q.QueryRowContext(ctx, `
		SELECT season, rfa_left, amnesty_left, extension_left
		FROM counters WHERE league_id = ? AND team_id = ?`,
		string(leagueID), string(teamID)).Scan(&season, &c.RFALeft, &c.AmnestyLeft, &c.ExtensionLeft)
	if errors.Is(err, sql.ErrNoRows) {
		return c, league.ErrTeamNotFound
	}
	if err != nil {
		return c, err
	}
	c.TeamID = teamID
	c.Season = league.Season(season)
	return c, nil
}

// =============================================================================
// MUTATION SERVICE - single actions
// =============================================================================

func (s *Store) AddContract(ctx context.Context, req league.ActionRequest) (*league.MutationResult, error) {
	return s.apply(ctx, req, league.ActionContract)
}

func (s *Store) AddRFA(ctx context.Context, req league.ActionRequest) (*league.MutationResult, error) {
	return s.apply(ctx, req, league.ActionRFA)
}

func (s *Store) AddExtension(ctx context.Context, req league.ActionRequest) (*league.MutationResult, error) {
	return s.apply(ctx, req, league.ActionExtension)
}

func (s *Store) AddAmnesty(ctx context.Context, req league.ActionRequest) (*league.MutationResult, error) {
	return s.apply(ctx, req, league.ActionAmnesty)
}

// apply runs the full action in one database transaction: load, validate,
// transition, spend counter, log. Errors roll everything back.
func (s *Store) apply(ctx context.Context, req league.ActionRequest, kind league.ActionKind) (*league.MutationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rules, season, err := s.leagueRow(ctx, req.LeagueID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	counters, err := countersRow(ctx, tx, req.LeagueID, req.TeamID)
	if err != nil {
		return nil, err
	}

	contract, found, err := contractRowTx(ctx, tx, req.LeagueID, req.TeamID, req.PlayerID)
	if err != nil {
		return nil, err
	}
	if !found {
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

	switch kind {
	case league.ActionContract:
		contract, err = contract.WithNewTerm(req.ContractLength, season)
	case league.ActionRFA:
		contract, err = contract.Tendered(rules, season)
	case league.ActionExtension:
		contract, err = contract.Extended(rules)
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

	if err := saveContractTx(ctx, tx, req.LeagueID, contract); err != nil {
		return nil, err
	}
	if err := saveCountersTx(ctx, tx, req.LeagueID, counters); err != nil {
		return nil, err
	}
	if err := logActivityTx(ctx, tx, req.LeagueID, req.TeamID,
		fmt.Sprintf("%s applied for player %s", kind, req.PlayerID)); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &league.MutationResult{Contract: contract, Counters: counters}, nil
}

func contractRowTx(ctx context.Context, tx *sql.Tx, leagueID league.LeagueID,
	teamID league.TeamID, playerID league.PlayerID) (league.Contract, bool, error) {

	row := tx.QueryRowContext(ctx, selectContractSQL+
		` WHERE league_id = ? AND team_id = ? AND player_id = ?`,
		string(leagueID), string(teamID), string(playerID))
	c, err := scanContract(row)
	if errors.Is(err, sql.ErrNoRows) {
		return league.Contract{}, false, nil
	}
	if err != nil {
		return c, false, err
	}
	return c, true, nil
}

func saveContractTx(ctx context.Context, tx *sql.Tx, leagueID league.LeagueID, c league.Contract) error {
	_, err := tx.ExecContext(ctx, upsertContractSQL,
		c.ID, string(leagueID), string(c.TeamID), string(c.PlayerID), c.LengthYears,
		c.ExtensionYears, int(c.StartSeason), c.AnnualAmount.String(), string(c.Status),
		time.Now().UTC().Format(time.RFC3339))
	return err
}

func saveCountersTx(ctx context.Context, tx *sql.Tx, leagueID league.LeagueID, c league.Counters) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE counters SET season = ?, rfa_left = ?, amnesty_left = ?, extension_left = ?
		WHERE league_id = ? AND team_id = ?`,
		int(c.Season), c.RFALeft, c.AmnestyLeft, c.ExtensionLeft,
		string(leagueID), string(c.TeamID))
	return err
}

func logActivityTx(ctx context.Context, tx *sql.Tx, leagueID league.LeagueID,
	teamID league.TeamID, detail string) error {

	_, err := tx.ExecContext(ctx, `
		INSERT INTO activity (id, league_id, kind, team_id, detail, ts)
		VALUES (?, ?, 'commissioner', ?, ?, ?)`,
		uuid.NewString(), string(leagueID), string(teamID), detail, time.Now().UnixMilli())
	return err
}

// =============================================================================
// MUTATION SERVICE - commissioner batch path
// =============================================================================

func (s *Store) AddCommissionerAction(ctx context.Context, leagueID league.LeagueID, teamID league.TeamID,
	playerID league.PlayerID, actionType league.ActionKind, contractLength int) error {

	_, err := s.apply(ctx, league.ActionRequest{
		LeagueID: leagueID, TeamID: teamID, PlayerID: playerID, ContractLength: contractLength,
	}, actionType)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO commissioner_actions
			(league_id, team_id, player_id, action_type, contract_length, applied_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		string(leagueID), string(teamID), string(playerID), string(actionType),
		contractLength, time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *Store) RemoveCommissionerAction(ctx context.Context, leagueID league.LeagueID, teamID league.TeamID,
	playerID league.PlayerID, actionType league.ActionKind, contractLength int) error {

	s.mu.Lock()
	defer s.mu.Unlock()

	rules, _, err := s.leagueRow(ctx, leagueID)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		DELETE FROM commissioner_actions
		WHERE league_id = ? AND team_id = ? AND player_id = ? AND action_type = ? AND contract_length = ?`,
		string(leagueID), string(teamID), string(playerID), string(actionType), contractLength)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &league.MutationError{
			Op:      "remove_commissioner_action",
			Message: fmt.Sprintf("no recorded %s action for player %s", actionType, playerID),
		}
	}

	contract, found, err := contractRowTx(ctx, tx, leagueID, teamID, playerID)
	if err != nil {
		return err
	}
	if !found {
		return league.ErrContractNotFound
	}

	// Undo the contract effect. Reversing an amnesty here is the one
	// sanctioned path back from amnestied: the commissioner's inverse
	// call, never local state surgery.
	switch actionType {
	case league.ActionContract:
		contract.LengthYears = 0
		contract.ExtensionYears = 0
		contract.Status = league.StatusNone
	case league.ActionAmnesty, league.ActionRFA:
		contract.Status = league.StatusActive
	case league.ActionExtension:
		contract.ExtensionYears -= rules.ExtensionLength
		if contract.ExtensionYears < 0 {
			contract.ExtensionYears = 0
		}
	}

	counters, err := countersRow(ctx, tx, leagueID, teamID)
	if err != nil {
		return err
	}
	counters = counters.Refund(actionType)

	if err := saveContractTx(ctx, tx, leagueID, contract); err != nil {
		return err
	}
	if err := saveCountersTx(ctx, tx, leagueID, counters); err != nil {
		return err
	}
	if err := logActivityTx(ctx, tx, leagueID, teamID,
		fmt.Sprintf("%s removed for player %s", actionType, playerID)); err != nil {
		return err
	}
	return tx.Commit()
}

// =============================================================================
// MUTATION SERVICE - rules & rollover
// =============================================================================

func (s *Store) UpdateLeagueRules(ctx context.Context, leagueID league.LeagueID, update league.RulesUpdate) (*league.Rules, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rules, _, err := s.leagueRow(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	merged := update.Apply(rules)
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE leagues SET cap_limit = ?, max_contract_length = ?, rfa_length = ?,
			extension_length = ?, taxi_slots = ?, rfa_allowed = ?, extension_allowed = ?,
			amnesty_allowed = ?, rollover_every = ?
		WHERE id = ?`,
		merged.CapLimit.String(), merged.MaxContractLength, merged.RFALength,
		merged.ExtensionLength, merged.TaxiSlots, merged.RFAAllowed, merged.ExtensionAllowed,
		merged.AmnestyAllowed, merged.RolloverEvery, string(leagueID))
	if err != nil {
		return nil, err
	}
	return &merged, nil
}

// RolloverSeason advances the league one season: exhausted contracts
// expire and counters reset per the rollover cadence. Commissioner
// triggered, not scheduled.
func (s *Store) RolloverSeason(ctx context.Context, leagueID league.LeagueID) (league.Season, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rules, season, err := s.leagueRow(ctx, leagueID)
	if err != nil {
		return 0, err
	}
	next := season + 1

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	contracts, err := allContractsTx(ctx, tx, leagueID)
	if err != nil {
		return 0, err
	}
	for _, c := range contracts {
		expired := c.ExpireIfDone(next)
		if expired.Status != c.Status {
			if err := saveContractTx(ctx, tx, leagueID, expired); err != nil {
				return 0, err
			}
		}
	}

	counters, err := allCountersTx(ctx, tx, leagueID)
	if err != nil {
		return 0, err
	}
	for _, c := range counters {
		if err := saveCountersTx(ctx, tx, leagueID, c.Rollover(next, rules)); err != nil {
			return 0, err
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE leagues SET current_season = ? WHERE id = ?`, int(next), string(leagueID)); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return next, nil
}

func allContractsTx(ctx context.Context, tx *sql.Tx, leagueID league.LeagueID) ([]league.Contract, error) {
	rows, err := tx.QueryContext(ctx, selectContractSQL+` WHERE league_id = ?`, string(leagueID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []league.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func allCountersTx(ctx context.Context, tx *sql.Tx, leagueID league.LeagueID) ([]league.Counters, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT team_id, season, rfa_left, amnesty_left, extension_left FROM counters WHERE league_id = ?`,
		string(leagueID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []league.Counters
	for rows.Next() {
		var c league.Counters
		var teamID string
		var season int
		if err := rows.Scan(&teamID, &season, &c.RFALeft, &c.AmnestyLeft, &c.ExtensionLeft); err != nil {
			return nil, err
		}
		c.TeamID = league.TeamID(teamID)
		c.Season = league.Season(season)
		out = append(out, c)
	}
	return out, rows.Err()
}
