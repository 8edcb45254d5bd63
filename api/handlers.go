/*
handlers.go - HTTP API handlers for the cap engine

PURPOSE:
  Exposes the engine via REST. Handlers parse HTTP, run local validation,
  delegate to the league/commish/activity packages, and serialize
  responses. All state lives behind the Backend interface.

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input locally (never forward a request that fails here)
  3. Call domain logic
  4. Serialize response
  5. Map errors to status codes

ERROR HANDLING:
  - 400: Validation errors (bad length, unknown action kind, bad JSON)
  - 404: League / team / player / contract not found
  - 409: Resource counter exhausted, reconcile partial failure
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - metrics.go: Prometheus counters
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/cap-engine/activity"
	"github.com/warp/cap-engine/commish"
	"github.com/warp/cap-engine/factory"
	"github.com/warp/cap-engine/league"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Backend is everything the handlers need from storage: the read side,
// the write side, and the season-rollover admin operation.
type Backend interface {
	league.DataProvider
	league.MutationService
	RolloverSeason(ctx context.Context, leagueID league.LeagueID) (league.Season, error)
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Backend Backend
}

// NewHandler creates a handler over the given backend.
func NewHandler(backend Backend) *Handler {
	return &Handler{Backend: backend}
}

func leagueParam(r *http.Request) league.LeagueID {
	return league.LeagueID(chi.URLParam(r, "leagueID"))
}

func teamParam(r *http.Request) league.TeamID {
	return league.TeamID(chi.URLParam(r, "teamID"))
}

// =============================================================================
// PROJECTION / CAP
// =============================================================================

// GetProjection returns the team's multi-season cap series plus the
// league average (falling back to the team's own series in an otherwise
// empty league).
func (h *Handler) GetProjection(w http.ResponseWriter, r *http.Request) {
	leagueID, teamID := leagueParam(r), teamParam(r)

	horizon := league.DefaultHorizon
	if v := r.URL.Query().Get("horizon"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid horizon", err)
			return
		}
		horizon = n
	}

	rosters, byTeam, err := h.leagueState(r.Context(), leagueID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if _, ok := byTeam[teamID]; !ok && !teamExists(rosters, teamID) {
		writeError(w, http.StatusNotFound, "team not found", nil)
		return
	}

	own := league.ProjectTeam(byTeam[teamID], rosters.Rules, rosters.CurrentSeason, horizon)
	others := make(map[league.TeamID][]league.Contract, len(byTeam))
	for id, cs := range byTeam {
		if id != teamID {
			others[id] = cs
		}
	}
	avg := league.AverageOrSelf(others, byTeam[teamID], rosters.Rules, rosters.CurrentSeason, horizon)

	dto := ProjectionDTO{TeamID: string(teamID)}
	for _, s := range own {
		dto.Team = append(dto.Team, snapshotDTO(s))
	}
	for _, s := range avg {
		dto.LeagueAverage = append(dto.LeagueAverage, snapshotDTO(s))
	}
	writeJSON(w, http.StatusOK, dto)
}

// GetCap returns the current-season snapshot only.
func (h *Handler) GetCap(w http.ResponseWriter, r *http.Request) {
	leagueID, teamID := leagueParam(r), teamParam(r)

	rosters, byTeam, err := h.leagueState(r.Context(), leagueID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if _, ok := byTeam[teamID]; !ok && !teamExists(rosters, teamID) {
		writeError(w, http.StatusNotFound, "team not found", nil)
		return
	}

	snap := league.CurrentCap(byTeam[teamID], rosters.Rules, rosters.CurrentSeason)
	writeJSON(w, http.StatusOK, snapshotDTO(snap))
}

// GetEligibility returns the ledger booleans and raw counters.
func (h *Handler) GetEligibility(w http.ResponseWriter, r *http.Request) {
	c, err := h.Backend.TeamCounters(r.Context(), leagueParam(r), teamParam(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eligibilityDTO(*c))
}

func eligibilityDTO(c league.Counters) EligibilityDTO {
	return EligibilityDTO{
		TeamID:        string(c.TeamID),
		Season:        int(c.Season),
		CanRFA:        c.CanRFA(),
		CanAmnesty:    c.CanAmnesty(),
		CanExtend:     c.CanExtend(),
		RFALeft:       c.RFALeft,
		AmnestyLeft:   c.AmnestyLeft,
		ExtensionLeft: c.ExtensionLeft,
	}
}

// GetRoster returns a team's contracts sorted by position rank, then
// annual amount descending, with current cap totals.
func (h *Handler) GetRoster(w http.ResponseWriter, r *http.Request) {
	leagueID, teamID := leagueParam(r), teamParam(r)

	rosters, byTeam, err := h.leagueState(r.Context(), leagueID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var teamName string
	players := make(map[league.PlayerID]league.Player)
	found := false
	for _, t := range rosters.Teams {
		if t.ID == teamID {
			teamName = t.Name
			found = true
			for _, p := range t.Players {
				players[p.ID] = p
			}
		}
	}
	if !found {
		writeError(w, http.StatusNotFound, "team not found", nil)
		return
	}

	contracts := byTeam[teamID]
	sort.SliceStable(contracts, func(i, j int) bool {
		pi, pj := players[contracts[i].PlayerID], players[contracts[j].PlayerID]
		if ri, rj := pi.Position.SortRank(), pj.Position.SortRank(); ri != rj {
			return ri < rj
		}
		return contracts[i].AnnualAmount.GreaterThan(contracts[j].AnnualAmount)
	})

	snap := league.CurrentCap(contracts, rosters.Rules, rosters.CurrentSeason)
	dto := RosterDTO{
		TeamID:       string(teamID),
		TeamName:     teamName,
		Season:       int(rosters.CurrentSeason),
		CapUsed:      snap.CapUsed.String(),
		CapRemaining: snap.CapRemaining.String(),
	}
	for _, c := range contracts {
		dto.Contracts = append(dto.Contracts, contractDTO(c, players))
	}
	writeJSON(w, http.StatusOK, dto)
}

func contractDTO(c league.Contract, players map[league.PlayerID]league.Player) ContractDTO {
	d := ContractDTO{
		PlayerID:       string(c.PlayerID),
		LengthYears:    c.LengthYears,
		ExtensionYears: c.ExtensionYears,
		StartSeason:    int(c.StartSeason),
		EndSeason:      int(c.EndSeason()),
		AnnualAmount:   c.AnnualAmount.String(),
		Status:         string(c.Status),
	}
	if p, ok := players[c.PlayerID]; ok {
		d.PlayerName = p.Name
		d.Position = string(p.Position)
	}
	return d
}

// =============================================================================
// SINGLE ACTIONS
// =============================================================================

// SubmitAction handles POST /actions/{kind}. Local validation runs before
// the mutation call; a request failing it never reaches the backend's
// write path.
func (h *Handler) SubmitAction(w http.ResponseWriter, r *http.Request) {
	kind := league.ActionKind(chi.URLParam(r, "kind"))
	if !league.ValidKind(kind) {
		writeError(w, http.StatusBadRequest, "unknown action kind", nil)
		mutations.WithLabelValues(string(kind), "invalid").Inc()
		return
	}

	var req ActionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	leagueID := leagueParam(r)
	areq := league.ActionRequest{
		LeagueID:       leagueID,
		TeamID:         league.TeamID(req.TeamID),
		PlayerID:       league.PlayerID(req.PlayerID),
		ContractLength: req.ContractLength,
	}

	// Pre-flight check against the current snapshot. The backend
	// revalidates inside its transaction; this pass exists so validation
	// failures never produce a mutation call at all.
	if err := h.preflight(r.Context(), areq, kind); err != nil {
		mutations.WithLabelValues(string(kind), "rejected").Inc()
		writeDomainError(w, err)
		return
	}

	var (
		res *league.MutationResult
		err error
	)
	switch kind {
	case league.ActionContract:
		res, err = h.Backend.AddContract(r.Context(), areq)
	case league.ActionRFA:
		res, err = h.Backend.AddRFA(r.Context(), areq)
	case league.ActionExtension:
		res, err = h.Backend.AddExtension(r.Context(), areq)
	case league.ActionAmnesty:
		res, err = h.Backend.AddAmnesty(r.Context(), areq)
	}
	if err != nil {
		mutations.WithLabelValues(string(kind), "error").Inc()
		writeDomainError(w, err)
		return
	}

	mutations.WithLabelValues(string(kind), "ok").Inc()
	writeJSON(w, http.StatusOK, ActionResultDTO{
		Contract: contractDTO(res.Contract, nil),
		Counters: eligibilityDTO(res.Counters),
	})
}

func (h *Handler) preflight(ctx context.Context, req league.ActionRequest, kind league.ActionKind) error {
	counters, err := h.Backend.TeamCounters(ctx, req.LeagueID, req.TeamID)
	if err != nil {
		return err
	}
	contracts, err := h.Backend.AllContracts(ctx, req.LeagueID)
	if err != nil {
		return err
	}
	contract := league.Contract{
		TeamID: req.TeamID, PlayerID: req.PlayerID, Status: league.StatusNone,
	}
	for _, c := range contracts {
		if c.TeamID == req.TeamID && c.PlayerID == req.PlayerID {
			contract = c
			break
		}
	}
	return league.ValidateAction(kind, contract, *counters, req.ContractLength)
}

// =============================================================================
// RECONCILIATION
// =============================================================================

// Reconcile applies a commissioner batch edit: removals before additions
// per team, sequential, not atomic. Partial failures report every applied
// op plus the one that stopped the batch.
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	original := toDomainSets(req.Original)
	current := toDomainSets(req.Current)

	result, err := commish.Reconcile(r.Context(), h.Backend, leagueParam(r), original, current)
	if err != nil {
		var partial *commish.PartialBatchError
		if errors.As(err, &partial) {
			resp := ReconcileResponse{Error: partial.Err.Error()}
			for _, op := range partial.Applied {
				resp.Applied = append(resp.Applied, opDTO(op))
				reconcileOps.WithLabelValues(string(op.Direction), "ok").Inc()
			}
			failed := opDTO(partial.Failed)
			resp.Failed = &failed
			reconcileOps.WithLabelValues(string(partial.Failed.Direction), "error").Inc()
			writeJSON(w, http.StatusConflict, resp)
			return
		}
		writeDomainError(w, err)
		return
	}

	resp := ReconcileResponse{Applied: []OpDTO{}}
	for _, op := range result.Applied {
		resp.Applied = append(resp.Applied, opDTO(op))
		reconcileOps.WithLabelValues(string(op.Direction), "ok").Inc()
	}
	writeJSON(w, http.StatusOK, resp)
}

func toDomainSets(in map[string][]PendingActionDTO) map[league.TeamID][]commish.PendingAction {
	out := make(map[league.TeamID][]commish.PendingAction, len(in))
	for teamID, actions := range in {
		list := make([]commish.PendingAction, 0, len(actions))
		for _, a := range actions {
			da := a.toDomain()
			da.TeamID = league.TeamID(teamID)
			list = append(list, da)
		}
		out[league.TeamID(teamID)] = list
	}
	return out
}

// =============================================================================
// ACTIVITY
// =============================================================================

// GetActivity returns one page of the merged feed.
func (h *Handler) GetActivity(w http.ResponseWriter, r *http.Request) {
	leagueID := leagueParam(r)

	offset, limit := 0, 20
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit", err)
			return
		}
		limit = n
	}

	rosters, byTeam, err := h.leagueState(r.Context(), leagueID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	teamNames := make(map[league.TeamID]string, len(rosters.Teams))
	players := make(map[league.PlayerID]league.Player)
	for _, t := range rosters.Teams {
		teamNames[t.ID] = t.Name
		for _, p := range t.Players {
			players[p.ID] = p
		}
	}
	var all []league.Contract
	for _, cs := range byTeam {
		all = append(all, cs...)
	}
	local := activity.LocalItems(all, players, teamNames, time.Now().UnixMilli())

	page, err := activity.LoadPage(r.Context(), h.Backend, leagueID, teamNames, local, offset, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, activityPageDTO(page))
}

// =============================================================================
// ADMIN
// =============================================================================

// UpdateRules merges a partial rules edit through the mutation service.
func (h *Handler) UpdateRules(w http.ResponseWriter, r *http.Request) {
	var j factory.RulesJSON
	if err := json.NewDecoder(r.Body).Decode(&j); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	rules, err := h.Backend.UpdateLeagueRules(r.Context(), leagueParam(r), j.ToUpdate())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, factory.FromRules(*rules))
}

// Rollover advances the league one season.
func (h *Handler) Rollover(w http.ResponseWriter, r *http.Request) {
	season, err := h.Backend.RolloverSeason(r.Context(), leagueParam(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"current_season": int(season)})
}

// =============================================================================
// HELPERS
// =============================================================================

// leagueState loads the roster snapshot and groups contracts by team.
func (h *Handler) leagueState(ctx context.Context, leagueID league.LeagueID) (*league.RosterData, map[league.TeamID][]league.Contract, error) {
	rosters, err := h.Backend.Rosters(ctx, leagueID, "")
	if err != nil {
		return nil, nil, err
	}
	contracts, err := h.Backend.AllContracts(ctx, leagueID)
	if err != nil {
		return nil, nil, err
	}
	byTeam := make(map[league.TeamID][]league.Contract)
	for _, c := range contracts {
		byTeam[c.TeamID] = append(byTeam[c.TeamID], c)
	}
	return rosters, byTeam, nil
}

func teamExists(rosters *league.RosterData, teamID league.TeamID) bool {
	for _, t := range rosters.Teams {
		if t.ID == teamID {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	dto := ErrorDTO{Error: msg}
	if err != nil {
		dto.Details = err.Error()
	}
	writeJSON(w, status, dto)
}

// writeDomainError maps engine errors onto status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, league.ErrResourceExhausted):
		writeError(w, http.StatusConflict, "resource counter exhausted", err)
	case league.IsValidation(err):
		writeError(w, http.StatusBadRequest, "validation failed", err)
	case league.IsNotFound(err):
		writeError(w, http.StatusNotFound, "not found", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal error", err)
	}
}
