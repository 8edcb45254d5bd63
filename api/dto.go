/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract. Money values
  are rendered as decimal strings to avoid float drift on the wire.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers and the league package, not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/rules.go: RulesJSON wire form
*/
package api

import (
	"github.com/warp/cap-engine/activity"
	"github.com/warp/cap-engine/commish"
	"github.com/warp/cap-engine/league"
)

// =============================================================================
// PROJECTION / CAP
// =============================================================================

// SnapshotDTO is one projected season for a team.
type SnapshotDTO struct {
	Season       int    `json:"season"`
	Offset       int    `json:"offset"`
	CapUsed      string `json:"cap_used"`
	CapRemaining string `json:"cap_remaining"`
	OverCap      bool   `json:"over_cap"`
	NearCap      bool   `json:"near_cap"`
}

func snapshotDTO(s league.SeasonCapSnapshot) SnapshotDTO {
	return SnapshotDTO{
		Season:       int(s.Season),
		Offset:       s.Offset,
		CapUsed:      s.CapUsed.String(),
		CapRemaining: s.CapRemaining.String(),
		OverCap:      s.OverCap(),
		NearCap:      s.NearCap(),
	}
}

// ProjectionDTO pairs a team's series with the league-average series.
type ProjectionDTO struct {
	TeamID        string        `json:"team_id"`
	Team          []SnapshotDTO `json:"team_series"`
	LeagueAverage []SnapshotDTO `json:"league_average"`
}

// =============================================================================
// ELIGIBILITY / ROSTER
// =============================================================================

// EligibilityDTO exposes the ledger's booleans plus the raw counters.
type EligibilityDTO struct {
	TeamID        string `json:"team_id"`
	Season        int    `json:"season"`
	CanRFA        bool   `json:"can_rfa"`
	CanAmnesty    bool   `json:"can_amnesty"`
	CanExtend     bool   `json:"can_extend"`
	RFALeft       int    `json:"rfa_left"`
	AmnestyLeft   int    `json:"amnesty_left"`
	ExtensionLeft int    `json:"extension_left"`
}

// ContractDTO is one roster contract.
type ContractDTO struct {
	PlayerID       string `json:"player_id"`
	PlayerName     string `json:"player_name,omitempty"`
	Position       string `json:"position,omitempty"`
	LengthYears    int    `json:"length_years"`
	ExtensionYears int    `json:"extension_years"`
	StartSeason    int    `json:"start_season"`
	EndSeason      int    `json:"end_season"`
	AnnualAmount   string `json:"annual_amount"`
	Status         string `json:"status"`
}

// RosterDTO is a team's contracts with current-season cap totals.
type RosterDTO struct {
	TeamID       string        `json:"team_id"`
	TeamName     string        `json:"team_name"`
	Season       int           `json:"season"`
	CapUsed      string        `json:"cap_used"`
	CapRemaining string        `json:"cap_remaining"`
	Contracts    []ContractDTO `json:"contracts"`
}

// =============================================================================
// ACTIONS
// =============================================================================

// ActionRequestDTO submits a single roster action.
type ActionRequestDTO struct {
	TeamID         string `json:"team_id"`
	PlayerID       string `json:"player_id"`
	ContractLength int    `json:"contract_length,omitempty"`
}

// ActionResultDTO returns the refreshed state after a confirmed action.
type ActionResultDTO struct {
	Contract ContractDTO    `json:"contract"`
	Counters EligibilityDTO `json:"counters"`
}

// =============================================================================
// RECONCILIATION
// =============================================================================

// PendingActionDTO is one staged commissioner edit.
type PendingActionDTO struct {
	TeamID         string `json:"team_id"`
	PlayerID       string `json:"player_id"`
	Type           string `json:"type"`
	ContractLength int    `json:"contract_length,omitempty"`
}

func (d PendingActionDTO) toDomain() commish.PendingAction {
	return commish.PendingAction{
		TeamID:         league.TeamID(d.TeamID),
		PlayerID:       league.PlayerID(d.PlayerID),
		Kind:           league.ActionKind(d.Type),
		ContractLength: d.ContractLength,
	}
}

// ReconcileRequest carries the original and edited per-team action sets.
type ReconcileRequest struct {
	Original map[string][]PendingActionDTO `json:"original"`
	Current  map[string][]PendingActionDTO `json:"current"`
}

// OpDTO is one applied (or failed) operation.
type OpDTO struct {
	Direction string `json:"direction"`
	TeamID    string `json:"team_id"`
	Type      string `json:"type"`
	PlayerID  string `json:"player_id"`
	Length    int    `json:"contract_length,omitempty"`
}

func opDTO(op commish.Op) OpDTO {
	return OpDTO{
		Direction: string(op.Direction),
		TeamID:    string(op.TeamID),
		Type:      string(op.Action.Kind),
		PlayerID:  string(op.Action.PlayerID),
		Length:    op.Action.ContractLength,
	}
}

// ReconcileResponse reports a batch outcome. On partial failure Applied
// holds what already took effect and Failed identifies the stopping op.
type ReconcileResponse struct {
	Applied []OpDTO `json:"applied"`
	Failed  *OpDTO  `json:"failed,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// =============================================================================
// ACTIVITY
// =============================================================================

// ActivityItemDTO is one feed entry.
type ActivityItemDTO struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	TeamID    string `json:"team_id"`
	TeamName  string `json:"team_name,omitempty"`
	Summary   string `json:"summary"`
	Timestamp int64  `json:"timestamp"`
}

// ActivityPageDTO is one page of the merged feed.
type ActivityPageDTO struct {
	Items   []ActivityItemDTO `json:"items"`
	HasMore bool              `json:"has_more"`
}

func activityPageDTO(p *activity.Page) ActivityPageDTO {
	items := make([]ActivityItemDTO, len(p.Items))
	for i, it := range p.Items {
		items[i] = ActivityItemDTO{
			ID:        it.ID,
			Category:  string(it.Category),
			TeamID:    string(it.TeamID),
			TeamName:  it.TeamName,
			Summary:   it.Summary,
			Timestamp: it.Timestamp,
		}
	}
	return ActivityPageDTO{Items: items, HasMore: p.HasMore}
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorDTO is the uniform error body.
type ErrorDTO struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
