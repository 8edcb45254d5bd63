/*
Package activity merges league activity into one paginated feed.

PURPOSE:
  Two item families become a single chronological-ish feed:
  (a) locally-implied items derived from confirmed contract state
      (contract / amnesty / rfa / extension), labeled with a readable
      summary, and
  (b) remote transaction-history items (trade, waiver, free agent, draft,
      commissioner) with team IDs resolved to display names.

PAGINATION:
  Strictly forward-only offset/limit. hasMore = len(items) == limit: a
  full page implies more may exist, a short page is the terminal signal.
  This is a heuristic, not proof - when the remaining count is an exact
  multiple of the page size the feed reports one extra empty fetch. Known
  imprecision, kept as-is.

TIMESTAMPS:
  Normalized to milliseconds with the original heuristic boundaries:
  values >= 1e12 are already milliseconds; values < 1e10 look like
  seconds and are scaled x1000; the band between is ambiguous and passes
  through unchanged. The true unit convention per source is unspecified,
  so no stricter detection is invented.
*/
package activity

import (
	"context"
	"fmt"
	"sort"

	"github.com/warp/cap-engine/league"
)

// =============================================================================
// FEED ITEMS
// =============================================================================

// Category tags a feed item for display grouping.
type Category string

const (
	CategoryContract     Category = "contract"
	CategoryAmnesty      Category = "amnesty"
	CategoryRFA          Category = "rfa"
	CategoryExtension    Category = "extension"
	CategoryTrade        Category = "trade"
	CategoryWaiver       Category = "waiver"
	CategoryFreeAgent    Category = "free_agent"
	CategoryDraft        Category = "draft"
	CategoryCommissioner Category = "commissioner"
	CategoryOther        Category = "other"
)

// Item is one feed entry. Timestamp is epoch milliseconds after
// normalization.
type Item struct {
	ID        string
	Category  Category
	TeamID    league.TeamID
	TeamName  string
	Summary   string
	Timestamp int64
}

// Page is one slice of the feed.
type Page struct {
	Items   []Item
	HasMore bool
}

// =============================================================================
// TIMESTAMP NORMALIZATION
// =============================================================================

const (
	millisFloor = 1_000_000_000_000 // 1e12: at or above, already milliseconds
	secondsCeil = 10_000_000_000    // 1e10: below, treat as seconds
)

// NormalizeMillis coerces a mixed-unit epoch value to milliseconds.
// Values in [1e10, 1e12) are ambiguous and pass through unchanged.
func NormalizeMillis(ts int64) int64 {
	if ts >= millisFloor {
		return ts
	}
	if ts < secondsCeil {
		return ts * 1000
	}
	return ts
}

// =============================================================================
// LOADING
// =============================================================================

// remoteCategory maps provider kinds onto feed categories.
func remoteCategory(kind string) Category {
	switch kind {
	case "trade":
		return CategoryTrade
	case "waiver":
		return CategoryWaiver
	case "free_agent":
		return CategoryFreeAgent
	case "draft":
		return CategoryDraft
	case "commissioner":
		return CategoryCommissioner
	}
	return CategoryOther
}

// LocalItems derives feed entries from confirmed contract state. Only
// non-default statuses and live terms imply an action worth showing.
func LocalItems(contracts []league.Contract, players map[league.PlayerID]league.Player,
	teamNames map[league.TeamID]string, nowMillis int64) []Item {

	var items []Item
	for _, c := range contracts {
		name := string(c.PlayerID)
		if p, ok := players[c.PlayerID]; ok {
			name = p.Name
		}

		var cat Category
		var summary string
		switch {
		case c.Status == league.StatusAmnestied:
			cat = CategoryAmnesty
			summary = fmt.Sprintf("%s amnestied (%s/yr off the books)", name, c.AnnualAmount)
		case c.Status == league.StatusRFA:
			cat = CategoryRFA
			summary = fmt.Sprintf("%s tendered as RFA for %d year(s)", name, c.LengthYears)
		case c.Status == league.StatusActive && c.IsExtended():
			cat = CategoryExtension
			summary = fmt.Sprintf("%s extended by %d year(s) through %d", name, c.ExtensionYears, c.EndSeason())
		case c.Status == league.StatusActive && c.LengthYears > 0:
			cat = CategoryContract
			summary = fmt.Sprintf("%s signed for %d year(s) at %s/yr", name, c.LengthYears, c.AnnualAmount)
		default:
			continue
		}

		items = append(items, Item{
			ID:        "local-" + c.ID,
			Category:  cat,
			TeamID:    c.TeamID,
			TeamName:  teamNames[c.TeamID],
			Summary:   summary,
			Timestamp: nowMillis,
		})
	}
	return items
}

// LoadPage fetches one page of the merged feed. Locally-derived items are
// merged into the first page only (offset 0); deeper pages are pure remote
// history, so an item never repeats across pages.
func LoadPage(ctx context.Context, provider league.DataProvider, leagueID league.LeagueID,
	teamNames map[league.TeamID]string, local []Item, offset, limit int) (*Page, error) {

	if limit <= 0 {
		return &Page{}, nil
	}
	if offset < 0 {
		offset = 0
	}

	remote, err := provider.Activity(ctx, leagueID, offset, limit)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(remote)+len(local))
	if offset == 0 {
		items = append(items, local...)
	}
	for _, r := range remote {
		items = append(items, Item{
			ID:        r.ID,
			Category:  remoteCategory(r.Kind),
			TeamID:    r.TeamID,
			TeamName:  teamNames[r.TeamID],
			Summary:   r.Detail,
			Timestamp: NormalizeMillis(r.Timestamp),
		})
	}

	// Newest first. Stable so same-timestamp local items keep their
	// derivation order.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp > items[j].Timestamp
	})

	// hasMore reflects the REMOTE page fill, not the merged length: local
	// items ride along on page one and say nothing about remote depth.
	return &Page{
		Items:   items,
		HasMore: len(remote) == limit,
	}, nil
}
