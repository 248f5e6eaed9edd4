package abc

import (
	"sort"
	"strings"

	"github.com/sellerpulse/sellerpulse-backend/internal/abc/types"
)

const defaultPageLimit = 25

// pageResult is the filtered, sorted slice for one page plus its envelope.
type pageResult struct {
	rows  []types.Row
	total int
	page  int
	limit int
}

// applyQuery filters by tier and free text, sorts by the requested key, and
// slices out one page. The limit clamps to maxLimit so enrichment fan-out
// stays bounded.
func applyQuery(rows []types.Row, req types.ItemsRequest, maxLimit int) pageResult {
	filtered := make([]types.Row, 0, len(rows))
	needle := strings.ToLower(strings.TrimSpace(req.Query))
	for _, row := range rows {
		if req.Tier != "" && row.Tier != req.Tier {
			continue
		}
		if needle != "" && !matches(row, needle) {
			continue
		}
		filtered = append(filtered, row)
	}

	SortRows(filtered, req.Sort)

	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}

	start := (page - 1) * limit
	end := start + limit
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	return pageResult{
		rows:  filtered[start:end],
		total: len(filtered),
		page:  page,
		limit: limit,
	}
}

func matches(row types.Row, needle string) bool {
	return strings.Contains(strings.ToLower(row.ProductID), needle) ||
		strings.Contains(strings.ToLower(row.VariationID), needle) ||
		strings.Contains(strings.ToLower(row.Title), needle)
}

// SortRows orders rows descending by the requested key. The export assembler
// reuses it to order the reassembled full set.
func SortRows(rows []types.Row, key types.SortKey) {
	sort.SliceStable(rows, func(i, j int) bool {
		switch key {
		case types.SortRevenue:
			return rows[i].RevenueCents > rows[j].RevenueCents
		case types.SortCumulativeShare:
			return rows[i].CumulativeShare > rows[j].CumulativeShare
		default:
			return rows[i].Units > rows[j].Units
		}
	})
}
