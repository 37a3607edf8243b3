package nodekit

import (
	"context"
	"fmt"
)

const (
	// DefaultPerPage is the page size requested by paginated list calls
	DefaultPerPage = 100
	// MaxPages stops a paginator that never returns a short page
	MaxPages = 1000
)

// PageFetcher fetches one page (1-based) of perPage records
type PageFetcher func(ctx context.Context, page, perPage int) (any, error)

// PaginateAll requests pages 1, 2, ... until a page holds fewer than perPage
// records or is empty. Pages may be a bare JSON array or an envelope with the
// records under "items" or "data".
func PaginateAll(ctx context.Context, perPage int, fetch PageFetcher) ([]any, error) {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	var all []any
	for page := 1; page <= MaxPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := fetch(ctx, page, perPage)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		records := PageRecords(res)
		all = append(all, records...)
		if len(records) < perPage {
			break
		}
	}
	if all == nil {
		all = []any{}
	}
	return all, nil
}

// PageRecords extracts the records of one page
func PageRecords(page any) []any {
	switch v := decodeJSONValue(page).(type) {
	case []any:
		return v
	case map[string]any:
		for _, key := range []string{"items", "data"} {
			if list, ok := v[key].([]any); ok {
				return list
			}
		}
	}
	return nil
}
