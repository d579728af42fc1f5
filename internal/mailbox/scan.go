package mailbox

import "context"

// DefaultScanCeiling bounds the total number of items one call pages
// through when no explicit ceiling is configured. The ceiling is
// independent of the caller's result limit: grouping flat messages into
// threads legitimately needs to see more items than it returns.
const DefaultScanCeiling = 1000

// Page is one page of a provider listing. Next is the cursor for the
// following page: an opaque pageToken for Gmail, a full next-link URL for
// Graph. Empty means the scan is complete.
type Page[T any] struct {
	Items []T
	Next  string
}

// PageFunc fetches one page. The first call receives an empty cursor.
type PageFunc[T any] func(ctx context.Context, cursor string) (Page[T], error)

// Scan drives a multi-page listing until the provider signals completion,
// the accumulated item count reaches ceiling, or a page comes back empty.
// The empty-page stop is defensive termination against malformed
// "more pages" signaling; without it a provider that keeps returning a
// cursor with no items would loop forever. Pages are fetched sequentially
// because each cursor depends on the previous response.
func Scan[T any](ctx context.Context, fetch PageFunc[T], ceiling int) ([]T, error) {
	if ceiling <= 0 {
		ceiling = DefaultScanCeiling
	}

	var items []T
	cursor := ""
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := fetch(ctx, cursor)
		if err != nil {
			return nil, err
		}
		if len(page.Items) == 0 {
			return items, nil
		}

		items = append(items, page.Items...)
		if len(items) >= ceiling {
			return items[:ceiling], nil
		}
		if page.Next == "" {
			return items, nil
		}
		cursor = page.Next
	}
}
