// Package service contains the business logic layer: request validation,
// invariant enforcement, and pagination. Handlers parse HTTP and delegate
// here; repositories persist what this layer hands them. Services depend on
// repository interfaces only, so tests swap in in-memory mocks.
package service

// Pagination works by over-fetching a single look-ahead row: when a caller
// asks for a page of L entries, the storage query requests L+1. Getting
// L+1 rows back proves more entries exist beyond the page without a second
// COUNT round trip; the extra row is discarded before the page is returned.
//
// The "more entries" signal is deliberately tri-state. With no limit there
// IS no page boundary, so the question "are there more?" doesn't apply —
// that case returns nil, which the handler maps to "no More-Entries header
// at all", distinct from a present header saying false.

// fetchLimit converts a requested page size into the row count to ask
// storage for. Zero (no limit) stays zero: fetch everything, no look-ahead.
func fetchLimit(limit int) int {
	if limit > 0 {
		return limit + 1
	}
	return 0
}

// trimPage cuts an over-fetched result back to the requested page size.
// Returns the page plus the tri-state more-entries signal: nil when no limit
// was requested, otherwise whether a look-ahead row was present.
func trimPage[T any](items []T, limit int) ([]T, *bool) {
	if limit <= 0 {
		return items, nil
	}

	more := len(items) > limit
	if more {
		items = items[:limit]
	}
	return items, &more
}
