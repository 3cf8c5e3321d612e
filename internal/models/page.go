package models

// Page is an optional window over a listing. A zero Limit means no limit.
type Page struct {
	Limit  int
	Offset int
}

// Apply slices items according to the page.
func Apply[T any](items []T, p Page) []T {
	if p.Offset >= len(items) {
		return []T{}
	}
	items = items[p.Offset:]
	if p.Limit > 0 && p.Limit < len(items) {
		items = items[:p.Limit]
	}
	return items
}
