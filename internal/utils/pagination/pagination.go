package pagination

// DefaultPageSize is the number of rows per history page.
const DefaultPageSize = 10

// Page is one slice of a larger result set.
type Page[T any] struct {
	Items       []T
	CurrentPage int
	PerPage     int
	TotalItems  int
	TotalPages  int
}

// TotalPages calculates the number of pages based on the total items and items per page.
func TotalPages(totalItems, limit int) int {
	if limit < 1 || totalItems < 1 {
		return 0
	}
	pages := totalItems / limit
	if totalItems%limit > 0 {
		pages++
	}
	return pages
}

// Paginate returns the 1-based page of items. A page outside
// [1, TotalPages] yields an empty Items slice; size < 1 uses DefaultPageSize.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size < 1 {
		size = DefaultPageSize
	}
	p := Page[T]{
		Items:       []T{},
		CurrentPage: page,
		PerPage:     size,
		TotalItems:  len(items),
		TotalPages:  TotalPages(len(items), size),
	}
	if page < 1 || page > p.TotalPages {
		return p
	}

	start := (page - 1) * size
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	p.Items = items[start:end]
	return p
}
