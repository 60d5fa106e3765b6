package domain

// Page is one page of a paginated listing
type Page[T any] struct {
	Items  []T
	Number int
	Total  int
}

// Paginate slices items into pages of size perPage. The page number is clamped into range.
func Paginate[T any](items []T, page, perPage int) Page[T] {
	if perPage <= 0 {
		perPage = 1
	}
	total := (len(items) + perPage - 1) / perPage
	if total == 0 {
		total = 1
	}
	if page < 1 {
		page = 1
	}
	if page > total {
		page = total
	}

	start := (page - 1) * perPage
	end := start + perPage
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}

	return Page[T]{Items: items[start:end], Number: page, Total: total}
}
