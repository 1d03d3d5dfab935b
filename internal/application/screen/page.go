package screen

// Page is one client-side slice of a list. HasPrev and HasNext drive the
// enabled state of the navigation controls.
type Page[T any] struct {
	Items      []T
	Number     int
	Size       int
	TotalPages int
	Total      int
	HasPrev    bool
	HasNext    bool
}

// Paginate slices items into the requested page. The page number is clamped
// to [1, TotalPages]; an empty list still has one (empty) page.
func Paginate[T any](items []T, number, size int) Page[T] {
	if size < 1 {
		size = 1
	}
	total := len(items)
	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	number = clampPage(number, pages)

	start := (number - 1) * size
	end := min(start+size, total)
	slice := make([]T, 0, end-start)
	if start < end {
		slice = append(slice, items[start:end]...)
	}
	return Page[T]{
		Items:      slice,
		Number:     number,
		Size:       size,
		TotalPages: pages,
		Total:      total,
		HasPrev:    number > 1,
		HasNext:    number < pages,
	}
}

func clampPage(n, pages int) int {
	if n < 1 {
		return 1
	}
	if n > pages {
		return pages
	}
	return n
}
