// Package paginate splits ordered lists into fixed-size pages.
package paginate

// DefaultSize is the number of posts shown per list page.
const DefaultSize = 4

// DefaultWindow is the number of page buttons the paginator shows.
const DefaultWindow = 5

// Pages splits items into consecutive pages of up to size items. The last
// page may be shorter. An empty input yields no pages. A size of zero or less
// puts every item on a single page.
func Pages[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 {
		size = len(items)
	}
	pages := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		pages = append(pages, items[start:end:end])
	}
	return pages
}

// At returns the page at index, or false when index is out of range.
func At[T any](pages [][]T, index int) ([]T, bool) {
	if index < 0 || index >= len(pages) {
		return nil, false
	}
	return pages[index], true
}

// Window returns up to width consecutive page indexes around current,
// shifted so that they stay within [0, total).
func Window(current, total, width int) []int {
	if total <= 0 || width <= 0 {
		return nil
	}
	if width > total {
		width = total
	}
	start := current - width/2
	if start > total-width {
		start = total - width
	}
	if start < 0 {
		start = 0
	}
	out := make([]int, width)
	for i := range out {
		out[i] = start + i
	}
	return out
}
