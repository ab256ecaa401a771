// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PublicPageSize is the number of listings per page on the public catalog.
const PublicPageSize = 12

// Unlimited as a page size puts every item on a single page (admin table).
const Unlimited = 0

// Page is one slice of a list plus the indicators a pager needs.
type Page[T any] struct {
	Items      []T  `json:"items"`
	Number     int  `json:"page"`
	Size       int  `json:"page_size"`
	TotalItems int  `json:"total_items"`
	TotalPages int  `json:"total_pages"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
}

// TotalPages returns ceil(n/pageSize), never less than 1.
// pageSize <= 0 means a single page.
func TotalPages(n, pageSize int) int {
	if pageSize <= 0 || n == 0 {
		return 1
	}
	return (n + pageSize - 1) / pageSize
}

// Clamp forces pageNumber into [1, totalPages].
func Clamp(pageNumber, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if pageNumber < 1 {
		return 1
	}
	if pageNumber > totalPages {
		return totalPages
	}
	return pageNumber
}

// Paginate returns page pageNumber (1-based) of items. Out-of-range page
// numbers are clamped. The returned Items slice is a copy.
func Paginate[T any](items []T, pageSize, pageNumber int) Page[T] {
	total := TotalPages(len(items), pageSize)
	n := Clamp(pageNumber, total)

	start, end := 0, len(items)
	if pageSize > 0 {
		start = (n - 1) * pageSize
		end = start + pageSize
		if end > len(items) {
			end = len(items)
		}
	}

	out := make([]T, end-start)
	copy(out, items[start:end])

	size := pageSize
	if size <= 0 {
		size = len(items)
	}
	return Page[T]{
		Items:      out,
		Number:     n,
		Size:       size,
		TotalItems: len(items),
		TotalPages: total,
		HasPrev:    n > 1,
		HasNext:    n < total,
	}
}

// ParsePage extracts the 1-based "page" query parameter.
// Returns 1 if not present or invalid.
func ParsePage(r *http.Request) int {
	return parsePositive(query.Get(r, "page"), 1)
}

// ParsePageSize extracts the "page_size" query parameter, returning def
// when absent or invalid.
func ParsePageSize(r *http.Request, def int) int {
	return parsePositive(query.Get(r, "page_size"), def)
}

func parsePositive(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
