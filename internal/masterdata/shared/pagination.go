package shared

import (
	"net/http"
	"strconv"
)

// ListFilters represents standard list page filters.
type ListFilters struct {
	Page    int
	Limit   int
	Search  string
	SortBy  string
	SortDir string

	// Entity specific filters
	CategoryID *int64
	BrandID    *int64
}

// FiltersFromQuery extracts common list filters from the request query string.
func FiltersFromQuery(r *http.Request) ListFilters {
	q := r.URL.Query()
	f := ListFilters{
		Page:    atoiDefault(q.Get("page"), 1),
		Limit:   atoiDefault(q.Get("limit"), 25),
		Search:  q.Get("search"),
		SortBy:  q.Get("sort"),
		SortDir: q.Get("dir"),
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 200 {
		f.Limit = 25
	}
	return f
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
