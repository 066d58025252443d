package shared

// Filter carries the list-query knobs repositories understand: paging,
// ordering, free-text search and exact-match column filters. Repositories
// whitelist OrderBy against real columns before interpolating it.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]interface{}
}

// DefaultFilter is the first page of twenty, newest first
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 20,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  make(map[string]interface{}),
	}
}
