package persistence

import "strings"

// Order-by fragments are interpolated into SQL, so both pieces pass a
// whitelist before they reach gorm.

// sortOrder normalizes a requested direction to ASC or DESC, defaulting
// to DESC for anything unrecognized.
func sortOrder(dir string) string {
	if strings.EqualFold(strings.TrimSpace(dir), "ASC") {
		return "ASC"
	}
	return "DESC"
}

// sortColumn returns the requested column when it is whitelisted,
// otherwise the fallback.
func sortColumn(col string, allowed map[string]bool, fallback string) string {
	col = strings.TrimSpace(col)
	if allowed[col] {
		return col
	}
	return fallback
}
