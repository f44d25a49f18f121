package database

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

// OrderBy resolves a client sort field through a whitelist of columns.
// Unknown fields fall back to the column mapped by fallback.
func OrderBy(sort, order string, columns map[string]string, fallback string) string {
	col, ok := columns[sort]
	if !ok {
		col = columns[fallback]
	}
	dir := "DESC"
	if strings.EqualFold(order, "asc") {
		dir = "ASC"
	}
	return col + " " + dir
}

// ContainsPattern builds a case-insensitive LIKE pattern for search.
// LIKE wildcards in the input are matched literally.
func ContainsPattern(search string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(strings.TrimSpace(search))) + "%"
}

// IsUniqueViolation reports whether err came from a unique index
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	// sqlite reports "UNIQUE constraint failed: <table>.<column>"
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
