package table

import (
	"fmt"
	"strings"

	"github.com/Flyrell/clockfill/internal/cell"
)

// ColumnRules holds the header keywords used to recognise each canonical
// column. Matching is a case-insensitive substring test.
type ColumnRules struct {
	Date        []string `yaml:"date"`
	Name        []string `yaml:"name"`
	NameExclude []string `yaml:"name_exclude"`
	CheckIn     []string `yaml:"check_in"`
	CheckOut    []string `yaml:"check_out"`
}

// DefaultColumnRules covers the Korean swipe-log export and plain English headers.
func DefaultColumnRules() ColumnRules {
	return ColumnRules{
		Date:        []string{"근무일자", "work date", "date"},
		Name:        []string{"이름", "name"},
		NameExclude: []string{"성명", "full name", "legal name"},
		CheckIn:     []string{"출근시간", "check-in", "check in", "clock in"},
		CheckOut:    []string{"퇴근시간", "check-out", "check out", "clock out"},
	}
}

// MissingColumnsError reports every canonical column that no header matched.
type MissingColumnsError struct {
	Missing []string
	Headers []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("required columns not found: %s (headers: %s)",
		strings.Join(e.Missing, ", "), strings.Join(e.Headers, ", "))
}

// MapColumns renames the recognised headers to their canonical names, drops
// duplicate columns, and returns a table holding exactly the four canonical
// columns in canonical order. The first header matching a rule wins it.
func MapColumns(t Table, rules ColumnRules) (Table, error) {
	headers := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		headers[i] = normalizeHeader(h)
	}

	found := make(map[string]bool, len(canonicalColumns))
	for i, h := range headers {
		lower := strings.ToLower(h)
		switch {
		case !found[ColDate] && containsAny(lower, rules.Date):
			headers[i] = ColDate
			found[ColDate] = true
		case !found[ColName] && containsAny(lower, rules.Name) && !containsAny(lower, rules.NameExclude):
			headers[i] = ColName
			found[ColName] = true
		case !found[ColCheckIn] && containsAny(lower, rules.CheckIn):
			headers[i] = ColCheckIn
			found[ColCheckIn] = true
		case !found[ColCheckOut] && containsAny(lower, rules.CheckOut):
			headers[i] = ColCheckOut
			found[ColCheckOut] = true
		}
	}

	// First occurrence of each header name survives.
	seen := make(map[string]int, len(headers))
	for i, h := range headers {
		if _, ok := seen[h]; !ok {
			seen[h] = i
		}
	}

	var missing []string
	idx := make([]int, len(canonicalColumns))
	for i, name := range canonicalColumns {
		pos, ok := seen[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		idx[i] = pos
	}
	if len(missing) > 0 {
		return Table{}, &MissingColumnsError{Missing: missing, Headers: headers}
	}

	out := Table{
		Headers: append([]string(nil), canonicalColumns...),
		Rows:    make([][]cell.Value, 0, len(t.Rows)),
	}
	for _, r := range t.Rows {
		row := make([]cell.Value, len(idx))
		for i, pos := range idx {
			row[i] = at(r, pos)
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

func normalizeHeader(h string) string {
	return strings.Trim(strings.TrimSpace(h), `'"`)
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(s, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
