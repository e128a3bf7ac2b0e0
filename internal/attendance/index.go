package attendance

import (
	"strings"
	"time"
	"unicode"

	"github.com/Flyrell/clockfill/internal/table"
)

// Index maps person names to their record for one date. Names are stored as
// given; Lookup also accepts names differing only in case or whitespace.
type Index struct {
	date       time.Time
	records    map[string]Record
	order      []string
	normalized map[string]string
}

// BuildIndex builds the index for target. Times are parsed leniently and a
// repeated name keeps its last row.
func BuildIndex(rows []table.RawRow, target time.Time) *Index {
	target = Day(target)
	idx := &Index{
		date:       target,
		records:    make(map[string]Record),
		normalized: make(map[string]string),
	}

	for _, row := range rows {
		if row.Name == "" {
			continue
		}
		d, ok := ParseDateValue(row.Date)
		if !ok || !d.Equal(target) {
			continue
		}
		cin, _ := ParseTimeValue(row.CheckIn)
		cout, _ := ParseTimeValue(row.CheckOut)

		if _, exists := idx.records[row.Name]; !exists {
			idx.order = append(idx.order, row.Name)
		}
		idx.records[row.Name] = Record{Name: row.Name, Date: d, CheckIn: cin, CheckOut: cout}

		key := NormalizeName(row.Name)
		if _, taken := idx.normalized[key]; !taken {
			idx.normalized[key] = row.Name
		}
	}
	return idx
}

// Date is the calendar date the index was built for.
func (i *Index) Date() time.Time {
	if i == nil {
		return time.Time{}
	}
	return i.date
}

// Get returns the record stored under exactly name.
func (i *Index) Get(name string) (Record, bool) {
	if i == nil {
		return Record{}, false
	}
	r, ok := i.records[name]
	return r, ok
}

// Lookup matches name ignoring case and whitespace. When several stored
// names normalize alike, the one seen first wins. A nil index behaves as an
// empty one.
func (i *Index) Lookup(name string) (Record, bool) {
	if i == nil {
		return Record{}, false
	}
	stored, ok := i.normalized[NormalizeName(name)]
	if !ok {
		return Record{}, false
	}
	return i.records[stored], true
}

func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.records)
}

// Names returns the stored names in first-seen order.
func (i *Index) Names() []string {
	if i == nil {
		return nil
	}
	out := make([]string, len(i.order))
	copy(out, i.order)
	return out
}

// NormalizeName drops all whitespace and folds case.
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
