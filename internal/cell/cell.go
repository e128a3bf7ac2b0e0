package cell

import (
	"strconv"
	"strings"
	"time"
)

// Kind identifies what a raw spreadsheet cell held.
type Kind int

const (
	KindEmpty Kind = iota
	KindText
	KindNumber
	KindTime
)

// Value is one raw cell as delivered by a loader. Only the field matching
// Kind is meaningful.
type Value struct {
	Kind Kind
	Text string
	Num  float64
	Time time.Time
}

func Empty() Value                { return Value{Kind: KindEmpty} }
func Number(f float64) Value      { return Value{Kind: KindNumber, Num: f} }
func Timestamp(t time.Time) Value { return Value{Kind: KindTime, Time: t} }

// Text returns a text value. Whitespace-only input is treated as empty.
func Text(s string) Value {
	if strings.TrimSpace(s) == "" {
		return Empty()
	}
	return Value{Kind: KindText, Text: s}
}

// IsEmpty reports whether the cell is absent.
func (v Value) IsEmpty() bool {
	return v.Kind == KindEmpty
}

// String returns the value as it would appear in a sheet, for echoing raw
// input back to a clerk.
func (v Value) String() string {
	switch v.Kind {
	case KindText:
		return v.Text
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindTime:
		return v.Time.Format("2006-01-02 15:04")
	default:
		return ""
	}
}
