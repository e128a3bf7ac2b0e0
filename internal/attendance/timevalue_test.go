package attendance

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/Flyrell/clockfill/internal/cell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeValue(t *testing.T) {
	onSentinelAt := func(h, m int) time.Time {
		return time.Date(2000, 1, 1, h, m, 0, 0, time.UTC)
	}

	tests := []struct {
		name       string
		input      cell.Value
		want       *time.Time
		wantFormed bool
	}{
		{name: "empty", input: cell.Empty(), wantFormed: true},
		{name: "whitespace text", input: cell.Value{Kind: cell.KindText, Text: "   "}, wantFormed: true},
		{
			name:       "timestamp passes through",
			input:      cell.Timestamp(time.Date(2024, 3, 5, 8, 55, 0, 0, time.UTC)),
			want:       ptr(time.Date(2024, 3, 5, 8, 55, 0, 0, time.UTC)),
			wantFormed: true,
		},
		{
			name:       "serial number",
			input:      cell.Number(45356.375),
			want:       ptr(time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)),
			wantFormed: true,
		},
		{
			name:       "slash date time",
			input:      cell.Text("2024/03/05 09:00"),
			want:       ptr(time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)),
			wantFormed: true,
		},
		{
			name:       "dash date time",
			input:      cell.Text("2024-3-5 18:30"),
			want:       ptr(time.Date(2024, 3, 5, 18, 30, 0, 0, time.UTC)),
			wantFormed: true,
		},
		{name: "clock time", input: cell.Text("09:00"), want: ptr(onSentinelAt(9, 0)), wantFormed: true},
		{name: "single digit hour", input: cell.Text("7:05"), want: ptr(onSentinelAt(7, 5)), wantFormed: true},
		{name: "korean hour unit", input: cell.Text("8시"), want: ptr(onSentinelAt(8, 0))},
		{name: "hour unit lower", input: cell.Text("8h"), want: ptr(onSentinelAt(8, 0))},
		{name: "hour unit upper", input: cell.Text("8H"), want: ptr(onSentinelAt(8, 0))},
		{name: "bare hour", input: cell.Text("9"), want: ptr(onSentinelAt(9, 0))},
		{name: "bare hour out of range", input: cell.Text("25")},
		{name: "clock out of range", input: cell.Text("25:00")},
		{name: "garbage", input: cell.Text("late")},
		{name: "nan falls through", input: cell.Number(math.NaN())},
		{name: "huge number falls through", input: cell.Number(1e12)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, formed := ParseTimeValue(tt.input)
			assert.Equal(t, tt.wantFormed, formed)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %s", got)
		})
	}
}

func TestParseTimeValueSlashRoundTrip(t *testing.T) {
	for h := 0; h < 24; h++ {
		for _, m := range []int{0, 1, 15, 30, 59} {
			s := fmt.Sprintf("2024/11/30 %02d:%02d", h, m)
			got, formed := ParseTimeValue(cell.Text(s))
			require.True(t, formed, s)
			require.NotNil(t, got, s)
			assert.Equal(t, h, got.Hour(), s)
			assert.Equal(t, m, got.Minute(), s)
		}
	}
}

func TestParseDateValue(t *testing.T) {
	want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	for _, v := range []cell.Value{
		cell.Text("2024-03-05"),
		cell.Text("2024/03/05"),
		cell.Text("2024.3.5"),
		cell.Text("20240305"),
		cell.Text("2024-03-05 13:00"),
		cell.Number(45356),
		cell.Timestamp(time.Date(2024, 3, 5, 17, 0, 0, 0, time.UTC)),
	} {
		got, ok := ParseDateValue(v)
		require.True(t, ok, v.String())
		assert.True(t, want.Equal(got), "%s -> %s", v, got)
	}

	_, ok := ParseDateValue(cell.Text("someday"))
	assert.False(t, ok)
	_, ok = ParseDateValue(cell.Empty())
	assert.False(t, ok)
}

func TestHasCalendarDate(t *testing.T) {
	assert.False(t, HasCalendarDate(time.Date(2000, 1, 1, 7, 15, 0, 0, time.UTC)))
	assert.False(t, HasCalendarDate(time.Date(1899, 12, 30, 7, 15, 0, 0, time.UTC)))
	assert.True(t, HasCalendarDate(time.Date(2024, 3, 5, 7, 15, 0, 0, time.UTC)))
}

func ptr(t time.Time) *time.Time { return &t }
