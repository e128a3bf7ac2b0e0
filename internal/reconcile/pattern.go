package reconcile

// Pattern names the rule that produced a Resolution.
type Pattern string

const (
	TodayComplete           Pattern = "today_complete"
	TodayCheckInWithPrevOut Pattern = "today_checkin_with_prev_checkout"
	TodayCheckInOnly        Pattern = "today_checkin_only"
	NightShift              Pattern = "night_shift"
	NightShiftNoCheckOut    Pattern = "night_shift_no_checkout"
	PrevNightShift          Pattern = "prev_night_shift"
	CheckOutOnly            Pattern = "checkout_only"
	PrevNightShiftComplete  Pattern = "prev_night_shift_complete"
	AbsentWithPrevCheckOut  Pattern = "absent_with_prev_checkout"
	PrevCheckInOnlyNoData   Pattern = "prev_checkin_only_no_data"
	NoData                  Pattern = "no_data"
	Unknown                 Pattern = "unknown"
)

// Patterns lists every tag in rule order, Unknown last.
var Patterns = []Pattern{
	TodayComplete,
	TodayCheckInWithPrevOut,
	TodayCheckInOnly,
	NightShift,
	NightShiftNoCheckOut,
	PrevNightShift,
	CheckOutOnly,
	PrevNightShiftComplete,
	AbsentWithPrevCheckOut,
	PrevCheckInOnlyNoData,
	NoData,
	Unknown,
}

// HasData reports whether resolutions with this tag write anything.
func (p Pattern) HasData() bool {
	switch p {
	case PrevCheckInOnlyNoData, NoData, Unknown:
		return false
	}
	return true
}
