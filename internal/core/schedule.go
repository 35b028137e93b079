package core

import "time"

// NextOccurrence advances a due date by exactly one frequency step.
//
// Monthly and yearly steps are calendar-aware: when the target month is
// shorter than the source day, the day clamps to the last day of the target
// month (Jan 31 -> Feb 28, Feb 29 in leap years). The clamp does not remember
// the original day across steps: a cursor clamped to Feb 28 advances to
// Mar 28.
func NextOccurrence(freq Frequency, from time.Time) time.Time {
	switch freq {
	case Daily:
		return from.AddDate(0, 0, 1)
	case Weekly:
		return from.AddDate(0, 0, 7)
	case Monthly:
		return addMonthsClamped(from, 1)
	case Yearly:
		return addMonthsClamped(from, 12)
	default:
		return from
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	m := int(month) + months
	year += (m - 1) / 12
	month = time.Month((m-1)%12 + 1)

	if last := lastDayOfMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
