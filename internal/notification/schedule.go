package notification

import "time"

const minutesPerDay = 24 * 60

// LocalMinutes returns the minutes since local midnight of a device whose
// clock is offsetMinutes ahead of UTC.
func LocalMinutes(now time.Time, offsetMinutes int) int {
	utc := now.UTC()
	utcMinutes := utc.Hour()*60 + utc.Minute()
	return ((utcMinutes+offsetMinutes)%minutesPerDay + minutesPerDay) % minutesPerDay
}

// IntervalEligible reports whether a device notified every interval minutes
// is due at localMinutes. Devices without an interval are never due.
func IntervalEligible(localMinutes, interval int) bool {
	if interval <= 0 {
		return false
	}
	return localMinutes%interval == 0
}

// InQuietHours reports whether localHour falls in the quiet window [start, end).
// A window with start > end wraps past midnight; start == end is empty.
func InQuietHours(localHour, start, end int) bool {
	if start > end {
		return localHour >= start || localHour < end
	}
	return start <= localHour && localHour < end
}
