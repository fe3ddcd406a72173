package schedule

import "time"

// NextWorkday returns the first day after d that falls on a weekday.
// Time of day and location are carried over from d.
func NextWorkday(d time.Time) time.Time {
	next := d.AddDate(0, 0, 1)
	switch next.Weekday() {
	case time.Sunday:
		next = next.AddDate(0, 0, 1)
	case time.Saturday:
		next = next.AddDate(0, 0, 2)
	}
	return next
}

func IsWeekend(wd time.Weekday) bool {
	return wd == time.Saturday || wd == time.Sunday
}
