package clock

import "time"

// Clock abstracts time so entry dates and reminders are deterministic in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

// Now returns local time; calendar days are local days.
func (SystemClock) Now() time.Time {
	return time.Now()
}

type Fixed time.Time

func (f Fixed) Now() time.Time {
	return time.Time(f)
}
