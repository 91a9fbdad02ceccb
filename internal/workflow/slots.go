package workflow

import "time"

const (
	// SlotInterval is the scheduled-order granularity.
	SlotInterval = 15 * time.Minute

	// SlotCount is how many slots the picker offers (four hours).
	SlotCount = 16
)

// Slots returns the pickup times offered at now. The first is the next
// quarter-hour boundary strictly after now, so a guest at 10:15:00 is
// offered 10:30 first.
func Slots(now time.Time) []time.Time {
	base := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), (now.Minute()/15)*15, 0, 0, now.Location())
	out := make([]time.Time, SlotCount)
	for i := range out {
		out[i] = base.Add(time.Duration(i+1) * SlotInterval)
	}
	return out
}

func offered(slots []time.Time, at time.Time) (time.Time, bool) {
	for _, s := range slots {
		if s.Equal(at) {
			return s, true
		}
	}
	return time.Time{}, false
}
