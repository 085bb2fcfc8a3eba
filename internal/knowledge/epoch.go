package knowledge

import "time"

// AppleEpochOffset is the number of seconds between the Core Data reference
// date (2001-01-01) and the Unix epoch. knowledgeC.db stores all timestamps
// relative to the reference date.
const AppleEpochOffset = 978307200

// FromAppleTime converts a Core Data timestamp to a wall-clock time. The
// result carries the host's local timezone, which is also what the day
// bucketing downstream keys on; no UTC normalization is applied.
func FromAppleTime(ts float64) time.Time {
	unixNanos := (ts + AppleEpochOffset) * float64(time.Second)
	return time.Unix(0, int64(unixNanos))
}

// ToAppleTime converts a wall-clock time back to a Core Data timestamp.
func ToAppleTime(t time.Time) float64 {
	return float64(t.UnixNano())/float64(time.Second) - AppleEpochOffset
}
