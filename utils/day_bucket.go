package utils

// SecondsPerDay is the bucket width for daily records.
const SecondsPerDay int64 = 86400

// DayBucket truncates a Unix-seconds timestamp to the start of its day.
// The same function keys writes and the yesterday lookup; there is no
// timezone adjustment.
func DayBucket(ts int64) int64 {
	return ts / SecondsPerDay * SecondsPerDay
}

// YesterdayBucket returns the bucket for the day before now.
func YesterdayBucket(now int64) int64 {
	return DayBucket(now - SecondsPerDay)
}
