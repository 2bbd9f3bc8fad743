package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDayBucketTruncates(t *testing.T) {
	// 2026-08-25T13:45:00Z
	ts := int64(1787233500)
	bucket := DayBucket(ts)

	assert.Equal(t, int64(0), bucket%SecondsPerDay)
	assert.LessOrEqual(t, bucket, ts)
	assert.Greater(t, bucket+SecondsPerDay, ts)
}

func TestDayBucketIdempotent(t *testing.T) {
	for _, ts := range []int64{0, 1, 86399, 86400, 86401, 1787233500} {
		assert.Equal(t, DayBucket(ts), DayBucket(DayBucket(ts)), "ts=%d", ts)
	}
}

func TestDayBucketMonotonic(t *testing.T) {
	prev := DayBucket(0)
	for ts := int64(0); ts < 3*SecondsPerDay; ts += 3600 {
		cur := DayBucket(ts)
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestYesterdayBucket(t *testing.T) {
	now := int64(1787233500)
	assert.Equal(t, DayBucket(now)-SecondsPerDay, YesterdayBucket(now))

	// Just after midnight still lands on the previous day.
	midnight := DayBucket(now)
	assert.Equal(t, midnight-SecondsPerDay, YesterdayBucket(midnight+1))
}
