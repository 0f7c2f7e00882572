package report

import (
	"time"

	"reddit-status-alerts/internal/fetcher"
)

// windowHours is the trailing span of a report series; the series itself has
// windowHours+1 points because the current (partial) hour is included.
const windowHours = 24

// Bucket pairs a UTC hour boundary with the number of items created in it.
type Bucket struct {
	HourStart time.Time `json:"hour_start"`
	Count     int       `json:"count"`
}

// Series is a dense, ascending sequence of hourly buckets with no gaps.
type Series []Bucket

// Total sums all bucket counts.
func (s Series) Total() int {
	total := 0
	for _, b := range s.Counts() {
		total += b
	}
	return total
}

// Counts returns just the count column, in series order.
func (s Series) Counts() []int {
	counts := make([]int, len(s))
	for i, b := range s {
		counts[i] = b.Count
	}
	return counts
}

// AllZero reports whether every bucket is empty. Callers use it to render a
// "no data" presentation; a fully-zeroed series is also what a total source
// outage produces, so the aggregator's Source tag is the signal that tells
// the two apart.
func (s Series) AllZero() bool {
	for _, b := range s {
		if b.Count != 0 {
			return false
		}
	}
	return true
}

// Bucketize folds raw items into hourly UTC buckets over the window
// [floor(now,1h)-24h, floor(now,1h)] and returns a dense 25-point series.
// Items without a creation time are discarded. The function is pure: now is
// captured once by the caller, so repeated calls with the same inputs yield
// identical output.
func Bucketize(now time.Time, items []fetcher.RawItem) Series {
	end := now.UTC().Truncate(time.Hour)
	start := end.Add(-windowHours * time.Hour)

	counts := make(map[time.Time]int, windowHours+1)
	for _, item := range items {
		if item.CreatedAt.IsZero() {
			continue
		}
		hour := item.CreatedAt.UTC().Truncate(time.Hour)
		counts[hour]++
	}

	series := make(Series, 0, windowHours+1)
	for cur := start; !cur.After(end); cur = cur.Add(time.Hour) {
		series = append(series, Bucket{HourStart: cur, Count: counts[cur]})
	}
	return series
}
