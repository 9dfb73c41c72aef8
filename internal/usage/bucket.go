package usage

import "time"

// Interval returns the bucket width in seconds.
func Interval(g Granularity) int64 {
	switch g {
	case GranularityDay:
		return 86400
	case GranularityWeek:
		return 604800
	default:
		return 3600
	}
}

// BucketKey maps a unix timestamp to its bucket key. Keys are chosen so that
// lexicographic order equals chronological order:
//
//	hour  "2006-01-02 15:00"
//	day   "2006-01-02"
//	week  Monday of the ISO week as "2006-01-02"
//
// The same timestamp under the same granularity always yields the same key.
// UTC is used throughout so projections are machine-independent.
func BucketKey(ts int64, g Granularity) string {
	t := time.Unix(ts, 0).UTC()
	switch g {
	case GranularityDay:
		return t.Format("2006-01-02")
	case GranularityWeek:
		wd := int(t.Weekday())
		if wd == 0 {
			wd = 7 // Sunday
		}
		monday := t.AddDate(0, 0, -(wd - 1))
		return monday.Format("2006-01-02")
	default:
		return t.Format("2006-01-02 15:00")
	}
}
