package usage

import (
	"math"
	"sort"
	"time"
)

// normalize guards every numeric field before summation: non-finite values
// become 0 so a single bad row can never poison a total.
func normalize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Project aggregates records into the dashboard's chart views using the
// default minimum bucket count. now anchors the synthetic timeline when the
// input carries no usable timestamps.
func Project(records []Record, g Granularity, now time.Time) Report {
	return ProjectN(records, g, now, DefaultMinBuckets)
}

// ProjectN is Project with an explicit minimum bucket count.
//
// The projection is pure: the same records, granularity, now and minBuckets
// always produce identical output, ordering included.
func ProjectN(records []Record, g Granularity, now time.Time, minBuckets int) Report {
	if minBuckets < 1 {
		minBuckets = DefaultMinBuckets
	}
	// Empty input still renders: one synthetic zero-valued record at now.
	if len(records) == 0 {
		records = []Record{{CreatedAt: now.Unix()}}
	}

	var totals Totals
	modelSet := make(map[string]struct{})
	for _, r := range records {
		totals.Quota += normalize(r.Quota)
		totals.Count += normalize(r.Count)
		totals.Tokens += normalize(r.TokenUsed)
		modelSet[modelName(r)] = struct{}{}
	}

	models := make([]string, 0, len(modelSet))
	for m := range modelSet {
		models = append(models, m)
	}
	sort.Strings(models)

	// Sum records into (bucket, model) cells.
	cells := make(map[cellKey]*Cell)
	for _, r := range records {
		key := cellKey{BucketKey(r.CreatedAt, g), modelName(r)}
		c, ok := cells[key]
		if !ok {
			c = &Cell{Time: key.time, Model: key.model}
			cells[key] = c
		}
		c.Quota += normalize(r.Quota)
		c.Count += normalize(r.Count)
	}

	category := buildCategory(cells)
	timeline := buildTimeline(cells, records, models, g, now, minBuckets)

	return Report{
		Category: category,
		Timeline: timeline,
		Totals:   totals,
		Models:   models,
	}
}

type cellKey struct{ time, model string }

func modelName(r Record) string {
	if r.ModelName == "" {
		return UnknownModel
	}
	return r.ModelName
}

// buildCategory sums per-model call counts and orders them descending by
// count, ties broken by name ascending.
func buildCategory(cells map[cellKey]*Cell) []CategoryEntry {
	counts := make(map[string]float64)
	for _, c := range cells {
		counts[c.Model] += c.Count
	}
	entries := make([]CategoryEntry, 0, len(counts))
	for model, count := range counts {
		entries = append(entries, CategoryEntry{Type: model, Value: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].Type < entries[j].Type
	})
	return entries
}

func buildTimeline(cells map[cellKey]*Cell, records []Record, models []string, g Granularity, now time.Time, minBuckets int) []TimePoint {
	bucketSet := make(map[string]struct{})
	for _, c := range cells {
		bucketSet[c.Time] = struct{}{}
	}
	buckets := make([]string, 0, len(bucketSet))
	for b := range bucketSet {
		buckets = append(buckets, b)
	}
	sort.Strings(buckets)

	// Sparse data gets a fixed-density axis: synthesize buckets backward from
	// the latest observed timestamp.
	if len(buckets) < minBuckets {
		lastTime := int64(0)
		seen := false
		for _, r := range records {
			if r.CreatedAt > lastTime {
				lastTime = r.CreatedAt
				seen = true
			}
		}
		if !seen {
			lastTime = now.Unix()
		}
		interval := Interval(g)
		buckets = make([]string, minBuckets)
		for i := 0; i < minBuckets; i++ {
			buckets[i] = BucketKey(lastTime-int64(minBuckets-1-i)*interval, g)
		}
	}

	timeline := make([]TimePoint, 0, len(buckets)*len(models))
	for _, bucket := range buckets {
		rows := make([]TimePoint, 0, len(models))
		var timeSum float64
		for _, model := range models {
			var quota float64
			if c, ok := cells[cellKey{bucket, model}]; ok {
				quota = normalize(c.Quota)
			}
			usage := "0"
			if quota != 0 {
				usage = QuotaWithUnit(quota, 4)
			}
			rows = append(rows, TimePoint{Time: bucket, Model: model, RawQuota: quota, Usage: usage})
			timeSum += quota
		}
		// Largest consumer first, so it renders bottom-most in a stack.
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].RawQuota != rows[j].RawQuota {
				return rows[i].RawQuota > rows[j].RawQuota
			}
			return rows[i].Model < rows[j].Model
		})
		for i := range rows {
			rows[i].TimeSum = timeSum
		}
		timeline = append(timeline, rows...)
	}

	// Chronological order across buckets; stable to preserve the per-bucket
	// quota ordering.
	sort.SliceStable(timeline, func(i, j int) bool {
		return timeline[i].Time < timeline[j].Time
	})
	return timeline
}
