// Package usage turns flat gateway usage-log records into the derived views
// the dashboard charts: a per-model call-count breakdown and a stacked
// quota-over-time series.
package usage

// Granularity is the time-bucket width used to group records.
type Granularity string

const (
	GranularityHour Granularity = "hour"
	GranularityDay  Granularity = "day"
	GranularityWeek Granularity = "week"
)

// ParseGranularity maps a user-supplied string to a Granularity, defaulting
// to hour.
func ParseGranularity(s string) Granularity {
	switch s {
	case string(GranularityDay):
		return GranularityDay
	case string(GranularityWeek):
		return GranularityWeek
	default:
		return GranularityHour
	}
}

// UnknownModel substitutes for records with an empty model name.
const UnknownModel = "unknown"

// DefaultMinBuckets is the minimum number of time buckets the timeline is
// backfilled to, so charts never render with degenerate axis density.
const DefaultMinBuckets = 7

// Record is one usage-log row as returned by /api/data/. Rows are not unique
// per (model, bucket); aggregation must sum, never overwrite.
type Record struct {
	ModelName string  `json:"model_name"`
	Quota     float64 `json:"quota"`
	Count     float64 `json:"count"`
	TokenUsed float64 `json:"token_used"`
	CreatedAt int64   `json:"created_at"`
}

// Cell is the summed usage of one (time bucket, model) pair.
type Cell struct {
	Time  string
	Model string
	Quota float64
	Count float64
}

// CategoryEntry is one slice of the call-count breakdown.
type CategoryEntry struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

// TimePoint is one row of the stacked timeline. TimeSum carries the bucket's
// total across all models so every row can drive a tooltip/legend total.
type TimePoint struct {
	Time     string  `json:"Time"`
	Model    string  `json:"Model"`
	RawQuota float64 `json:"rawQuota"`
	Usage    string  `json:"Usage"`
	TimeSum  float64 `json:"TimeSum"`
}

// Totals are summed over every input record, independent of grouping.
type Totals struct {
	Quota  float64 `json:"quota"`
	Count  float64 `json:"count"`
	Tokens float64 `json:"tokens"`
}

// Report is the full projection of a record list.
type Report struct {
	Category []CategoryEntry `json:"category"`
	Timeline []TimePoint     `json:"timeline"`
	Totals   Totals          `json:"totals"`
	Models   []string        `json:"models"` // distinct model names, ascending
}
