package usage

import (
	"math"
	"reflect"
	"testing"
	"time"
)

var testNow = time.Date(2026, 8, 20, 12, 30, 0, 0, time.UTC)

func TestTotalsConservation(t *testing.T) {
	records := []Record{
		{ModelName: "gpt-4o", Quota: 120, Count: 3, TokenUsed: 900, CreatedAt: testNow.Unix()},
		{ModelName: "gpt-4o", Quota: 30, Count: 1, TokenUsed: 100, CreatedAt: testNow.Unix()},
		{ModelName: "claude-3-5-sonnet", Quota: 75, Count: 2, TokenUsed: 500, CreatedAt: testNow.Add(-2 * time.Hour).Unix()},
		{ModelName: "", Quota: 5, Count: 1, TokenUsed: 10, CreatedAt: testNow.Add(-3 * time.Hour).Unix()},
	}
	report := Project(records, GranularityHour, testNow)

	var wantQuota, wantCount float64
	for _, r := range records {
		wantQuota += r.Quota
		wantCount += r.Count
	}
	if report.Totals.Quota != wantQuota {
		t.Errorf("total quota = %v, want %v", report.Totals.Quota, wantQuota)
	}
	if report.Totals.Count != wantCount {
		t.Errorf("total count = %v, want %v", report.Totals.Count, wantCount)
	}

	// Conservation also holds bucket by bucket: summing RawQuota once per
	// (bucket, model) row equals the input sum.
	var rowQuota float64
	for _, p := range report.Timeline {
		rowQuota += p.RawQuota
	}
	if math.Abs(rowQuota-wantQuota) > 1e-9 {
		t.Errorf("timeline quota = %v, want %v", rowQuota, wantQuota)
	}

	var catCount float64
	for _, e := range report.Category {
		catCount += e.Value
	}
	if catCount != wantCount {
		t.Errorf("category count = %v, want %v", catCount, wantCount)
	}
}

func TestAggregationSumsNotOverwrites(t *testing.T) {
	ts := testNow.Unix()
	records := []Record{
		{ModelName: "gpt-4o", Quota: 10, Count: 1, CreatedAt: ts},
		{ModelName: "gpt-4o", Quota: 20, Count: 2, CreatedAt: ts},
	}
	report := Project(records, GranularityHour, testNow)

	bucket := BucketKey(ts, GranularityHour)
	for _, p := range report.Timeline {
		if p.Time == bucket && p.Model == "gpt-4o" {
			if p.RawQuota != 30 {
				t.Errorf("cell quota = %v, want 30", p.RawQuota)
			}
			return
		}
	}
	t.Fatal("cell for gpt-4o not found")
}

func TestBucketCompleteness(t *testing.T) {
	// Two natural buckets; timeline must still carry 7.
	records := []Record{
		{ModelName: "gpt-4o", Quota: 10, Count: 1, CreatedAt: testNow.Unix()},
		{ModelName: "gpt-4o", Quota: 10, Count: 1, CreatedAt: testNow.Add(-time.Hour).Unix()},
	}
	for _, g := range []Granularity{GranularityHour, GranularityDay, GranularityWeek} {
		report := Project(records, g, testNow)
		buckets := distinctBuckets(report.Timeline)
		if len(buckets) != DefaultMinBuckets {
			t.Errorf("%s: %d buckets, want %d", g, len(buckets), DefaultMinBuckets)
		}
		// The latest bucket anchors at the latest observed timestamp.
		last := buckets[len(buckets)-1]
		if want := BucketKey(testNow.Unix(), g); last != want {
			t.Errorf("%s: last bucket = %q, want %q", g, last, want)
		}
	}
}

func TestBucketCompletenessEmptyInput(t *testing.T) {
	report := Project(nil, GranularityDay, testNow)
	if got := len(distinctBuckets(report.Timeline)); got != DefaultMinBuckets {
		t.Errorf("empty input: %d buckets, want %d", got, DefaultMinBuckets)
	}
	if report.Totals.Quota != 0 || report.Totals.Count != 0 {
		t.Errorf("empty input totals = %+v, want zero", report.Totals)
	}
	// The synthetic record surfaces the unknown-model placeholder.
	if len(report.Models) != 1 || report.Models[0] != UnknownModel {
		t.Errorf("models = %v, want [%s]", report.Models, UnknownModel)
	}
}

func TestConfigurableMinBuckets(t *testing.T) {
	report := ProjectN(nil, GranularityHour, testNow, 3)
	if got := len(distinctBuckets(report.Timeline)); got != 3 {
		t.Errorf("minBuckets=3: %d buckets", got)
	}
}

func TestDeterminism(t *testing.T) {
	records := []Record{
		{ModelName: "b", Quota: 50, Count: 5, CreatedAt: testNow.Unix()},
		{ModelName: "a", Quota: 50, Count: 5, CreatedAt: testNow.Unix()},
		{ModelName: "c", Quota: 100, Count: 10, CreatedAt: testNow.Add(-time.Hour).Unix()},
	}
	first := Project(records, GranularityHour, testNow)
	second := Project(records, GranularityHour, testNow)
	if !reflect.DeepEqual(first, second) {
		t.Error("two projections of the same input differ")
	}
}

func TestCategoryOrdering(t *testing.T) {
	records := []Record{
		{ModelName: "b", Count: 5, CreatedAt: testNow.Unix()},
		{ModelName: "a", Count: 5, CreatedAt: testNow.Unix()},
		{ModelName: "c", Count: 10, CreatedAt: testNow.Unix()},
	}
	report := Project(records, GranularityHour, testNow)

	want := []CategoryEntry{{Type: "c", Value: 10}, {Type: "a", Value: 5}, {Type: "b", Value: 5}}
	if !reflect.DeepEqual(report.Category, want) {
		t.Errorf("category = %v, want %v", report.Category, want)
	}
}

func TestPerBucketQuotaOrdering(t *testing.T) {
	ts := testNow.Unix()
	records := []Record{
		{ModelName: "small", Quota: 10, Count: 1, CreatedAt: ts},
		{ModelName: "large", Quota: 90, Count: 1, CreatedAt: ts},
	}
	report := Project(records, GranularityHour, testNow)

	bucket := BucketKey(ts, GranularityHour)
	var rows []TimePoint
	for _, p := range report.Timeline {
		if p.Time == bucket {
			rows = append(rows, p)
		}
	}
	if len(rows) != 2 {
		t.Fatalf("rows in bucket = %d, want 2", len(rows))
	}
	if rows[0].Model != "large" || rows[1].Model != "small" {
		t.Errorf("order = %s, %s; want large, small", rows[0].Model, rows[1].Model)
	}
	for _, r := range rows {
		if r.TimeSum != 100 {
			t.Errorf("TimeSum = %v, want 100", r.TimeSum)
		}
	}
}

func TestAbsentModelGetsZeroRow(t *testing.T) {
	records := []Record{
		{ModelName: "a", Quota: 10, Count: 1, CreatedAt: testNow.Unix()},
		{ModelName: "b", Quota: 10, Count: 1, CreatedAt: testNow.Add(-time.Hour).Unix()},
	}
	report := Project(records, GranularityHour, testNow)

	bucket := BucketKey(testNow.Unix(), GranularityHour)
	found := false
	for _, p := range report.Timeline {
		if p.Time == bucket && p.Model == "b" {
			found = true
			if p.RawQuota != 0 {
				t.Errorf("absent model RawQuota = %v, want 0", p.RawQuota)
			}
			if p.Usage != "0" {
				t.Errorf("absent model Usage = %q, want \"0\"", p.Usage)
			}
		}
	}
	if !found {
		t.Error("no zero row for model absent from bucket")
	}
}

func TestMalformedNumbersCoercedToZero(t *testing.T) {
	records := []Record{
		{ModelName: "a", Quota: math.NaN(), Count: math.Inf(1), TokenUsed: math.Inf(-1), CreatedAt: testNow.Unix()},
		{ModelName: "a", Quota: 25, Count: 1, TokenUsed: 40, CreatedAt: testNow.Unix()},
	}
	report := Project(records, GranularityHour, testNow)

	if report.Totals.Quota != 25 || report.Totals.Count != 1 || report.Totals.Tokens != 40 {
		t.Errorf("totals = %+v, want {25 1 40}", report.Totals)
	}
	for _, p := range report.Timeline {
		if math.IsNaN(p.RawQuota) || math.IsNaN(p.TimeSum) {
			t.Fatal("NaN leaked into timeline")
		}
	}
}

func TestTimelineChronological(t *testing.T) {
	records := []Record{
		{ModelName: "a", Quota: 1, Count: 1, CreatedAt: testNow.Unix()},
		{ModelName: "a", Quota: 1, Count: 1, CreatedAt: testNow.Add(-5 * time.Hour).Unix()},
	}
	report := Project(records, GranularityHour, testNow)
	for i := 1; i < len(report.Timeline); i++ {
		if report.Timeline[i].Time < report.Timeline[i-1].Time {
			t.Fatalf("timeline out of order at %d: %q < %q", i, report.Timeline[i].Time, report.Timeline[i-1].Time)
		}
	}
}

func distinctBuckets(points []TimePoint) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, p := range points {
		if _, ok := seen[p.Time]; !ok {
			seen[p.Time] = struct{}{}
			out = append(out, p.Time)
		}
	}
	return out
}
