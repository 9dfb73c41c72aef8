package pricing

import (
	"testing"

	"github.com/veloera/velo/internal/api"
)

func TestTokenPrices(t *testing.T) {
	// ratio 2.5, completion 4x, group 1.2: input 2.5*2*1.2 = 6, output 24.
	input, output := TokenPrices(2.5, 4, 1.2)
	if input.String() != "6" {
		t.Errorf("input = %s, want 6", input)
	}
	if output.String() != "24" {
		t.Errorf("output = %s, want 24", output)
	}
}

func TestTokenPricesNoFloatDrift(t *testing.T) {
	// 0.1 * 2 * 0.3 must come out exactly 0.06, not 0.060000000000000005.
	input, _ := TokenPrices(0.1, 1, 0.3)
	if input.String() != "0.06" {
		t.Errorf("input = %s, want 0.06", input)
	}
}

func TestCallPrice(t *testing.T) {
	if got := CallPrice(0.02, 1.5); got.String() != "0.03" {
		t.Errorf("price = %s, want 0.03", got)
	}
}

func testData() *api.PricingData {
	return &api.PricingData{
		Models: []api.PricedModel{
			{ModelName: "claude-3-5-sonnet", QuotaType: 0, ModelRatio: 1.5, CompletionRatio: 5},
			{ModelName: "gpt-4o", QuotaType: 0, ModelRatio: 1.25, CompletionRatio: 4},
			{ModelName: "mj-imagine", QuotaType: 1, ModelPrice: 0.1, EnableGroups: []string{"vip"}},
			{ModelName: "gpt-4o-mini", QuotaType: 0, ModelRatio: 0.075, CompletionRatio: 4},
		},
		GroupRatio: map[string]float64{"default": 1, "vip": 0.8},
	}
}

func TestBuildFiltersAndSorts(t *testing.T) {
	listing := Build(testData(), "default")

	// mj-imagine is vip-only and must be excluded for default.
	var names []string
	for _, r := range listing.Rows {
		names = append(names, r.Model)
	}
	want := []string{"gpt-4o", "gpt-4o-mini", "claude-3-5-sonnet"}
	if len(names) != len(want) {
		t.Fatalf("rows = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("rows = %v, want %v", names, want)
		}
	}
}

func TestBuildAppliesGroupRatio(t *testing.T) {
	listing := Build(testData(), "vip")

	for _, r := range listing.Rows {
		switch r.Model {
		case "gpt-4o":
			if r.InputPrice.String() != "2" {
				t.Errorf("gpt-4o input = %s, want 2", r.InputPrice)
			}
			if r.OutputPrice.String() != "8" {
				t.Errorf("gpt-4o output = %s, want 8", r.OutputPrice)
			}
		case "mj-imagine":
			if r.FixedPrice.String() != "0.08" {
				t.Errorf("mj-imagine price = %s, want 0.08", r.FixedPrice)
			}
		}
	}
}

func TestBuildUnknownGroupRatioDefaultsToOne(t *testing.T) {
	listing := Build(testData(), "no-such-group")
	for _, r := range listing.Rows {
		if r.Model == "gpt-4o" && r.InputPrice.String() != "2.5" {
			t.Errorf("gpt-4o input = %s, want 2.5", r.InputPrice)
		}
	}
}

func TestFilter(t *testing.T) {
	rows := Build(testData(), "default").Rows
	if got := Filter(rows, "MINI"); len(got) != 1 || got[0].Model != "gpt-4o-mini" {
		t.Errorf("filter mini = %+v", got)
	}
	if got := Filter(rows, ""); len(got) != len(rows) {
		t.Error("empty query must return all rows")
	}
	if got := Filter(rows, "zzz"); len(got) != 0 {
		t.Errorf("no-match query returned %d rows", len(got))
	}
}
