package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/veloera/velo/internal/usage"
)

func TestSelfUserDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/user/self" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Veloera-User"); got != "7" {
			t.Errorf("Veloera-User = %q", got)
		}
		fmt.Fprint(w, `{"success":true,"data":{"id":7,"username":"amy","quota":1000000,"request_count":12,"group":"default"}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", "7")
	u, err := c.SelfUser(context.Background())
	if err != nil {
		t.Fatalf("SelfUser: %v", err)
	}
	if u.Username != "amy" || u.Quota != 1000000 || u.RequestCount != 12 {
		t.Errorf("user = %+v", u)
	}
}

func TestSuccessFalseBecomesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":false,"message":"no such user"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", "7")
	_, err := c.SelfUser(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Message != "no such user" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestUnauthorizedSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "stale", "7")
	if _, err := c.SelfUser(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
}

func TestUsageQueryPaths(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, `{"success":true,"data":[{"model_name":"gpt-4o","quota":10,"count":1,"token_used":50,"created_at":1755690000}]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", "7")
	records, err := c.Usage(context.Background(), UsageQuery{
		Start: 1755600000, End: 1755700000, Granularity: usage.GranularityDay,
	})
	if err != nil {
		t.Fatalf("Usage: %v", err)
	}
	if gotPath != "/api/data/self/" {
		t.Errorf("self path = %q", gotPath)
	}
	if len(records) != 1 || records[0].ModelName != "gpt-4o" {
		t.Errorf("records = %+v", records)
	}

	_, err = c.Usage(context.Background(), UsageQuery{
		Admin: true, Username: "bob", Start: 1, End: 2, Granularity: usage.GranularityHour,
	})
	if err != nil {
		t.Fatalf("admin Usage: %v", err)
	}
	if gotPath != "/api/data/" {
		t.Errorf("admin path = %q", gotPath)
	}
	params, err := url.ParseQuery(gotQuery)
	if err != nil {
		t.Fatalf("parse query %q: %v", gotQuery, err)
	}
	want := map[string]string{
		"username": "bob", "default_time": "hour",
		"start_timestamp": "1", "end_timestamp": "2",
	}
	for k, v := range want {
		if got := params.Get(k); got != v {
			t.Errorf("query param %s = %q, want %q", k, got, v)
		}
	}
}

func TestPricingDecodesSiblingFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/pricing" {
			t.Errorf("path = %q", r.URL.Path)
		}
		// group_ratio and usable_group ride alongside data, not inside it.
		fmt.Fprint(w, `{
			"success": true,
			"data": [{"model_name":"gpt-4o","quota_type":0,"model_ratio":1.25,"completion_ratio":4}],
			"group_ratio": {"default":1,"vip":0.8},
			"usable_group": {"default":"Default","vip":"VIP"}
		}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", "7")
	p, err := c.Pricing(context.Background())
	if err != nil {
		t.Fatalf("Pricing: %v", err)
	}
	if len(p.Models) != 1 || p.Models[0].ModelName != "gpt-4o" {
		t.Errorf("models = %+v", p.Models)
	}
	if p.GroupRatio["vip"] != 0.8 {
		t.Errorf("group_ratio = %v", p.GroupRatio)
	}
	if p.UsableGroup["vip"] != "VIP" {
		t.Errorf("usable_group = %v", p.UsableGroup)
	}
}

func TestPlanWriteMethods(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		fmt.Fprint(w, `{"success":true}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", "7")
	ctx := context.Background()

	if err := c.CreatePlan(ctx, Plan{Title: "starter"}); err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/api/plan" {
		t.Errorf("create = %s %s", gotMethod, gotPath)
	}

	if err := c.UpdatePlan(ctx, Plan{ID: 3, Title: "starter"}); err != nil {
		t.Fatalf("UpdatePlan: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/api/plan" {
		t.Errorf("update = %s %s", gotMethod, gotPath)
	}

	if err := c.DeletePlan(ctx, 3); err != nil {
		t.Fatalf("DeletePlan: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/api/plan/3" {
		t.Errorf("delete = %s %s", gotMethod, gotPath)
	}
}

func TestPlanProbeCaches404(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", "7")
	for i := 0; i < 3; i++ {
		if _, err := c.Plans(context.Background()); !errors.Is(err, ErrPlanUnavailable) {
			t.Fatalf("call %d: err = %v, want ErrPlanUnavailable", i, err)
		}
	}
	if hits != 1 {
		t.Errorf("endpoint hit %d times, want 1 (probe result must be cached)", hits)
	}
	if c.PlanCapability() != CapabilityUnavailable {
		t.Errorf("capability = %v, want unavailable", c.PlanCapability())
	}
}

func TestPlanProbeAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"data":[{"id":1,"title":"starter","price":5,"quota":2500000,"enabled":true}]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", "7")
	plans, err := c.Plans(context.Background())
	if err != nil {
		t.Fatalf("Plans: %v", err)
	}
	if len(plans) != 1 || plans[0].Title != "starter" {
		t.Errorf("plans = %+v", plans)
	}
	if c.PlanCapability() != CapabilityAvailable {
		t.Errorf("capability = %v, want available", c.PlanCapability())
	}
}
