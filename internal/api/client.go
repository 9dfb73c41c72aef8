package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/veloera/velo/internal/logger"
	"github.com/veloera/velo/internal/usage"
)

// ErrUnauthorized reports a rejected or expired access token. Callers should
// drop the cached identity and ask the user to sign in again.
var ErrUnauthorized = errors.New("unauthorized")

// ErrPlanUnavailable reports that this gateway build does not ship the
// subscription plan feature. The probe result is cached for the client's
// lifetime, so repeated calls do not hit the network.
var ErrPlanUnavailable = errors.New("subscription plans unavailable on this gateway")

var errNotFound = errors.New("not found")

// APIError is a gateway response with success:false.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return "gateway request failed"
	}
	return e.Message
}

// Client talks to one Veloera gateway on behalf of one user.
type Client struct {
	BaseURL    string
	Token      string
	UserID     string
	HTTPClient *http.Client

	mu      sync.Mutex
	planCap Capability
}

// NewClient creates a client for the given gateway.
func NewClient(baseURL, token, userID string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		UserID:     userID,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// doRaw performs the request and returns the response body after the shared
// status handling. Most endpoints go through do; doRaw exists for responses
// that carry fields outside the data envelope.
func (c *Client) doRaw(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if c.UserID != "" {
		req.Header.Set("Veloera-User", c.UserID)
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", path, errNotFound)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response for %s: %w", path, err)
	}
	return raw, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	raw, err := c.doRaw(ctx, method, path, body)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode response for %s: %w", path, err)
	}
	if !env.Success {
		logger.Warn("gateway rejected request", "path", path, "message", env.Message)
		return &APIError{Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data for %s: %w", path, err)
		}
	}
	return nil
}

// SelfUser fetches the authenticated account.
func (c *Client) SelfUser(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/api/user/self", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Models lists the model names the account may call.
func (c *Client) Models(ctx context.Context) ([]string, error) {
	var models []string
	if err := c.do(ctx, http.MethodGet, "/api/user/models", nil, &models); err != nil {
		return nil, err
	}
	return models, nil
}

// Groups lists the billing groups usable by the account.
func (c *Client) Groups(ctx context.Context) (map[string]GroupInfo, error) {
	groups := make(map[string]GroupInfo)
	if err := c.do(ctx, http.MethodGet, "/api/user/self/groups", nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// Pricing fetches the pricing table. The group ratios ride alongside the
// data field rather than inside it, so this decodes the response itself.
func (c *Client) Pricing(ctx context.Context) (*PricingData, error) {
	raw, err := c.doRaw(ctx, http.MethodGet, "/api/pricing", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Success     bool               `json:"success"`
		Message     string             `json:"message"`
		Data        []PricedModel      `json:"data"`
		GroupRatio  map[string]float64 `json:"group_ratio"`
		UsableGroup map[string]string  `json:"usable_group"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode pricing: %w", err)
	}
	if !resp.Success {
		return nil, &APIError{Message: resp.Message}
	}
	return &PricingData{
		Models:      resp.Data,
		GroupRatio:  resp.GroupRatio,
		UsableGroup: resp.UsableGroup,
	}, nil
}

// UsageQuery selects a usage window. Admin queries may target any username;
// non-admin queries are scoped to the token's own account by the gateway.
type UsageQuery struct {
	Username    string
	Start       int64
	End         int64
	Granularity usage.Granularity
	Admin       bool
}

// Usage fetches raw usage records for the query window.
func (c *Client) Usage(ctx context.Context, q UsageQuery) ([]usage.Record, error) {
	path := "/api/data/self/"
	v := url.Values{}
	if q.Admin {
		path = "/api/data/"
		if q.Username != "" {
			v.Set("username", q.Username)
		}
	}
	v.Set("start_timestamp", strconv.FormatInt(q.Start, 10))
	v.Set("end_timestamp", strconv.FormatInt(q.End, 10))
	v.Set("default_time", string(q.Granularity))

	var records []usage.Record
	if err := c.do(ctx, http.MethodGet, path+"?"+v.Encode(), nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Status fetches the gateway's public status document, the source of truth
// for the locally cached branding keys.
func (c *Client) Status(ctx context.Context) (map[string]interface{}, error) {
	status := make(map[string]interface{})
	if err := c.do(ctx, http.MethodGet, "/api/status", nil, &status); err != nil {
		return nil, err
	}
	return status, nil
}

// Options lists the gateway's admin-editable settings.
func (c *Client) Options(ctx context.Context) ([]Option, error) {
	var opts []Option
	if err := c.do(ctx, http.MethodGet, "/api/option/", nil, &opts); err != nil {
		return nil, err
	}
	return opts, nil
}

// UpdateOption writes one gateway setting.
func (c *Client) UpdateOption(ctx context.Context, key, value string) error {
	return c.do(ctx, http.MethodPut, "/api/option/", Option{Key: key, Value: value}, nil)
}

// PlanCapability reports the cached result of the plan feature probe.
func (c *Client) PlanCapability() Capability {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.planCap
}

// Plans lists purchasable subscription plans. The first 404 marks the feature
// unavailable for the rest of the client's lifetime and every later call
// returns ErrPlanUnavailable without touching the network.
func (c *Client) Plans(ctx context.Context) ([]Plan, error) {
	c.mu.Lock()
	if c.planCap == CapabilityUnavailable {
		c.mu.Unlock()
		return nil, ErrPlanUnavailable
	}
	c.mu.Unlock()

	var plans []Plan
	err := c.do(ctx, http.MethodGet, "/api/plan", nil, &plans)
	if errors.Is(err, errNotFound) {
		c.mu.Lock()
		c.planCap = CapabilityUnavailable
		c.mu.Unlock()
		logger.Info("plan endpoint missing, feature disabled", "base", c.BaseURL)
		return nil, ErrPlanUnavailable
	}
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.planCap = CapabilityAvailable
	c.mu.Unlock()
	return plans, nil
}

// PurchasePlan buys one plan by id.
func (c *Client) PurchasePlan(ctx context.Context, id int) error {
	payload := map[string]int{"plan_id": id}
	err := c.do(ctx, http.MethodPost, "/api/plan/purchase", payload, nil)
	if errors.Is(err, errNotFound) {
		return ErrPlanUnavailable
	}
	return err
}

// CreatePlan adds a plan to the catalog (admin).
func (c *Client) CreatePlan(ctx context.Context, p Plan) error {
	err := c.do(ctx, http.MethodPost, "/api/plan", p, nil)
	if errors.Is(err, errNotFound) {
		return ErrPlanUnavailable
	}
	return err
}

// UpdatePlan rewrites an existing plan (admin).
func (c *Client) UpdatePlan(ctx context.Context, p Plan) error {
	err := c.do(ctx, http.MethodPut, "/api/plan", p, nil)
	if errors.Is(err, errNotFound) {
		return ErrPlanUnavailable
	}
	return err
}

// DeletePlan removes a plan from the catalog (admin).
func (c *Client) DeletePlan(ctx context.Context, id int) error {
	err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/plan/%d", id), nil, nil)
	if errors.Is(err, errNotFound) {
		return ErrPlanUnavailable
	}
	return err
}
