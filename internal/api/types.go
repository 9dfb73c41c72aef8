// Package api is the typed client for the Veloera gateway's console API.
package api

import "encoding/json"

// envelope is the gateway's uniform response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// User is the authenticated account as reported by /api/user/self.
type User struct {
	ID                int     `json:"id"`
	Username          string  `json:"username"`
	DisplayName       string  `json:"display_name"`
	Role              int     `json:"role"`
	Group             string  `json:"group"`
	Quota             float64 `json:"quota"`
	UsedQuota         float64 `json:"used_quota"`
	RequestCount      int     `json:"request_count"`
	SubscriptionQuota float64 `json:"subscription_quota"`
}

// GroupInfo describes one usable billing group.
type GroupInfo struct {
	Desc  string  `json:"desc"`
	Ratio float64 `json:"ratio"`
}

// PricedModel is one row of the gateway's pricing table. QuotaType 0 bills
// per token, 1 bills a fixed price per call.
type PricedModel struct {
	ModelName       string   `json:"model_name"`
	QuotaType       int      `json:"quota_type"`
	ModelRatio      float64  `json:"model_ratio"`
	ModelPrice      float64  `json:"model_price"`
	CompletionRatio float64  `json:"completion_ratio"`
	OwnerBy         string   `json:"owner_by"`
	EnableGroups    []string `json:"enable_groups"`
}

// PricingData bundles the pricing table with the group ratios needed to
// compute effective prices.
type PricingData struct {
	Models      []PricedModel      `json:"models"`
	GroupRatio  map[string]float64 `json:"group_ratio"`
	UsableGroup map[string]string  `json:"usable_group"`
}

// Plan is a purchasable subscription plan.
type Plan struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quota       int64   `json:"quota"`
	Duration    int     `json:"duration"`
	Enabled     bool    `json:"enabled"`
}

// Option is one admin-editable gateway setting.
type Option struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Capability reports whether an optional gateway feature is present.
type Capability int

const (
	// CapabilityUnknown means the feature has not been probed yet.
	CapabilityUnknown Capability = iota
	// CapabilityAvailable means the feature endpoint responded normally.
	CapabilityAvailable
	// CapabilityUnavailable means the feature endpoint returned 404; the
	// gateway build does not ship it.
	CapabilityUnavailable
)
