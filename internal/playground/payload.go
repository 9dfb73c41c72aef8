package playground

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// wireMessage is the shape the completion endpoint expects per message.
type wireMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string        `json:"model"`
	Group       string        `json:"group,omitempty"`
	Messages    []wireMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

// BuildPayload assembles the request body for one completion turn. The
// transcript is the conversation up to and including the user's new message;
// a non-blank system prompt is prepended as the first wire message.
//
// With CustomBodyEnabled the custom JSON object is the base document, but
// stream and messages are always overwritten so the live conversation and
// streaming mode cannot be configured away. A blank, malformed, or non-object
// custom body fails with ErrCustomBody before anything touches the network.
func BuildPayload(params Params, transcript []Message) ([]byte, error) {
	wire := make([]wireMessage, 0, len(transcript)+1)
	if sys := strings.TrimSpace(params.SystemPrompt); sys != "" {
		wire = append(wire, wireMessage{Role: RoleSystem, Content: sys})
	}
	for _, m := range transcript {
		wire = append(wire, wireMessage{Role: m.Role, Content: m.Content})
	}

	if !params.CustomBodyEnabled {
		return json.Marshal(completionRequest{
			Model:       params.Model,
			Group:       params.Group,
			Messages:    wire,
			Temperature: params.Temperature,
			TopP:        params.TopP,
			MaxTokens:   params.MaxTokens,
			Stream:      true,
		})
	}

	custom := strings.TrimSpace(params.CustomBody)
	if custom == "" {
		return nil, fmt.Errorf("%w: body is empty", ErrCustomBody)
	}
	if !gjson.Valid(custom) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrCustomBody)
	}
	if !gjson.Parse(custom).IsObject() {
		return nil, fmt.Errorf("%w: top level must be an object", ErrCustomBody)
	}

	body := []byte(custom)
	body, err := sjson.SetBytes(body, "stream", true)
	if err != nil {
		return nil, fmt.Errorf("set stream: %w", err)
	}
	wireJSON, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("marshal messages: %w", err)
	}
	body, err = sjson.SetRawBytes(body, "messages", wireJSON)
	if err != nil {
		return nil, fmt.Errorf("set messages: %w", err)
	}
	return body, nil
}
