package playground

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

const doneSentinel = "[DONE]"

// maxLineSize bounds a single SSE line; completion chunks are small but a
// relay may coalesce large frames.
const maxLineSize = 1024 * 1024

// StreamClient posts completion requests to the gateway's playground relay
// and decodes the server-sent event stream.
type StreamClient struct {
	BaseURL    string
	Token      string
	UserID     string
	HTTPClient *http.Client
}

// NewStreamClient creates a client for the given gateway.
func NewStreamClient(baseURL, token, userID string) *StreamClient {
	return &StreamClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		UserID:     userID,
		HTTPClient: &http.Client{},
	}
}

// Stream posts payload to the relay endpoint and invokes onChunk for every
// piece of assistant text as it arrives. It returns nil when the server sends
// the terminal sentinel, and an error if the stream ends without one.
func (c *StreamClient) Stream(ctx context.Context, payload []byte, onChunk func(string)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/pg/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if c.UserID != "" {
		req.Header.Set("Veloera-User", c.UserID)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("post completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if msg := gjson.GetBytes(body, "error.message"); msg.Exists() {
			return fmt.Errorf("completion failed: %s", msg.String())
		}
		return fmt.Errorf("completion failed: status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}
		if data == doneSentinel {
			return nil
		}
		if !gjson.Valid(data) {
			continue
		}
		if msg := gjson.Get(data, "error.message"); msg.Exists() {
			return fmt.Errorf("stream error: %s", msg.String())
		}
		chunk := gjson.Get(data, "choices.0.delta.content")
		if !chunk.Exists() {
			chunk = gjson.Get(data, "choices.0.message.content")
		}
		if chunk.Exists() && chunk.String() != "" {
			onChunk(chunk.String())
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return fmt.Errorf("stream ended without %s", doneSentinel)
}
