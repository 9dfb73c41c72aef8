// Package playground drives streaming chat sessions against the gateway's
// playground relay endpoint.
package playground

import "errors"

// ErrCustomBody reports a custom request body that cannot be used: empty,
// invalid JSON, or not a JSON object. Send fails before any network call.
var ErrCustomBody = errors.New("invalid custom request body")

// Role identifies a transcript participant.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Status tracks an assistant message through its stream lifecycle.
type Status string

const (
	// StatusLoading marks an assistant placeholder with no content yet.
	StatusLoading Status = "loading"
	// StatusIncomplete marks a message that is still receiving chunks.
	StatusIncomplete Status = "incomplete"
	// StatusComplete marks a finished message.
	StatusComplete Status = "complete"
	// StatusError marks a stream that failed; partial content is kept.
	StatusError Status = "error"
)

// Message is one entry in the conversation transcript.
type Message struct {
	ID       string `json:"id"`
	Role     Role   `json:"role"`
	Content  string `json:"content"`
	CreateAt int64  `json:"createAt"`
	Status   Status `json:"status,omitempty"`
}

// Params holds the request configuration a session sends with each turn.
type Params struct {
	Model             string
	Group             string
	Temperature       float64
	TopP              float64
	MaxTokens         int
	SystemPrompt      string
	CustomBody        string
	CustomBodyEnabled bool
}

// EventKind classifies session events.
type EventKind int

const (
	// EventDelta fires for each appended content chunk.
	EventDelta EventKind = iota
	// EventDone fires when a stream completes normally.
	EventDone
	// EventError fires when a stream fails.
	EventError
)

// Event notifies observers of transcript changes during streaming.
type Event struct {
	Kind      EventKind
	MessageID string
	Err       error
}
