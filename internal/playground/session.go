package playground

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Streamer is the transport a session streams completions through.
type Streamer interface {
	Stream(ctx context.Context, payload []byte, onChunk func(string)) error
}

// Session holds a conversation transcript and streams assistant replies into
// it. All exported methods are safe for concurrent use; overlapping Send
// calls are permitted and interleave at chunk granularity.
type Session struct {
	mu       sync.Mutex
	params   Params
	messages []Message
	client   Streamer
	events   chan Event
	nextID   atomic.Int64
	now      func() time.Time
}

// NewSession creates a session backed by the given transport.
func NewSession(client Streamer, params Params) *Session {
	s := &Session{
		params: params,
		client: client,
		events: make(chan Event, 64),
		now:    time.Now,
	}
	s.nextID.Store(100)
	return s
}

// Events returns the channel session notifications are delivered on. Events
// are dropped rather than block when the receiver falls behind; Messages is
// always the authoritative transcript.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Params returns the current request configuration.
func (s *Session) Params() Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// SetParams replaces the request configuration for subsequent turns.
func (s *Session) SetParams(p Params) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = p
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Reset clears the transcript. In-flight streams keep running but their
// target messages are gone, so their chunks are discarded.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}

// Send submits one user turn. The request payload is built from the current
// transcript plus the new user message before anything is appended: a
// configuration problem (ErrCustomBody) fails fast and leaves the transcript
// untouched. On success the user message and a loading assistant placeholder
// are appended atomically and the reply streams in on a goroutine.
//
// Blank input is ignored and returns nil.
func (s *Session) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	userMsg := Message{
		ID:       s.newID(),
		Role:     RoleUser,
		Content:  text,
		CreateAt: s.now().Unix(),
		Status:   StatusComplete,
	}

	s.mu.Lock()
	transcript := make([]Message, len(s.messages), len(s.messages)+1)
	copy(transcript, s.messages)
	transcript = append(transcript, userMsg)
	params := s.params
	s.mu.Unlock()

	payload, err := BuildPayload(params, transcript)
	if err != nil {
		return err
	}

	assistantMsg := Message{
		ID:       s.newID(),
		Role:     RoleAssistant,
		CreateAt: s.now().Unix(),
		Status:   StatusLoading,
	}

	s.mu.Lock()
	s.messages = append(s.messages, userMsg, assistantMsg)
	s.mu.Unlock()

	go s.stream(ctx, payload, assistantMsg.ID)
	return nil
}

func (s *Session) stream(ctx context.Context, payload []byte, id string) {
	err := s.client.Stream(ctx, payload, func(chunk string) {
		s.appendDelta(id, chunk)
	})
	s.finish(id, err)
}

func (s *Session) appendDelta(id, chunk string) {
	s.mu.Lock()
	if m := s.findLocked(id); m != nil {
		m.Content += chunk
		m.Status = StatusIncomplete
	}
	s.mu.Unlock()
	s.emit(Event{Kind: EventDelta, MessageID: id})
}

func (s *Session) finish(id string, err error) {
	s.mu.Lock()
	if m := s.findLocked(id); m != nil {
		if err != nil {
			m.Status = StatusError
		} else {
			m.Status = StatusComplete
		}
	}
	s.mu.Unlock()

	if err != nil {
		s.emitTerminal(Event{Kind: EventError, MessageID: id, Err: err})
		return
	}
	s.emitTerminal(Event{Kind: EventDone, MessageID: id})
}

// findLocked returns the transcript message with the given id. Callers hold mu.
func (s *Session) findLocked(id string) *Message {
	for i := range s.messages {
		if s.messages[i].ID == id {
			return &s.messages[i]
		}
	}
	return nil
}

func (s *Session) newID() string {
	return strconv.FormatInt(s.nextID.Add(1), 10)
}

func (s *Session) emit(e Event) {
	select {
	case s.events <- e:
	default:
	}
}

// emitTerminal never drops its event: a receiver waiting only for the
// done/error notification must get it even after a burst of deltas filled
// the buffer. Oldest buffered events are evicted to make room, so this
// cannot block an unconsumed session either.
func (s *Session) emitTerminal(e Event) {
	for {
		select {
		case s.events <- e:
			return
		default:
			select {
			case <-s.events:
			default:
			}
		}
	}
}
