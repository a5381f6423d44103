package controller

import (
	"context"
	"strings"
	"sync"

	"github.com/polidex/cli/internal/api"
)

// ChatQuerier is the slice of the API client chat needs.
type ChatQuerier interface {
	Query(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error)
}

// ChatMessage is one transcript entry. The transcript lives only in
// memory for the current run; nothing is persisted.
type ChatMessage struct {
	Role    string
	Content string
	Sources []api.ChatSource
}

// Chat holds the transcript and submission state for the chat page.
type Chat struct {
	mu         sync.Mutex
	client     ChatQuerier
	spaceID    int
	topK       int
	transcript []ChatMessage
	inFlight   bool
}

// NewChat creates a chat controller with no space selected.
func NewChat(client ChatQuerier) *Chat {
	return &Chat{client: client}
}

// SelectSpace sets the space queries run against.
func (c *Chat) SelectSpace(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.spaceID = id
}

// SpaceID returns the selected space, or 0 if none.
func (c *Chat) SpaceID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.spaceID
}

// SetTopK overrides how many chunks the backend retrieves. Zero keeps
// the backend default.
func (c *Chat) SetTopK(k int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topK = k
}

// CanSubmit reports whether input may be submitted now: a space is
// selected, the input is non-blank, and no query is in flight.
func (c *Chat) CanSubmit(input string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.spaceID != 0 && strings.TrimSpace(input) != "" && !c.inFlight
}

// Submit appends the user turn immediately and runs the query. The
// assistant turn is appended only on success; a failure leaves the
// transcript with the user turn and returns the error for the view to
// surface. Callers gate on CanSubmit.
func (c *Chat) Submit(ctx context.Context, input string) (*api.ChatResponse, error) {
	c.mu.Lock()
	if c.spaceID == 0 || strings.TrimSpace(input) == "" || c.inFlight {
		c.mu.Unlock()
		return nil, errSubmitBlocked
	}
	c.inFlight = true
	c.transcript = append(c.transcript, ChatMessage{Role: "user", Content: input})
	req := api.ChatRequest{Query: input, SpaceID: c.spaceID, TopK: c.topK}
	c.mu.Unlock()

	resp, err := c.client.Query(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	if err != nil {
		return nil, err
	}
	c.transcript = append(c.transcript, ChatMessage{
		Role:    "assistant",
		Content: resp.Answer,
		Sources: resp.Sources,
	})
	return resp, nil
}

// InFlight reports whether a query is currently running.
func (c *Chat) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Transcript returns a copy of the transcript in order.
func (c *Chat) Transcript() []ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ChatMessage, len(c.transcript))
	copy(out, c.transcript)
	return out
}

// Reset clears the transcript, as when navigating away from the page.
func (c *Chat) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transcript = nil
}

type submitBlockedError struct{}

func (submitBlockedError) Error() string { return "submission blocked" }

var errSubmitBlocked = submitBlockedError{}
