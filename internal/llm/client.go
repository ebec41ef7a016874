// Package llm talks to language model providers and throttles outbound calls.
package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry of the context replayed to a model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

// Request carries system instructions separately from the conversational turns.
// A negative Temperature leaves the provider default in place.
type Request struct {
	Model       string
	System      []string
	Messages    []Message
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

// Response is the provider-neutral completion result. Raw keeps the provider payload for
// debugging and is never interpreted by callers.
type Response struct {
	Text       string
	Usage      Usage
	StopReason string
	Raw        any
}

type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}
