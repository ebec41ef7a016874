package llm

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
)

// StubClient is a deterministic offline Client for local development. Once the request
// carries enough patient turns it answers with a diagnosis JSON block.
type StubClient struct {
	TurnsBeforeDiagnosis int
	calls                atomic.Int64
}

func NewStubClient() *StubClient {
	return &StubClient{TurnsBeforeDiagnosis: 3}
}

func (c *StubClient) Calls() int64 { return c.calls.Load() }

func (c *StubClient) Complete(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	c.calls.Add(1)

	userTurns := 0
	last := ""
	for _, msg := range req.Messages {
		if msg.Role == RoleUser {
			userTurns++
			last = msg.Content
		}
	}

	var text string
	switch {
	case userTurns == 0:
		text = "Thank you. Could you tell me a little more about how you have been feeling?"
	case userTurns >= c.TurnsBeforeDiagnosis:
		text = "Thank you for sharing all of that. Based on what you described, here is my preliminary impression.\n" +
			"```json\n{\"result\": [\"Major Depressive Disorder\", \"Generalized Anxiety Disorder\"], \"probabilities\": [0.6, 0.3]}\n```"
	default:
		text = fmt.Sprintf("I hear you when you say %q. How long has this been going on, and how is it affecting your sleep and daily routine?",
			truncate(strings.TrimSpace(last), 80))
	}

	return Response{
		Text:       text,
		StopReason: "end_turn",
		Usage: Usage{
			InputTokens:  int32(len(req.Messages)),
			OutputTokens: int32(len(strings.Fields(text))),
			TotalTokens:  int32(len(req.Messages) + len(strings.Fields(text))),
		},
	}, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
