package llm

import (
	"context"

	"github.com/wolfman30/mindscreen/pkg/logging"
)

// Limiter admits one outbound call. *Gate satisfies it.
type Limiter interface {
	Acquire(ctx context.Context) error
}

// FallbackClient sends a failed completion once to a secondary provider.
// The fallback runs with its own configured model. When a limiter is set, the fallback
// call takes its own slot so both attempts count against the same quota.
type FallbackClient struct {
	primary  Client
	fallback Client
	limiter  Limiter
	logger   *logging.Logger
}

func NewFallbackClient(primary, fallback Client, logger *logging.Logger) *FallbackClient {
	if primary == nil {
		panic("llm: primary client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &FallbackClient{primary: primary, fallback: fallback, logger: logger}
}

// UseLimiter makes fallback calls wait on l before going out.
func (c *FallbackClient) UseLimiter(l Limiter) {
	c.limiter = l
}

func (c *FallbackClient) Complete(ctx context.Context, req Request) (Response, error) {
	resp, err := c.primary.Complete(ctx, req)
	if err == nil {
		return resp, nil
	}
	c.logger.Warn("primary llm failed, attempting fallback",
		"error", err.Error(),
		"fallback_available", c.fallback != nil,
	)
	if c.fallback == nil || ctx.Err() != nil {
		return Response{}, err
	}

	if c.limiter != nil {
		if err := c.limiter.Acquire(ctx); err != nil {
			return Response{}, err
		}
	}
	req.Model = ""
	fallbackResp, fallbackErr := c.fallback.Complete(ctx, req)
	if fallbackErr != nil {
		c.logger.Error("fallback llm also failed",
			"primary_error", err.Error(),
			"fallback_error", fallbackErr.Error(),
		)
		return Response{}, fallbackErr
	}
	c.logger.Info("fallback llm succeeded after primary failure")
	return fallbackResp, nil
}
