package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/mindscreen/pkg/logging"
)

var (
	// ErrLLMTimeout reports a model call that exceeded the gate's call timeout.
	ErrLLMTimeout = errors.New("llm: call timed out")
	// ErrLLMCallFailed wraps any other provider failure.
	ErrLLMCallFailed = errors.New("llm: call failed")
)

const (
	DefaultGateLimit   = 10
	DefaultGateWindow  = 10 * time.Second
	DefaultCallTimeout = 30 * time.Second
)

var gateTracer = otel.Tracer("mindscreen.internal.llm")

// Observer receives gate measurements. Implementations must be safe for concurrent use.
type Observer interface {
	ObserveGateWait(seconds float64)
	ObserveCompletion(model, status string, seconds float64, inputTokens, outputTokens int32)
}

// Gate bounds outbound model calls to at most limit starts in any trailing window.
// A single Gate is meant to be shared by every caller in the process.
type Gate struct {
	client  Client
	limit   int
	window  time.Duration
	timeout time.Duration
	model   string

	logger   *logging.Logger
	observer Observer
	now      func() time.Time

	mu    sync.Mutex
	calls []time.Time
}

type GateOption func(*Gate)

func WithRateLimit(limit int, window time.Duration) GateOption {
	return func(g *Gate) {
		if limit > 0 {
			g.limit = limit
		}
		if window > 0 {
			g.window = window
		}
	}
}

func WithCallTimeout(timeout time.Duration) GateOption {
	return func(g *Gate) {
		if timeout > 0 {
			g.timeout = timeout
		}
	}
}

// WithModelLabel sets the model name reported in logs and metrics.
func WithModelLabel(model string) GateOption {
	return func(g *Gate) { g.model = model }
}

func WithLogger(logger *logging.Logger) GateOption {
	return func(g *Gate) {
		if logger != nil {
			g.logger = logger
		}
	}
}

func WithObserver(observer Observer) GateOption {
	return func(g *Gate) { g.observer = observer }
}

func withClock(now func() time.Time) GateOption {
	return func(g *Gate) { g.now = now }
}

func NewGate(client Client, opts ...GateOption) *Gate {
	if client == nil {
		panic("llm: gate client cannot be nil")
	}
	g := &Gate{
		client:  client,
		limit:   DefaultGateLimit,
		window:  DefaultGateWindow,
		timeout: DefaultCallTimeout,
		model:   "default",
		logger:  logging.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Acquire blocks until a call may start without exceeding the window, or ctx ends.
// A granted call is recorded immediately so concurrent waiters see it.
func (g *Gate) Acquire(ctx context.Context) error {
	start := time.Now()
	for {
		wait := g.reserve()
		if wait <= 0 {
			if g.observer != nil {
				g.observer.ObserveGateWait(time.Since(start).Seconds())
			}
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%w: waiting for rate limit: %w", ErrLLMTimeout, ctx.Err())
			}
			return fmt.Errorf("llm: waiting for rate limit: %w", ctx.Err())
		case <-timer.C:
		}
	}
}

// reserve records a call and returns zero when capacity exists, otherwise the time until
// the oldest call in the window expires.
func (g *Gate) reserve() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	kept := g.calls[:0]
	for _, t := range g.calls {
		if now.Sub(t) < g.window {
			kept = append(kept, t)
		}
	}
	g.calls = kept

	if len(g.calls) < g.limit {
		g.calls = append(g.calls, now)
		return 0
	}
	wait := g.window - now.Sub(g.calls[0])
	if wait <= 0 {
		wait = time.Millisecond
	}
	return wait
}

// Complete acquires a slot and performs one model call bounded by the call timeout.
// Failures are not retried.
func (g *Gate) Complete(ctx context.Context, req Request) (Response, error) {
	ctx, span := gateTracer.Start(ctx, "llm.complete")
	defer span.End()

	if err := g.Acquire(ctx); err != nil {
		span.RecordError(err)
		return Response{}, err
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	model := req.Model
	if model == "" {
		model = g.model
	}

	start := time.Now()
	resp, err := g.client.Complete(callCtx, req)
	latency := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
		if callCtx.Err() == context.DeadlineExceeded {
			status = "timeout"
		}
	}
	if g.observer != nil {
		g.observer.ObserveCompletion(model, status, latency.Seconds(), resp.Usage.InputTokens, resp.Usage.OutputTokens)
	}
	if span.IsRecording() {
		span.SetAttributes(
			attribute.Float64("mindscreen.llm.latency_ms", float64(latency.Milliseconds())),
			attribute.String("mindscreen.llm.model", model),
			attribute.String("mindscreen.llm.status", status),
			attribute.Int("mindscreen.llm.input_tokens", int(resp.Usage.InputTokens)),
			attribute.Int("mindscreen.llm.output_tokens", int(resp.Usage.OutputTokens)),
			attribute.String("mindscreen.llm.stop_reason", resp.StopReason),
		)
	}

	if err != nil {
		span.RecordError(err)
		g.logger.Warn("llm completion failed", "model", model, "status", status, "latency_ms", latency.Milliseconds(), "error", err)
		if status == "timeout" {
			return Response{}, fmt.Errorf("%w after %s", ErrLLMTimeout, g.timeout)
		}
		return Response{}, fmt.Errorf("%w: %w", ErrLLMCallFailed, err)
	}

	g.logger.Info("llm completion finished",
		"model", model,
		"latency_ms", latency.Milliseconds(),
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"stop_reason", resp.StopReason,
	)
	return resp, nil
}
