package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/wolfman30/mindscreen/internal/config"
	"github.com/wolfman30/mindscreen/internal/criteria"
	"github.com/wolfman30/mindscreen/internal/llm"
	"github.com/wolfman30/mindscreen/pkg/logging"
)

// Closer releases provider resources.
type Closer func() error

// BuildLLMClient builds the primary provider, wrapped with the fallback provider when one
// is configured.
func BuildLLMClient(ctx context.Context, cfg *config.Config, awsCfg *aws.Config, logger *logging.Logger) (llm.Client, Closer, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	primary, closePrimary, err := buildProvider(ctx, cfg.LLMProvider, cfg, awsCfg)
	if err != nil {
		return nil, nil, err
	}
	if cfg.LLMFallbackProvider == "" || cfg.LLMFallbackProvider == cfg.LLMProvider {
		logger.Info("llm provider configured", "provider", cfg.LLMProvider)
		return primary, closePrimary, nil
	}

	fallback, closeFallback, err := buildProvider(ctx, cfg.LLMFallbackProvider, cfg, awsCfg)
	if err != nil {
		_ = closePrimary()
		return nil, nil, err
	}
	logger.Info("llm provider configured", "provider", cfg.LLMProvider, "fallback", cfg.LLMFallbackProvider)
	closeAll := func() error {
		err1 := closePrimary()
		err2 := closeFallback()
		if err1 != nil {
			return err1
		}
		return err2
	}
	return llm.NewFallbackClient(primary, fallback, logger), closeAll, nil
}

func noopCloser() error { return nil }

func buildProvider(ctx context.Context, name string, cfg *config.Config, awsCfg *aws.Config) (llm.Client, Closer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "stub":
		return llm.NewStubClient(), noopCloser, nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, nil, fmt.Errorf("bootstrap: OPENAI_API_KEY is required for the openai provider")
		}
		return llm.NewOpenAIClient(llm.NewOpenAIAPI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL), cfg.OpenAIModel), noopCloser, nil
	case "bedrock":
		if awsCfg == nil || cfg.BedrockModelID == "" {
			return nil, nil, fmt.Errorf("bootstrap: BEDROCK_MODEL_ID and aws config are required for the bedrock provider")
		}
		return llm.NewBedrockClient(bedrockruntime.NewFromConfig(*awsCfg), cfg.BedrockModelID), noopCloser, nil
	case "gemini":
		client, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap: gemini client: %w", err)
		}
		return client, client.Close, nil
	default:
		return nil, nil, fmt.Errorf("bootstrap: unknown llm provider %q", name)
	}
}

// BuildGate wraps client in the process-wide rate-limited call gate. A fallback client
// also takes a gate slot for its second provider call.
func BuildGate(client llm.Client, cfg *config.Config, observer llm.Observer, logger *logging.Logger) *llm.Gate {
	model := cfg.LLMProvider
	switch cfg.LLMProvider {
	case "openai":
		model = cfg.OpenAIModel
	case "bedrock":
		model = cfg.BedrockModelID
	case "gemini":
		model = cfg.GeminiModelID
	}
	opts := []llm.GateOption{
		llm.WithRateLimit(cfg.LLMRateLimitRequests, cfg.LLMRateLimitWindow),
		llm.WithCallTimeout(cfg.LLMCallTimeout),
		llm.WithModelLabel(model),
		llm.WithLogger(logger),
	}
	if observer != nil {
		opts = append(opts, llm.WithObserver(observer))
	}
	gate := llm.NewGate(client, opts...)
	if fc, ok := client.(*llm.FallbackClient); ok {
		fc.UseLimiter(gate)
	}
	return gate
}

// BuildEmbedder matches the embedder to the chat provider, falling back to the offline
// hashing embedder.
func BuildEmbedder(cfg *config.Config, awsCfg *aws.Config) criteria.Embedder {
	switch {
	case cfg.LLMProvider == "openai" && cfg.OpenAIAPIKey != "":
		return criteria.NewOpenAIEmbedder(llm.NewOpenAIAPI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL), cfg.OpenAIEmbeddingModel)
	case cfg.LLMProvider == "bedrock" && awsCfg != nil:
		return criteria.NewBedrockEmbedder(bedrockruntime.NewFromConfig(*awsCfg), cfg.BedrockEmbeddingModelID)
	default:
		return criteria.NewHashingEmbedder()
	}
}

// BuildCriteriaSearcher seeds the diagnostic criteria catalog into an in-memory index.
func BuildCriteriaSearcher(ctx context.Context, embedder criteria.Embedder, logger *logging.Logger) (*criteria.MemoryStore, error) {
	docs, err := criteria.DefaultDocuments()
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load criteria catalog: %w", err)
	}
	store := criteria.NewMemoryStore(embedder, logger)
	if err := store.Add(ctx, docs, 2); err != nil {
		return nil, fmt.Errorf("bootstrap: seed criteria: %w", err)
	}
	if logger != nil {
		logger.Info("criteria index ready", "documents", store.Len())
	}
	return store, nil
}
