package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/mindscreen/pkg/logging"
)

type stubChatAPI struct {
	got  openai.ChatCompletionRequest
	resp openai.ChatCompletionResponse
	err  error
}

func (s *stubChatAPI) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.got = req
	return s.resp, s.err
}

func TestOpenAIClientComplete(t *testing.T) {
	api := &stubChatAPI{resp: openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "  How long?  "},
			FinishReason: openai.FinishReasonStop,
		}},
		Usage: openai.Usage{PromptTokens: 12, CompletionTokens: 3, TotalTokens: 15},
	}}
	client := NewOpenAIClient(api, "")

	resp, err := client.Complete(context.Background(), Request{
		System:      []string{"You are Dr. Mind.", " "},
		Messages:    []Message{{Role: RoleUser, Content: "I feel low"}, {Role: RoleAssistant, Content: ""}},
		MaxTokens:   100,
		Temperature: 0.7,
	})
	require.NoError(t, err)
	assert.Equal(t, "How long?", resp.Text)
	assert.Equal(t, "stop", resp.StopReason)
	assert.Equal(t, int32(15), resp.Usage.TotalTokens)

	assert.Equal(t, "gpt-3.5-turbo", api.got.Model)
	require.Len(t, api.got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, api.got.Messages[0].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, api.got.Messages[1].Role)
	assert.Equal(t, 100, api.got.MaxTokens)
}

func TestOpenAIClientErrors(t *testing.T) {
	client := NewOpenAIClient(&stubChatAPI{}, "gpt-4o")
	_, err := client.Complete(context.Background(), Request{Messages: []Message{{Role: "tool", Content: "x"}}})
	assert.ErrorContains(t, err, "unsupported role")

	_, err = client.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	assert.ErrorContains(t, err, "no choices")

	cause := errors.New("429")
	client = NewOpenAIClient(&stubChatAPI{err: cause}, "gpt-4o")
	_, err = client.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	assert.ErrorIs(t, err, cause)
}

type stubConverseAPI struct {
	got *bedrockruntime.ConverseInput
	out *bedrockruntime.ConverseOutput
}

func (s *stubConverseAPI) Converse(_ context.Context, params *bedrockruntime.ConverseInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	s.got = params
	return s.out, nil
}

func TestBedrockClientComplete(t *testing.T) {
	api := &stubConverseAPI{out: &bedrockruntime.ConverseOutput{
		Output: &brtypes.ConverseOutputMemberMessage{Value: brtypes.Message{
			Role:    brtypes.ConversationRoleAssistant,
			Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: "Tell me more."}},
		}},
		StopReason: brtypes.StopReasonEndTurn,
		Usage:      &brtypes.TokenUsage{InputTokens: aws.Int32(20), OutputTokens: aws.Int32(4), TotalTokens: aws.Int32(24)},
	}}
	client := NewBedrockClient(api, "anthropic.claude-3-haiku")

	resp, err := client.Complete(context.Background(), Request{
		System:      []string{"system prompt"},
		Messages:    []Message{{Role: RoleSystem, Content: "retrieved"}, {Role: RoleUser, Content: "hello"}},
		Temperature: -1,
	})
	require.NoError(t, err)
	assert.Equal(t, "Tell me more.", resp.Text)
	assert.Equal(t, "end_turn", resp.StopReason)
	assert.Equal(t, int32(24), resp.Usage.TotalTokens)

	assert.Equal(t, "anthropic.claude-3-haiku", aws.ToString(api.got.ModelId))
	assert.Len(t, api.got.System, 2)
	assert.Len(t, api.got.Messages, 1)
	assert.Nil(t, api.got.InferenceConfig)
}

func TestBedrockClientNormalizesTurnOrder(t *testing.T) {
	api := &stubConverseAPI{out: &bedrockruntime.ConverseOutput{
		Output: &brtypes.ConverseOutputMemberMessage{Value: brtypes.Message{
			Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: "ok"}},
		}},
	}}
	client := NewBedrockClient(api, "model")

	_, err := client.Complete(context.Background(), Request{
		Messages: []Message{
			{Role: RoleAssistant, Content: "Hello, how are you feeling?"},
			{Role: RoleUser, Content: "tired"},
			{Role: RoleUser, Content: "and sad"},
			{Role: RoleAssistant, Content: "Since when?"},
		},
		Temperature: -1,
	})
	require.NoError(t, err)
	require.Len(t, api.got.Messages, 2)
	assert.Equal(t, brtypes.ConversationRoleUser, api.got.Messages[0].Role)
	assert.Len(t, api.got.Messages[0].Content, 2)
	assert.Len(t, api.got.System, 1)
}

func TestBedrockClientRequiresModel(t *testing.T) {
	client := NewBedrockClient(&stubConverseAPI{}, "")
	_, err := client.Complete(context.Background(), Request{})
	assert.ErrorContains(t, err, "model id is required")
}

func TestFallbackClient(t *testing.T) {
	primaryErr := errors.New("primary down")
	var fallbackModel = "unset"
	primary := funcClient(func(ctx context.Context, req Request) (Response, error) {
		return Response{}, primaryErr
	})
	fallback := funcClient(func(ctx context.Context, req Request) (Response, error) {
		fallbackModel = req.Model
		return Response{Text: "from fallback"}, nil
	})
	logger := logging.New("error")

	resp, err := NewFallbackClient(primary, fallback, logger).Complete(context.Background(), Request{Model: "primary-model"})
	require.NoError(t, err)
	assert.Equal(t, "from fallback", resp.Text)
	assert.Empty(t, fallbackModel)

	_, err = NewFallbackClient(primary, nil, logger).Complete(context.Background(), Request{})
	assert.ErrorIs(t, err, primaryErr)
}

func TestStubClientDiagnosesAfterTurns(t *testing.T) {
	stub := NewStubClient()
	resp, err := stub.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "tired"}}})
	require.NoError(t, err)
	assert.NotContains(t, resp.Text, "probabilities")

	msgs := []Message{
		{Role: RoleUser, Content: "a"}, {Role: RoleAssistant, Content: "b"},
		{Role: RoleUser, Content: "c"}, {Role: RoleAssistant, Content: "d"},
		{Role: RoleUser, Content: "e"},
	}
	resp, err = stub.Complete(context.Background(), Request{Messages: msgs})
	require.NoError(t, err)
	assert.Contains(t, resp.Text, `"probabilities"`)
	assert.Equal(t, int64(2), stub.Calls())
}
