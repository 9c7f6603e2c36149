package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	oaioption "github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/ssestream"
	"github.com/openai/openai-go/v3/shared"

	"github.com/linanwx/minichat/logger"
)

const (
	openAIAPIBase     = "https://api.openai.com/v1"
	deepSeekAPIBase   = "https://api.deepseek.com/v1"
	openRouterAPIBase = "https://openrouter.ai/api/v1"

	// Failures are reported once per turn, never retried.
	sdkMaxRetries = 0
)

func init() {
	RegisterProvider("openai", ProviderRegistration{
		Models:  []string{"gpt-4o-mini", "gpt-4.1-mini"},
		EnvKey:  "OPENAI_API_KEY",
		EnvBase: "OPENAI_API_BASE",
		Constructor: func(apiKey, apiBase, modelType, modelName string, maxTokens int, temperature float64) Provider {
			return newOpenAIProvider("openai", apiKey, apiBase, openAIAPIBase, modelType, modelName, maxTokens, temperature)
		},
	})

	RegisterProvider("deepseek", ProviderRegistration{
		Models:  []string{"deepseek-chat"},
		EnvKey:  "DEEPSEEK_API_KEY",
		EnvBase: "DEEPSEEK_API_BASE",
		Constructor: func(apiKey, apiBase, modelType, modelName string, maxTokens int, temperature float64) Provider {
			return newOpenAIProvider("deepseek", apiKey, apiBase, deepSeekAPIBase, modelType, modelName, maxTokens, temperature)
		},
	})

	RegisterProvider("openrouter", ProviderRegistration{
		Models:  []string{"openai/gpt-4o-mini", "mistralai/mistral-small"},
		EnvKey:  "OPENROUTER_API_KEY",
		EnvBase: "OPENROUTER_API_BASE",
		Constructor: func(apiKey, apiBase, modelType, modelName string, maxTokens int, temperature float64) Provider {
			return newOpenAIProvider("openrouter", apiKey, apiBase, openRouterAPIBase, modelType, modelName, maxTokens, temperature)
		},
	})
}

// OpenAIProvider streams chat completions from any OpenAI-compatible API.
type OpenAIProvider struct {
	providerName string
	apiBase      string
	modelName    string
	modelType    string
	maxTokens    int
	temperature  float64
	client       openai.Client
}

func newOpenAIProvider(providerName, apiKey, apiBase, defaultBase, modelType, modelName string, maxTokens int, temperature float64) *OpenAIProvider {
	if modelName == "" {
		modelName = modelType
	}

	baseURL := normalizeSDKBaseURL(apiBase, defaultBase, "/chat/completions")
	client := openai.NewClient(
		oaioption.WithAPIKey(apiKey),
		oaioption.WithBaseURL(baseURL),
		oaioption.WithMaxRetries(sdkMaxRetries),
	)

	return &OpenAIProvider{
		providerName: providerName,
		apiBase:      baseURL,
		modelName:    modelName,
		modelType:    modelType,
		maxTokens:    maxTokens,
		temperature:  temperature,
		client:       client,
	}
}

// normalizeSDKBaseURL turns a configured endpoint into the base URL the SDK
// expects: no endpoint suffix, one trailing slash.
func normalizeSDKBaseURL(apiBase, defaultBase, endpoint string) string {
	base := strings.TrimSpace(apiBase)
	if base == "" {
		base = defaultBase
	}
	base = strings.TrimRight(base, "/")
	base = strings.TrimSuffix(base, endpoint)
	return strings.TrimRight(base, "/") + "/"
}

// Stream opens a streaming chat completion.
func (p *OpenAIProvider) Stream(ctx context.Context, req *Request) (Stream, error) {
	start := time.Now()
	logRequest(p.providerName, p.modelName, req)

	stream := p.client.Chat.Completions.NewStreaming(ctx, p.buildParams(req))
	if err := stream.Err(); err != nil {
		_ = stream.Close()
		logger.Error(p.providerName+" request error", "provider", p.providerName, "err", err)
		return nil, backendError(p.providerName, fmt.Errorf("request failed: %w", err))
	}
	return newLoggedStream(p.providerName, p.modelName, start, &openAIStream{stream: stream}), nil
}

// Ping looks up the configured model.
func (p *OpenAIProvider) Ping(ctx context.Context) error {
	if _, err := p.client.Models.Get(ctx, p.modelName); err != nil {
		return backendError(p.providerName, fmt.Errorf("model lookup failed: %w", err))
	}
	return nil
}

func (p *OpenAIProvider) buildParams(req *Request) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.modelName),
		Messages: messages,
	}
	if p.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(p.maxTokens))
	}
	if p.temperature != 0 {
		params.Temperature = openai.Float(p.temperature)
	}
	return params
}

// openAIStream yields the non-empty content deltas of the first choice.
type openAIStream struct {
	stream *ssestream.Stream[openai.ChatCompletionChunk]
	cur    string
}

func (s *openAIStream) Next() bool {
	for s.stream.Next() {
		chunk := s.stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if content := chunk.Choices[0].Delta.Content; content != "" {
			s.cur = content
			return true
		}
	}
	return false
}

func (s *openAIStream) Current() string {
	return s.cur
}

func (s *openAIStream) Err() error {
	return s.stream.Err()
}

func (s *openAIStream) Close() error {
	return s.stream.Close()
}
