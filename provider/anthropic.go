package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	anthropicstream "github.com/anthropics/anthropic-sdk-go/packages/ssestream"

	"github.com/linanwx/minichat/logger"
)

// The Messages API requires max_tokens.
const anthropicDefaultMaxTokens = 1024

func init() {
	RegisterProvider("anthropic", ProviderRegistration{
		Models:  []string{"claude-haiku-4-5", "claude-sonnet-4-5"},
		EnvKey:  "ANTHROPIC_API_KEY",
		EnvBase: "ANTHROPIC_BASE_URL",
		Constructor: func(apiKey, apiBase, modelType, modelName string, maxTokens int, temperature float64) Provider {
			return newAnthropicProvider(apiKey, apiBase, modelType, modelName, maxTokens, temperature)
		},
	})
}

// AnthropicProvider streams replies from the Anthropic Messages API.
type AnthropicProvider struct {
	modelName   string
	modelType   string
	maxTokens   int
	temperature float64
	client      anthropic.Client
}

func newAnthropicProvider(apiKey, apiBase, modelType, modelName string, maxTokens int, temperature float64) *AnthropicProvider {
	if modelName == "" {
		modelName = modelType
	}
	if maxTokens <= 0 {
		maxTokens = anthropicDefaultMaxTokens
	}

	opts := []anthropicoption.RequestOption{
		anthropicoption.WithAPIKey(apiKey),
		anthropicoption.WithMaxRetries(sdkMaxRetries),
	}
	if base := strings.TrimSpace(apiBase); base != "" {
		opts = append(opts, anthropicoption.WithBaseURL(normalizeSDKBaseURL(base, "", "/v1/messages")))
	}

	return &AnthropicProvider{
		modelName:   modelName,
		modelType:   modelType,
		maxTokens:   maxTokens,
		temperature: temperature,
		client:      anthropic.NewClient(opts...),
	}
}

// Stream opens a streaming Messages request.
func (p *AnthropicProvider) Stream(ctx context.Context, req *Request) (Stream, error) {
	start := time.Now()
	logRequest("anthropic", p.modelName, req)

	stream := p.client.Messages.NewStreaming(ctx, p.buildParams(req))
	if err := stream.Err(); err != nil {
		_ = stream.Close()
		logger.Error("anthropic request error", "provider", "anthropic", "err", err)
		return nil, backendError("anthropic", fmt.Errorf("request failed: %w", err))
	}
	return newLoggedStream("anthropic", p.modelName, start, &anthropicStream{stream: stream}), nil
}

// buildParams moves system messages into the top-level system field.
func (p *AnthropicProvider) buildParams(req *Request) anthropic.MessageNewParams {
	var system []anthropic.TextBlockParam
	messages := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: m.Content})
		case RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.modelName),
		MaxTokens: int64(p.maxTokens),
		Messages:  messages,
		System:    system,
	}
	if p.temperature != 0 {
		params.Temperature = anthropic.Float(p.temperature)
	}
	return params
}

// anthropicStream yields the text deltas of the reply.
type anthropicStream struct {
	stream *anthropicstream.Stream[anthropic.MessageStreamEventUnion]
	cur    string
}

func (s *anthropicStream) Next() bool {
	for s.stream.Next() {
		event := s.stream.Current()
		delta, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
		if !ok {
			continue
		}
		if text, ok := delta.Delta.AsAny().(anthropic.TextDelta); ok && text.Text != "" {
			s.cur = text.Text
			return true
		}
	}
	return false
}

func (s *anthropicStream) Current() string {
	return s.cur
}

func (s *anthropicStream) Err() error {
	return s.stream.Err()
}

func (s *anthropicStream) Close() error {
	return s.stream.Close()
}
