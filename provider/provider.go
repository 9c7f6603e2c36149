// Package provider defines the streaming chat backend interface and its
// implementations.
package provider

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/linanwx/minichat/logger"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Provider is the interface for streaming chat backends.
type Provider interface {
	// Stream submits the conversation and returns the reply as a stream of
	// text fragments. Closing the stream releases the upstream connection.
	Stream(ctx context.Context, req *Request) (Stream, error)
}

// Pinger is implemented by providers that can check their backend without
// sending a chat request.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Stream is a sequence of reply fragments.
type Stream interface {
	// Next blocks until the next fragment is available. It returns false
	// once the reply is complete or failed.
	Next() bool
	// Current returns the fragment read by the last successful Next.
	Current() string
	// Err returns the failure that ended the stream, if any.
	Err() error
	Close() error
}

// Request represents a chat completion request.
type Request struct {
	Messages []Message
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewChatRequest builds the two-message conversation of one turn: the
// persona prompt followed by the user's text. No history is carried over.
func NewChatRequest(systemPrompt, userText string) *Request {
	msgs := make([]Message, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		msgs = append(msgs, SystemMessage(systemPrompt))
	}
	msgs = append(msgs, UserMessage(userText))
	return &Request{Messages: msgs}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// SystemMessage creates a system message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// BackendError wraps any failure of a backend call: transport, HTTP status,
// protocol or payload errors.
type BackendError struct {
	Provider string
	Err      error
}

func (e *BackendError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

func backendError(provider string, err error) error {
	if err == nil {
		return nil
	}
	var be *BackendError
	if errors.As(err, &be) {
		return err
	}
	return &BackendError{Provider: provider, Err: err}
}

// Settings carries the runtime options used to build a provider.
type Settings struct {
	APIKey      string
	APIBase     string
	ModelType   string
	ModelName   string
	MaxTokens   int
	Temperature float64
}

// ProviderConstructor builds a provider for the requested model/runtime settings.
type ProviderConstructor func(apiKey, apiBase, modelType, modelName string, maxTokens int, temperature float64) Provider

// ProviderRegistration defines metadata and constructor for a provider.
type ProviderRegistration struct {
	Models      []string // suggested models, the first is the default
	EnvKey      string
	EnvBase     string
	KeyOptional bool // local servers need no API key
	Constructor ProviderConstructor
}

var (
	registryMu       sync.RWMutex
	providerRegistry = map[string]ProviderRegistration{}
)

// RegisterProvider registers provider metadata and constructor.
func RegisterProvider(name string, reg ProviderRegistration) {
	name = strings.TrimSpace(name)
	if name == "" || reg.Constructor == nil {
		return
	}

	models := make([]string, 0, len(reg.Models))
	for _, model := range reg.Models {
		model = strings.TrimSpace(model)
		if model == "" {
			continue
		}
		models = append(models, model)
	}
	reg.Models = models
	reg.EnvKey = strings.TrimSpace(reg.EnvKey)
	reg.EnvBase = strings.TrimSpace(reg.EnvBase)

	registryMu.Lock()
	providerRegistry[name] = reg
	registryMu.Unlock()
}

// Lookup returns the registration of a provider.
func Lookup(name string) (ProviderRegistration, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	reg, ok := providerRegistry[strings.TrimSpace(name)]
	return reg, ok
}

// SupportedProviders returns all supported provider names in sorted order.
func SupportedProviders() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(providerRegistry))
	for name := range providerRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SupportedModelsForProvider returns the suggested models of a provider.
func SupportedModelsForProvider(providerName string) []string {
	reg, ok := Lookup(providerName)
	if !ok {
		return nil
	}
	out := make([]string, len(reg.Models))
	copy(out, reg.Models)
	return out
}

// Build creates the named provider. Empty key and base fall back to the
// provider's environment variables, and an empty model to its default.
func Build(name string, s Settings) (Provider, error) {
	reg, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s (supported: %s)", name, strings.Join(SupportedProviders(), ", "))
	}
	if s.APIKey == "" && reg.EnvKey != "" {
		s.APIKey = strings.TrimSpace(os.Getenv(reg.EnvKey))
	}
	if s.APIBase == "" && reg.EnvBase != "" {
		s.APIBase = strings.TrimSpace(os.Getenv(reg.EnvBase))
	}
	if s.APIKey == "" && !reg.KeyOptional {
		return nil, fmt.Errorf("%s API key not configured: set %s or run 'minichat onboard'", name, reg.EnvKey)
	}
	if s.ModelType == "" {
		if len(reg.Models) == 0 {
			return nil, fmt.Errorf("no model configured for provider %s", name)
		}
		s.ModelType = reg.Models[0]
	}
	return reg.Constructor(s.APIKey, s.APIBase, s.ModelType, s.ModelName, s.MaxTokens, s.Temperature), nil
}

func inputChars(messages []Message) int {
	total := 0
	for _, m := range messages {
		total += len(m.Role)
		total += len(m.Content)
	}
	return total
}

func logRequest(providerName, modelName string, req *Request) {
	logger.Info(
		providerName+" request",
		"provider", providerName,
		"modelName", modelName,
		"messages", len(req.Messages),
		"inputChars", inputChars(req.Messages),
		"inputTokens", estimateTokens(req.Messages),
	)
}

// loggedStream decorates a backend stream: errors become BackendErrors and
// a summary is logged once when the stream is closed.
type loggedStream struct {
	inner        Stream
	providerName string
	modelName    string
	start        time.Time
	fragments    int
	outputChars  int
	closeOnce    sync.Once
	closeErr     error
}

func newLoggedStream(providerName, modelName string, start time.Time, inner Stream) *loggedStream {
	return &loggedStream{
		inner:        inner,
		providerName: providerName,
		modelName:    modelName,
		start:        start,
	}
}

func (s *loggedStream) Next() bool {
	if !s.inner.Next() {
		return false
	}
	s.fragments++
	s.outputChars += len(s.inner.Current())
	return true
}

func (s *loggedStream) Current() string {
	return s.inner.Current()
}

func (s *loggedStream) Err() error {
	return backendError(s.providerName, s.inner.Err())
}

func (s *loggedStream) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.inner.Close()
		attrs := []any{
			"provider", s.providerName,
			"modelName", s.modelName,
			"fragments", s.fragments,
			"outputChars", s.outputChars,
			"latencyMs", time.Since(s.start).Milliseconds(),
		}
		if err := s.inner.Err(); err != nil {
			logger.Error(s.providerName+" stream error", append(attrs, "err", err)...)
			return
		}
		logger.Info(s.providerName+" response", attrs...)
	})
	return s.closeErr
}
