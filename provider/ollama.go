package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/linanwx/minichat/logger"
)

const (
	ollamaAPIBase      = "http://localhost:11434"
	ollamaMaxErrorBody = 4096
	ollamaMaxTagsBody  = 1 << 20
)

func init() {
	RegisterProvider("ollama", ProviderRegistration{
		Models:      []string{"codellama:latest", "llama3.2", "mistral"},
		EnvKey:      "OLLAMA_API_KEY",
		EnvBase:     "OLLAMA_HOST",
		KeyOptional: true,
		Constructor: func(apiKey, apiBase, modelType, modelName string, maxTokens int, temperature float64) Provider {
			return newOllamaProvider(apiKey, apiBase, modelType, modelName, maxTokens, temperature)
		},
	})
}

// OllamaProvider streams replies from an Ollama server's /api/chat endpoint.
// The reply arrives as newline-delimited JSON objects.
type OllamaProvider struct {
	apiKey      string
	baseURL     string
	modelName   string
	modelType   string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

func newOllamaProvider(apiKey, apiBase, modelType, modelName string, maxTokens int, temperature float64) *OllamaProvider {
	if modelName == "" {
		modelName = modelType
	}
	baseURL := strings.TrimSpace(apiBase)
	if baseURL == "" {
		baseURL = ollamaAPIBase
	}
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	baseURL = strings.TrimSuffix(strings.TrimRight(baseURL, "/"), "/api/chat")

	return &OllamaProvider{
		apiKey:      apiKey,
		baseURL:     baseURL,
		modelName:   modelName,
		modelType:   modelType,
		maxTokens:   maxTokens,
		temperature: temperature,
		// No overall timeout: a reply streams for as long as the model talks.
		// Cancellation comes from the context.
		httpClient: &http.Client{},
	}
}

// Stream sends the conversation to Ollama and returns the reply stream.
func (p *OllamaProvider) Stream(ctx context.Context, req *Request) (Stream, error) {
	start := time.Now()
	logRequest("ollama", p.modelName, req)

	body, err := p.buildRequestBody(req)
	if err != nil {
		return nil, backendError("ollama", fmt.Errorf("failed to build request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, backendError("ollama", fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/x-ndjson")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		logger.Error("ollama request error", "provider", "ollama", "err", err)
		return nil, backendError("ollama", fmt.Errorf("request failed: %w", err))
	}

	if httpResp.StatusCode != http.StatusOK {
		defer httpResp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(httpResp.Body, ollamaMaxErrorBody))
		msg := gjson.GetBytes(raw, "error").String()
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		logger.Error("ollama request error", "provider", "ollama", "status", httpResp.StatusCode, "body", msg)
		return nil, backendError("ollama", fmt.Errorf("request failed: %d %s", httpResp.StatusCode, msg))
	}

	return newLoggedStream("ollama", p.modelName, start, newOllamaStream(httpResp.Body)), nil
}

// Ping lists the server's local models and checks that the configured one
// has been pulled.
func (p *OllamaProvider) Ping(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		return backendError("ollama", fmt.Errorf("failed to create request: %w", err))
	}
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return backendError("ollama", fmt.Errorf("request failed: %w", err))
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, ollamaMaxTagsBody))
	if err != nil {
		return backendError("ollama", fmt.Errorf("failed to read response: %w", err))
	}
	if httpResp.StatusCode != http.StatusOK {
		return backendError("ollama", fmt.Errorf("request failed: %d %s", httpResp.StatusCode, strings.TrimSpace(string(raw))))
	}

	for _, name := range gjson.GetBytes(raw, "models.#.name").Array() {
		if sameOllamaModel(name.String(), p.modelName) {
			return nil
		}
	}
	return backendError("ollama", fmt.Errorf("model %s not found, run 'ollama pull %s'", p.modelName, p.modelName))
}

// sameOllamaModel compares model names, treating a missing tag as ":latest".
func sameOllamaModel(a, b string) bool {
	withTag := func(s string) string {
		if !strings.Contains(s, ":") {
			return s + ":latest"
		}
		return s
	}
	return withTag(a) == withTag(b)
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// buildRequestBody encodes the /api/chat payload. Sampling options are only
// set when configured so the model's own defaults apply otherwise.
func (p *OllamaProvider) buildRequestBody(req *Request) ([]byte, error) {
	msgs := make([]ollamaMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, ollamaMessage{Role: m.Role, Content: m.Content})
	}

	body, err := json.Marshal(struct {
		Model    string          `json:"model"`
		Messages []ollamaMessage `json:"messages"`
		Stream   bool            `json:"stream"`
	}{
		Model:    p.modelName,
		Messages: msgs,
		Stream:   true,
	})
	if err != nil {
		return nil, err
	}

	if p.temperature != 0 {
		if body, err = sjson.SetBytes(body, "options.temperature", p.temperature); err != nil {
			return nil, err
		}
	}
	if p.maxTokens > 0 {
		if body, err = sjson.SetBytes(body, "options.num_predict", p.maxTokens); err != nil {
			return nil, err
		}
	}
	return body, nil
}

// ollamaStream reads one JSON object per line until "done": true.
type ollamaStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	cur     string
	err     error
	done    bool
}

func newOllamaStream(body io.ReadCloser) *ollamaStream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &ollamaStream{body: body, scanner: scanner}
}

func (s *ollamaStream) Next() bool {
	if s.done || s.err != nil {
		return false
	}

	for s.scanner.Scan() {
		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if !gjson.ValidBytes(line) {
			s.err = fmt.Errorf("malformed stream line: %.80q", line)
			return false
		}
		if msg := gjson.GetBytes(line, "error"); msg.Exists() {
			s.err = fmt.Errorf("API error: %s", msg.String())
			return false
		}

		content := gjson.GetBytes(line, "message.content").String()
		if gjson.GetBytes(line, "done").Bool() {
			s.done = true
		}
		if content == "" {
			if s.done {
				return false
			}
			continue
		}
		s.cur = content
		return true
	}

	if err := s.scanner.Err(); err != nil {
		s.err = fmt.Errorf("reading stream: %w", err)
		return false
	}
	s.err = errors.New("stream ended before the reply was complete")
	return false
}

func (s *ollamaStream) Current() string {
	return s.cur
}

func (s *ollamaStream) Err() error {
	return s.err
}

func (s *ollamaStream) Close() error {
	return s.body.Close()
}
