package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tidwall/gjson"
)

func sseChunk(content string) string {
	return fmt.Sprintf(`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"gpt-4o-mini","choices":[{"index":0,"delta":{"content":%q},"finish_reason":null}]}`, content)
}

func TestOpenAIStream(t *testing.T) {
	var (
		mu   sync.Mutex
		body []byte
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q, want /v1/chat/completions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		raw, _ := io.ReadAll(r.Body)
		mu.Lock()
		body = raw
		mu.Unlock()
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		for _, c := range []string{"Ah, ", "", "fort bien!"} {
			fmt.Fprintf(w, "data: %s\n\n", sseChunk(c))
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	p := newOpenAIProvider("openai", "sk-test", server.URL+"/v1/chat/completions", openAIAPIBase, "gpt-4o-mini", "", 64, 0)
	s, err := p.Stream(context.Background(), NewChatRequest("persona", "Bonjour"))
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	defer s.Close()

	if diff := cmp.Diff([]string{"Ah, ", "fort bien!"}, drain(t, s)); diff != "" {
		t.Fatalf("fragments mismatch (-want +got):\n%s", diff)
	}
	if err := s.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if !gjson.GetBytes(body, "stream").Bool() {
		t.Fatalf("request did not ask for a stream: %s", body)
	}
	if got := gjson.GetBytes(body, "messages.0.role").String(); got != "system" {
		t.Fatalf("first message role = %q, want system", got)
	}
	if got := gjson.GetBytes(body, "messages.1.content").String(); got != "Bonjour" {
		t.Fatalf("user message = %q", got)
	}
	if got := gjson.GetBytes(body, "max_tokens").Int(); got != 64 {
		t.Fatalf("max_tokens = %d, want 64", got)
	}
	if gjson.GetBytes(body, "temperature").Exists() {
		t.Fatal("temperature should be omitted when unset")
	}
}

func TestOpenAIStatusError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"invalid api key","type":"invalid_request_error"}}`)
	}))
	defer server.Close()

	p := newOpenAIProvider("deepseek", "bad", server.URL, deepSeekAPIBase, "deepseek-chat", "", 0, 0)
	_, err := p.Stream(context.Background(), NewChatRequest("", "hi"))
	var be *BackendError
	if !errors.As(err, &be) || be.Provider != "deepseek" {
		t.Fatalf("Stream() error = %v, want deepseek BackendError", err)
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("backend called %d times, want exactly 1 (no retries)", n)
	}
}

func TestOpenAIPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path != "/models/gpt-4o-mini" {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"error":{"message":"model not found"}}`)
			return
		}
		fmt.Fprint(w, `{"id":"gpt-4o-mini","object":"model","created":1,"owned_by":"openai"}`)
	}))
	defer server.Close()

	p := newOpenAIProvider("openai", "sk-test", server.URL, openAIAPIBase, "gpt-4o-mini", "", 0, 0)
	if err := p.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	p = newOpenAIProvider("openai", "sk-test", server.URL, openAIAPIBase, "nope", "", 0, 0)
	var be *BackendError
	if err := p.Ping(context.Background()); !errors.As(err, &be) {
		t.Fatalf("Ping() error = %v, want *BackendError", err)
	}
}

func TestOpenAIBuildParamsRoles(t *testing.T) {
	t.Parallel()

	p := newOpenAIProvider("openai", "sk-test", "", openAIAPIBase, "gpt-4o-mini", "", 0, 0.3)
	params := p.buildParams(&Request{Messages: []Message{
		SystemMessage("persona"),
		UserMessage("Bonjour"),
		AssistantMessage("Le bon jour."),
	}})

	if len(params.Messages) != 3 {
		t.Fatalf("len(Messages) = %d, want 3", len(params.Messages))
	}
	if params.Messages[0].OfSystem == nil || params.Messages[1].OfUser == nil || params.Messages[2].OfAssistant == nil {
		t.Fatalf("roles not preserved: %+v", params.Messages)
	}
	if got := params.Temperature.Value; got != 0.3 {
		t.Fatalf("Temperature = %v, want 0.3", got)
	}
	if params.MaxTokens.Valid() {
		t.Fatal("MaxTokens should be omitted when unset")
	}
}
