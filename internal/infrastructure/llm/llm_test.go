package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"

	"PapersDigest/internal/config"
	"PapersDigest/internal/domain"
)

func TestConstructorsRequireCredential(t *testing.T) {
	t.Parallel()

	if _, err := NewAnthropicCompleter(config.AIConfig{Model: "m"}); !errors.Is(err, domain.ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential, got %v", err)
	}
	if _, err := NewChatGPTCompleter(config.AIConfig{Endpoint: "http://x", Model: "m", APIKey: "  "}); !errors.Is(err, domain.ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential, got %v", err)
	}
}

func TestAnthropicComplete(t *testing.T) {
	t.Parallel()

	var got struct {
		Model     string  `json:"model"`
		MaxTokens int     `json:"max_tokens"`
		Temp      float64 `json:"temperature"`
		Messages  []struct {
			Role string `json:"role"`
		} `json:"messages"`
	}
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-test",
			"content":[{"type":"text","text":"{\"summary\":\"ok\"}"}],
			"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":1}}`))
	}))
	defer server.Close()

	completer, err := NewAnthropicCompleter(
		config.AIConfig{APIKey: "sk-test", Model: "claude-test", Temperature: 0.7, Timeout: 5 * time.Second},
		option.WithBaseURL(server.URL),
		option.WithMaxRetries(0),
	)
	if err != nil {
		t.Fatalf("NewAnthropicCompleter error: %v", err)
	}

	reply, err := completer.Complete(context.Background(), "prompt", 2048)
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if reply != `{"summary":"ok"}` {
		t.Fatalf("unexpected reply: %s", reply)
	}
	if gotKey != "sk-test" || got.Model != "claude-test" || got.MaxTokens != 2048 || got.Temp != 0.7 {
		t.Fatalf("unexpected request: key=%s %+v", gotKey, got)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" {
		t.Fatalf("unexpected messages: %+v", got.Messages)
	}
}

func TestAnthropicCompleteServiceError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"boom"}}`))
	}))
	defer server.Close()

	completer, err := NewAnthropicCompleter(
		config.AIConfig{APIKey: "sk-test", Model: "claude-test", Timeout: 5 * time.Second},
		option.WithBaseURL(server.URL),
		option.WithMaxRetries(0),
	)
	if err != nil {
		t.Fatalf("NewAnthropicCompleter error: %v", err)
	}

	_, err = completer.Complete(context.Background(), "prompt", 16)
	if !errors.Is(err, domain.ErrModelCall) || !errors.Is(err, domain.ErrAnalysis) {
		t.Fatalf("expected ErrModelCall, got %v", err)
	}
}

func TestChatGPTComplete(t *testing.T) {
	t.Parallel()

	var got chatRequest
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"[{\"summary\":\"s\"}]"}}]}`))
	}))
	defer server.Close()

	completer, err := NewChatGPTCompleter(config.AIConfig{
		Endpoint: server.URL, Model: "gpt-test", APIKey: "key", Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewChatGPTCompleter error: %v", err)
	}

	reply, err := completer.Complete(context.Background(), "hello", 512)
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if reply != `[{"summary":"s"}]` {
		t.Fatalf("unexpected reply: %s", reply)
	}
	if auth != "Bearer key" || got.Model != "gpt-test" || got.MaxTokens != 512 {
		t.Fatalf("unexpected request: auth=%s %+v", auth, got)
	}
	if len(got.Messages) != 1 || got.Messages[0].Content != "hello" {
		t.Fatalf("unexpected messages: %+v", got.Messages)
	}
}

func TestChatGPTCompleteStatusError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	completer, err := NewChatGPTCompleter(config.AIConfig{
		Endpoint: server.URL, Model: "gpt-test", APIKey: "key", Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewChatGPTCompleter error: %v", err)
	}

	_, err = completer.Complete(context.Background(), "hello", 16)
	if !errors.Is(err, domain.ErrModelCall) {
		t.Fatalf("expected ErrModelCall, got %v", err)
	}
	if !strings.Contains(err.Error(), "429") {
		t.Fatalf("error must carry status: %v", err)
	}
}
