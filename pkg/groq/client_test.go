package groq

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"sportshub-social/pkg/config"
	"sportshub-social/pkg/logger"
)

func testConfig(apiKey string) config.GroqAPIConfig {
	return config.GroqAPIConfig{
		Enabled: true,
		APIKey:  apiKey,
		Model:   "llama-3.1-8b-instant",
	}
}

// TestCompletePlaceholderKeySkipsNetwork 占位符key不发起任何网络调用
func TestCompletePlaceholderKeySkipsNetwork(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer server.Close()

	for _, apiKey := range []string{"", config.GroqAPIKeyPlaceholder} {
		client := NewClientWithURL(testConfig(apiKey), server.URL, logger.GetLogger())
		reply := client.Complete(context.Background(), "some prompt", 0)
		if reply != "APPROVED" {
			t.Errorf("apiKey %q: reply = %q, want APPROVED", apiKey, reply)
		}
	}

	if atomic.LoadInt32(&hits) != 0 {
		t.Errorf("server hit %d times, want 0", hits)
	}
}

// TestCompleteSuccess 正常调用返回模型回复
func TestCompleteSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "llama-3.1-8b-instant" {
			t.Errorf("model = %q", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		if req.MaxTokens != DefaultMaxTokens {
			t.Errorf("max_tokens = %d, want %d", req.MaxTokens, DefaultMaxTokens)
		}

		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "BLOCKED: Limbaj vulgar"}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClientWithURL(testConfig("test-key"), server.URL, logger.GetLogger())
	reply := client.Complete(context.Background(), "analyze this", 0)
	if reply != "BLOCKED: Limbaj vulgar" {
		t.Errorf("reply = %q, want model content", reply)
	}
}

// TestCompleteFailOpen 服务端错误时降级为APPROVED
func TestCompleteFailOpen(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClientWithURL(testConfig("test-key"), server.URL, logger.GetLogger())
	if reply := client.Complete(context.Background(), "analyze this", 0); reply != "APPROVED" {
		t.Errorf("reply = %q, want APPROVED on server error", reply)
	}
}

// TestCompleteEmptyChoices 响应无choices时降级为APPROVED
func TestCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := NewClientWithURL(testConfig("test-key"), server.URL, logger.GetLogger())
	if reply := client.Complete(context.Background(), "analyze this", 0); reply != "APPROVED" {
		t.Errorf("reply = %q, want APPROVED on empty choices", reply)
	}
}

// TestCompleteUnreachable 服务不可达时降级为APPROVED
func TestCompleteUnreachable(t *testing.T) {
	client := NewClientWithURL(testConfig("test-key"), "http://127.0.0.1:1", logger.GetLogger())
	if reply := client.Complete(context.Background(), "analyze this", 0); reply != "APPROVED" {
		t.Errorf("reply = %q, want APPROVED when unreachable", reply)
	}
}
