package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/genai"

	"saylo/internal/llm"
)

func newStubClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	genaiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:     "test",
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: server.Client(),
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    server.URL,
			APIVersion: "v1beta",
		},
	})
	if err != nil {
		t.Fatalf("failed to create genai client: %v", err)
	}

	return &Client{
		client: genaiClient,
		config: &Config{APIKey: "test", Model: "test-model", TranscriberModel: "stt-model"},
	}
}

func textResponse(w http.ResponseWriter, text string) {
	resp := map[string]any{
		"candidates": []map[string]any{
			{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": text}},
				},
			},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func TestClientGenerateContentSuccess(t *testing.T) {
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/test-model:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		textResponse(w, "Tell me about yourself")
	})

	resp, err := client.GenerateContent(context.Background(), "prompt", "req-1")
	if err != nil {
		t.Fatalf("GenerateContent returned error: %v", err)
	}
	if resp.Content != "Tell me about yourself" {
		t.Fatalf("expected response text, got %s", resp.Content)
	}
	if resp.Metadata.Model != "test-model" || resp.Metadata.RequestID != "req-1" {
		t.Fatalf("unexpected metadata %+v", resp.Metadata)
	}
}

func TestClientGenerateContentRateLimit(t *testing.T) {
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`, http.StatusTooManyRequests)
	})

	_, err := client.GenerateContent(context.Background(), "prompt", "req")
	if err == nil {
		t.Fatal("expected error")
	}
	if !llm.IsRateLimited(err) {
		t.Fatalf("expected provider rate limit error, got %v", err)
	}
}

func TestClientGenerateContentEmptyResponse(t *testing.T) {
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		textResponse(w, "   ")
	})

	_, err := client.GenerateContent(context.Background(), "prompt", "req")
	var pe *llm.ProviderError
	if !errors.As(err, &pe) || pe.Code != llm.ErrCodeInvalidInput {
		t.Fatalf("expected invalid input error for empty response, got %v", err)
	}
}

func TestClientTranscribe(t *testing.T) {
	client := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "stt-model") {
			t.Errorf("expected transcriber model in path, got %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "audio/webm") {
			t.Errorf("expected inline audio part in request, got %s", body)
		}
		textResponse(w, "I have 5 years of experience")
	})

	text, err := client.Transcribe(context.Background(), []byte{1, 2, 3}, "audio/webm")
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if text != "I have 5 years of experience" {
		t.Fatalf("unexpected transcript %q", text)
	}

	if _, err := client.Transcribe(context.Background(), nil, "audio/webm"); err == nil {
		t.Fatal("expected error for empty audio")
	}
}

func TestGetProviderNameAndRateLimitHelper(t *testing.T) {
	client := &Client{}
	if client.GetProviderName() != "gemini" {
		t.Fatalf("expected provider name gemini")
	}

	cases := map[string]bool{
		"429 rate limit exceeded": true,
		"RESOURCE_EXHAUSTED":      true,
		"quota exceeded":          true,
		"other error":             false,
	}
	for input, expect := range cases {
		if got := isRateLimitError(errors.New(input)); got != expect {
			t.Fatalf("isRateLimitError(%s) = %v, expected %v", input, got, expect)
		}
	}
	if isRateLimitError(nil) {
		t.Fatalf("expected nil error to return false")
	}
}
