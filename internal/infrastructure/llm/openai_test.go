package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"SentimentReporter/internal/config"
	"SentimentReporter/internal/domain"
)

func openAITestClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewOpenAIClient(config.ModelConfig{
		Provider: config.ProviderOpenAI,
		Model:    "gpt-test",
		Endpoint: server.URL,
		APIKey:   "test-key",
	}, nil)
}

func openAIReply(content string) string {
	reply := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	}
	raw, _ := json.Marshal(reply)
	return string(raw)
}

func TestOpenAIComplete(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	client := openAITestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("missing bearer auth, got %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprint(w, openAIReply("the answer"))
	})

	got, err := client.Complete(context.Background(), "system text", "user text")
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if got != "the answer" {
		t.Fatalf("unexpected content: %q", got)
	}

	if captured["model"] != "gpt-test" {
		t.Fatalf("model not forwarded: %v", captured["model"])
	}
	if _, ok := captured["response_format"]; ok {
		t.Fatal("free-text completion must not send response_format")
	}
}

func TestOpenAICompleteStructured(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	client := openAITestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprint(w, openAIReply(`{"passed": false, "criticisms": ["too vague"]}`))
	})

	var verdict domain.Verdict
	err := client.CompleteStructured(context.Background(), "sys", "user", verdictSchema("desc"), &verdict)
	if err != nil {
		t.Fatalf("CompleteStructured error: %v", err)
	}
	if verdict.Passed || len(verdict.Criticisms) != 1 {
		t.Fatalf("structured response not decoded: %+v", verdict)
	}

	format, ok := captured["response_format"].(map[string]any)
	if !ok {
		t.Fatal("response_format missing from structured request")
	}
	if format["type"] != "json_schema" {
		t.Fatalf("unexpected response_format type: %v", format["type"])
	}
	jsonSchema, ok := format["json_schema"].(map[string]any)
	if !ok || jsonSchema["strict"] != true {
		t.Fatalf("json_schema must be strict: %v", format["json_schema"])
	}
}

func TestOpenAISurfacesAPIError(t *testing.T) {
	t.Parallel()

	client := openAITestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "quota exceeded"}`, http.StatusTooManyRequests)
	})

	_, err := client.Complete(context.Background(), "sys", "user")
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("error body not surfaced: %v", err)
	}
}

func TestOpenAIRejectsEmptyChoices(t *testing.T) {
	t.Parallel()

	client := openAITestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices": []}`)
	})

	if _, err := client.Complete(context.Background(), "sys", "user"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestOpenAIRejectsMissingCredentials(t *testing.T) {
	t.Parallel()

	client := NewOpenAIClient(config.ModelConfig{Model: "gpt-test"}, nil)
	if _, err := client.Complete(context.Background(), "sys", "user"); err == nil {
		t.Fatal("expected misconfiguration error without an API key")
	}
}
