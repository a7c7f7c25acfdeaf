package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"SentimentReporter/internal/config"
	"SentimentReporter/internal/domain"
)

func geminiTestClient(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewGeminiClient(config.ModelConfig{
		Provider: config.ProviderGemini,
		Model:    "gemini-test",
		Endpoint: server.URL,
		APIKey:   "test-key",
	}, nil)
}

func geminiReply(text string) string {
	reply := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{
				"parts": []map[string]string{{"text": text}},
			}},
		},
	}
	raw, _ := json.Marshal(reply)
	return string(raw)
}

func TestGeminiComplete(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	client := geminiTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-test:generateContent" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("API key not in query: %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprint(w, geminiReply("gemini answer"))
	})

	got, err := client.Complete(context.Background(), "system text", "user text")
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if got != "gemini answer" {
		t.Fatalf("unexpected content: %q", got)
	}
	if _, ok := captured["systemInstruction"]; !ok {
		t.Fatal("systemInstruction missing from payload")
	}
	if _, ok := captured["generationConfig"]; ok {
		t.Fatal("free-text completion must not send generationConfig")
	}
}

func TestGeminiCompleteStructured(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	client := geminiTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprint(w, geminiReply(`{"passed": true, "criticisms": []}`))
	})

	var verdict domain.Verdict
	err := client.CompleteStructured(context.Background(), "sys", "user", verdictSchema("desc"), &verdict)
	if err != nil {
		t.Fatalf("CompleteStructured error: %v", err)
	}
	if !verdict.Passed {
		t.Fatalf("structured response not decoded: %+v", verdict)
	}

	genConfig, ok := captured["generationConfig"].(map[string]any)
	if !ok {
		t.Fatal("generationConfig missing from structured request")
	}
	if genConfig["responseMimeType"] != "application/json" {
		t.Fatalf("unexpected responseMimeType: %v", genConfig["responseMimeType"])
	}
	schema, ok := genConfig["responseSchema"].(map[string]any)
	if !ok {
		t.Fatal("responseSchema missing")
	}
	if schema["type"] != "OBJECT" {
		t.Fatalf("schema type not uppercased: %v", schema["type"])
	}
	if _, ok := schema["additionalProperties"]; ok {
		t.Fatal("additionalProperties must be stripped for Gemini")
	}
}

func TestGeminiRejectsEmptyCandidates(t *testing.T) {
	t.Parallel()

	client := geminiTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates": []}`)
	})

	if _, err := client.Complete(context.Background(), "sys", "user"); err == nil {
		t.Fatal("expected error for empty candidates")
	}
}

func TestToGeminiSchema(t *testing.T) {
	t.Parallel()

	in := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"steps": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"properties": map[string]any{
						"description": map[string]any{"type": "string"},
					},
				},
			},
		},
	}

	want := map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"steps": map[string]any{
				"type": "ARRAY",
				"items": map[string]any{
					"type": "OBJECT",
					"properties": map[string]any{
						"description": map[string]any{"type": "STRING"},
					},
				},
			},
		},
	}

	if got := toGeminiSchema(in); !reflect.DeepEqual(got, want) {
		t.Fatalf("schema conversion mismatch:\ngot  %#v\nwant %#v", got, want)
	}
}
