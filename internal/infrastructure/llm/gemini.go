package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"SentimentReporter/internal/config"
	"SentimentReporter/internal/ports"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient implements ports.ChatModel against the Gemini generateContent
// API. Structured responses use generationConfig.responseSchema with an
// application/json MIME type.
type GeminiClient struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

var _ ports.ChatModel = (*GeminiClient)(nil)

// NewGeminiClient builds a client from configuration.
func NewGeminiClient(cfg config.ModelConfig, limiter *rate.Limiter) *GeminiClient {
	baseURL := cfg.Endpoint
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	return &GeminiClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		limiter: limiter,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

// Complete performs a free-text completion.
func (c *GeminiClient) Complete(ctx context.Context, system, user string) (string, error) {
	return c.generate(ctx, system, user, nil)
}

// CompleteStructured constrains the completion to schema and decodes the
// response into out.
func (c *GeminiClient) CompleteStructured(ctx context.Context, system, user string, schema map[string]any, out any) error {
	content, err := c.generate(ctx, system, user, schema)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("decode structured response: %w", err)
	}
	return nil
}

func (c *GeminiClient) generate(ctx context.Context, system, user string, schema map[string]any) (string, error) {
	if c.apiKey == "" || c.model == "" {
		return "", fmt.Errorf("gemini client misconfigured")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait: %w", err)
		}
	}

	payload := map[string]any{
		"systemInstruction": map[string]any{
			"parts": []map[string]string{{"text": system}},
		},
		"contents": []map[string]any{
			{
				"role":  "user",
				"parts": []map[string]string{{"text": user}},
			},
		},
	}
	if schema != nil {
		payload["generationConfig"] = map[string]any{
			"responseMimeType": "application/json",
			"responseSchema":   toGeminiSchema(schema),
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal gemini payload: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("gemini error %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}

	var decoded struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	return decoded.Candidates[0].Content.Parts[0].Text, nil
}

// toGeminiSchema rewrites a JSON-schema map into the OpenAPI-style subset the
// Gemini API accepts: uppercase type names, no additionalProperties.
func toGeminiSchema(schema map[string]any) map[string]any {
	out := make(map[string]any, len(schema))
	for key, value := range schema {
		switch key {
		case "additionalProperties":
			continue
		case "type":
			if s, ok := value.(string); ok {
				out[key] = strings.ToUpper(s)
				continue
			}
			out[key] = value
		case "properties":
			if props, ok := value.(map[string]any); ok {
				converted := make(map[string]any, len(props))
				for name, prop := range props {
					if sub, ok := prop.(map[string]any); ok {
						converted[name] = toGeminiSchema(sub)
					} else {
						converted[name] = prop
					}
				}
				out[key] = converted
				continue
			}
			out[key] = value
		case "items":
			if sub, ok := value.(map[string]any); ok {
				out[key] = toGeminiSchema(sub)
				continue
			}
			out[key] = value
		default:
			out[key] = value
		}
	}
	return out
}
