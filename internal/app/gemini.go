package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-1.5-flash"

	// Low-randomness sampling keeps classification output close to
	// deterministic across refreshes.
	geminiTemperature = 0.3
)

type GeminiClient struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
	HTTP      *http.Client
}

func NewGeminiClient(apiKey, model, baseURL string, maxTokens int) *GeminiClient {
	if model == "" {
		model = defaultGeminiModel
	}
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	if maxTokens <= 0 {
		maxTokens = 8192
	}
	return &GeminiClient{
		APIKey:    apiKey,
		Model:     model,
		BaseURL:   baseURL,
		MaxTokens: maxTokens,
		// The API carries no per-call deadline of its own; the transport
		// timeout is the backstop against a hung connection.
		HTTP: &http.Client{Timeout: 120 * time.Second},
	}
}

func (c *GeminiClient) Configured() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent         `json:"system_instruction,omitempty"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason,omitempty"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// GenerateJSON sends a single-turn request that must come back as a JSON
// document (enforced via responseMimeType). The raw text is returned; the
// caller owns schema validation.
func (c *GeminiClient) GenerateJSON(ctx context.Context, system, prompt string) (string, error) {
	return c.generate(ctx, system, []geminiContent{
		{Role: "user", Parts: []geminiPart{{Text: prompt}}},
	}, "application/json")
}

// GenerateChat sends a multi-turn conversation and returns the free-form
// text reply.
func (c *GeminiClient) GenerateChat(ctx context.Context, system string, contents []geminiContent) (string, error) {
	return c.generate(ctx, system, contents, "")
}

func (c *GeminiClient) generate(ctx context.Context, system string, contents []geminiContent, mimeType string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("gemini: %w", ErrMissingCredential)
	}

	reqBody := geminiRequest{
		Contents: contents,
		GenerationConfig: geminiGenerationConfig{
			Temperature:      geminiTemperature,
			MaxOutputTokens:  c.MaxTokens,
			ResponseMimeType: mimeType,
		},
	}
	if system != "" {
		reqBody.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: system}}}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.BaseURL, c.Model, url.QueryEscape(c.APIKey))
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	request.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(request)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("gemini response read failed: %w", err)
	}

	if resp.StatusCode >= 300 {
		var errResp geminiResponse
		if json.Unmarshal(bodyBytes, &errResp) == nil && errResp.Error != nil {
			return "", fmt.Errorf("gemini api error: status %d, %s", resp.StatusCode, errResp.Error.Message)
		}
		return "", fmt.Errorf("gemini api error: status %d, response: %s", resp.StatusCode, string(bodyBytes))
	}

	var decoded geminiResponse
	if err := json.Unmarshal(bodyBytes, &decoded); err != nil {
		return "", fmt.Errorf("gemini response decode failed: %w", err)
	}
	if decoded.Error != nil {
		return "", fmt.Errorf("gemini api error: %s", decoded.Error.Message)
	}
	if len(decoded.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates: %s", string(bodyBytes))
	}

	var text strings.Builder
	for _, part := range decoded.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	out := strings.TrimSpace(text.String())
	if out == "" {
		return "", fmt.Errorf("gemini returned an empty reply")
	}
	return out, nil
}
