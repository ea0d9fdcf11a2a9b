package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	aidomain "github.com/lexorahq/lexora/internal/ai/domain"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"

	// claudeModel is what a bare "claude-3" request maps to.
	claudeModel = "claude-3-opus-20240229"

	maxTokens = 1000
)

type Config struct {
	APIKey  string
	BaseURL string
}

type Adapter struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func New(cfg Config) (*Adapter, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, aidomain.ErrInvalidConfig
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Adapter{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (a *Adapter) Provider() string {
	return "anthropic"
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Model string `json:"model"`
}

func (a *Adapter) Generate(ctx context.Context, req aidomain.Request) (aidomain.Response, error) {
	model := req.Model
	if strings.EqualFold(model, "claude-3") {
		model = claudeModel
	}
	tokens := req.MaxTokens
	if tokens <= 0 {
		tokens = maxTokens
	}

	body, err := json.Marshal(messagesRequest{
		Model:     model,
		MaxTokens: tokens,
		System:    req.SystemPrompt,
		Messages:  []message{{Role: "user", Content: req.Message}},
	})
	if err != nil {
		return aidomain.Response{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return aidomain.Response{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return aidomain.Response{}, fmt.Errorf("%w: %v", aidomain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return aidomain.Response{}, fmt.Errorf("%w: anthropic returned %d", aidomain.ErrProviderUnavailable, resp.StatusCode)
	}

	var parsed messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return aidomain.Response{}, fmt.Errorf("%w: %v", aidomain.ErrProviderUnavailable, err)
	}
	if len(parsed.Content) == 0 {
		return aidomain.Response{}, fmt.Errorf("%w: empty completion", aidomain.ErrProviderUnavailable)
	}

	respModel := parsed.Model
	if respModel == "" {
		respModel = model
	}
	return aidomain.Response{
		Text:     parsed.Content[0].Text,
		Model:    respModel,
		Provider: a.Provider(),
	}, nil
}
