package openai

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

const defaultBaseURL = "https://api.openai.com"

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
	return "openai"
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Model string `json:"model"`
}

func (a *Adapter) Generate(ctx context.Context, req aidomain.Request) (aidomain.Response, error) {
	messages := []chatMessage{}
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Message})

	body, err := json.Marshal(chatRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return aidomain.Response{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return aidomain.Response{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return aidomain.Response{}, fmt.Errorf("%w: %v", aidomain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return aidomain.Response{}, fmt.Errorf("%w: openai returned %d", aidomain.ErrProviderUnavailable, resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return aidomain.Response{}, fmt.Errorf("%w: %v", aidomain.ErrProviderUnavailable, err)
	}
	if len(parsed.Choices) == 0 {
		return aidomain.Response{}, fmt.Errorf("%w: empty completion", aidomain.ErrProviderUnavailable)
	}

	model := parsed.Model
	if model == "" {
		model = req.Model
	}
	return aidomain.Response{
		Text:     parsed.Choices[0].Message.Content,
		Model:    model,
		Provider: a.Provider(),
	}, nil
}
