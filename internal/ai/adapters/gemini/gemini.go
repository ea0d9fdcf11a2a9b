package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	aidomain "github.com/lexorahq/lexora/internal/ai/domain"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"

	// geminiModel is what a bare "gemini" request maps to.
	geminiModel = "gemini-pro"
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
	return "gemini"
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (a *Adapter) Generate(ctx context.Context, req aidomain.Request) (aidomain.Response, error) {
	model := req.Model
	if strings.EqualFold(model, "gemini") {
		model = geminiModel
	}

	// The generateContent API has no system role; the persona rides in
	// front of the question.
	text := req.Message
	if req.SystemPrompt != "" {
		text = req.SystemPrompt + "\n\n" + req.Message
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: text}}}},
	})
	if err != nil {
		return aidomain.Response{}, err
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		a.baseURL, url.PathEscape(model), url.QueryEscape(a.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return aidomain.Response{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return aidomain.Response{}, fmt.Errorf("%w: %v", aidomain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return aidomain.Response{}, fmt.Errorf("%w: gemini returned %d", aidomain.ErrProviderUnavailable, resp.StatusCode)
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return aidomain.Response{}, fmt.Errorf("%w: %v", aidomain.ErrProviderUnavailable, err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return aidomain.Response{}, fmt.Errorf("%w: empty completion", aidomain.ErrProviderUnavailable)
	}

	return aidomain.Response{
		Text:     parsed.Candidates[0].Content.Parts[0].Text,
		Model:    model,
		Provider: a.Provider(),
	}, nil
}
