// Package textgen talks to the administrative drafting collaborator. The
// collaborator is opaque: prompt in, generated text out. When it is absent or
// failing, callers get a fixed apology string in the active language and no
// retry is attempted.
package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dgpe-mr/patrimoine_control/internal/pkg/config"
)

const (
	LangFR = "fr"
	LangAR = "ar"
)

const (
	fallbackFR = "Service indisponible."
	fallbackAR = "الخدمة غير متاحة."
)

// Fallback is the degraded answer for the given language.
func Fallback(language string) string {
	if language == LangAR {
		return fallbackAR
	}

	return fallbackFR
}

type Client struct {
	url    string
	apiKey string
	httpc  *http.Client
}

func New(cfg config.TextGen) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = time.Second * 30 //nolint:gomnd
	}

	return &Client{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		httpc:  &http.Client{Timeout: timeout}, //nolint:exhaustruct
	}
}

type generateRequest struct {
	Prompt   string `json:"prompt"`
	Language string `json:"language"`
	Context  string `json:"context,omitempty"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// Generate returns the drafted text, or the language-appropriate fallback
// string on any failure. The error is informational only; the returned text
// is always usable.
func (c *Client) Generate(ctx context.Context, prompt, language, contextText string) (string, error) {
	if c.url == "" {
		return Fallback(language), fmt.Errorf("text generation endpoint not configured")
	}

	body, err := json.Marshal(generateRequest{
		Prompt:   prompt,
		Language: language,
		Context:  contextText,
	})
	if err != nil {
		return Fallback(language), fmt.Errorf("marshal request error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Fallback(language), fmt.Errorf("build request error: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return Fallback(language), fmt.Errorf("post error: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Fallback(language), fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var gr generateResponse

	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return Fallback(language), fmt.Errorf("decode response error: %w", err)
	}

	if gr.Text == "" {
		return Fallback(language), fmt.Errorf("empty generation result")
	}

	return gr.Text, nil
}
