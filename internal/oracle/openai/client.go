// Package openai implements oracle.Model on OpenAI Chat Completions. The model
// receives the PDF's text layer rather than the file itself.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sourabhsahu334/newsUserBackend/internal/extract"
	"github.com/sourabhsahu334/newsUserBackend/internal/oracle"
)

const (
	DefaultModel = "gpt-4o-mini"
	systemPrompt = "You are a resume extraction engine. Respond with JSON only. No markdown. Output must match the requested keys exactly."
)

var apiURL = "https://api.openai.com/v1/chat/completions"

// Client implements oracle.Model using OpenAI Chat Completions.
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
	textOf     func(ctx context.Context, data []byte) (string, error)
}

// NewClient constructs a new OpenAI client.
func NewClient(apiKey, model string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		textOf:     extract.TextFromPDF,
	}, nil
}

// Name returns the configured model id.
func (c *Client) Name() string {
	return c.model
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    *float32       `json:"temperature,omitempty"`
	ResponseFormat responseFormat `json:"response_format"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// errTemperatureUnsupported is returned when the model rejects temperature 0.
var errTemperatureUnsupported = errors.New("openai: temperature not supported by model")

func (c *Client) Generate(ctx context.Context, prompt oracle.Prompt) (oracle.Response, error) {
	text, err := c.textOf(ctx, prompt.Document)
	if err != nil {
		return oracle.Response{}, fmt.Errorf("openai: read %s: %w", prompt.Filename, err)
	}
	messages := []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt.Instructions + "\n\nResume Text:\n" + text},
	}

	withTemp := !isGPT5(c.model)
	resp, err := c.complete(ctx, messages, withTemp)
	if withTemp && errors.Is(err, errTemperatureUnsupported) {
		resp, err = c.complete(ctx, messages, false)
	}
	return resp, err
}

func (c *Client) complete(ctx context.Context, messages []chatMessage, withTemp bool) (oracle.Response, error) {
	reqBody := chatRequest{
		Model:          c.model,
		Messages:       messages,
		ResponseFormat: responseFormat{Type: "json_object"},
	}
	if withTemp {
		temp := float32(0)
		reqBody.Temperature = &temp
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return oracle.Response{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return oracle.Response{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return oracle.Response{}, ctxErr
		}
		if strings.Contains(err.Error(), "Client.Timeout") {
			return oracle.Response{}, fmt.Errorf("openai request timeout: %w", context.DeadlineExceeded)
		}
		return oracle.Response{}, oracle.Transient(fmt.Errorf("openai request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return oracle.Response{}, oracle.Transient(err)
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return oracle.Response{}, oracle.Transient(fmt.Errorf("openai status %d", resp.StatusCode))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return oracle.Response{}, fmt.Errorf("openai response parse: %w", err)
	}
	if parsed.Error != nil {
		if isTemperatureUnsupported(parsed.Error.Message) {
			return oracle.Response{}, fmt.Errorf("%w: %s", errTemperatureUnsupported, parsed.Error.Message)
		}
		return oracle.Response{}, fmt.Errorf("openai error: %s (%s)", parsed.Error.Message, parsed.Error.Type)
	}
	if len(parsed.Choices) == 0 {
		return oracle.Response{}, fmt.Errorf("openai response missing choices")
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	out := oracle.Response{Raw: []byte(content)}
	if u := parsed.Usage; u != nil {
		out.Usage = oracle.Usage{
			PromptTokens: u.PromptTokens,
			OutputTokens: u.CompletionTokens,
			TotalTokens:  u.TotalTokens,
		}
	}
	return out, nil
}

func isGPT5(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "gpt-5")
}

func isTemperatureUnsupported(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "temperature") && strings.Contains(msg, "unsupported")
}

var _ oracle.Model = (*Client)(nil)
