// Package gemini implements oracle.Model on Vertex AI Gemini. The PDF is sent
// inline so the model reads layout as well as text.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/sourabhsahu334/newsUserBackend/internal/oracle"
)

const DefaultModel = "gemini-2.0-flash"

type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Client wraps a configured Gemini model.
type Client struct {
	client *genai.Client
	model  generator
	name   string
}

// NewClient creates a Vertex AI client for project/location.
func NewClient(ctx context.Context, projectID, location, model string) (*Client, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, fmt.Errorf("GOOGLE_CLOUD_PROJECT is required for gemini")
	}
	if strings.TrimSpace(location) == "" {
		location = "us-central1"
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}
	gm := client.GenerativeModel(model)
	gm.SetTemperature(0)
	gm.ResponseMIMEType = "application/json"
	return &Client{client: client, model: gm, name: model}, nil
}

// Name returns the configured model id.
func (c *Client) Name() string {
	return c.name
}

func (c *Client) Generate(ctx context.Context, prompt oracle.Prompt) (oracle.Response, error) {
	mime := prompt.MIMEType
	if mime == "" {
		mime = "application/pdf"
	}
	resp, err := c.model.GenerateContent(ctx,
		genai.Text(prompt.Instructions),
		genai.Blob{MIMEType: mime, Data: prompt.Document},
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return oracle.Response{}, ctxErr
		}
		return oracle.Response{}, wrapError(err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return oracle.Response{}, errors.New("gemini: no response candidates returned")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	out := oracle.Response{Raw: []byte(text.String())}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = oracle.Usage{
			PromptTokens: int(u.PromptTokenCount),
			OutputTokens: int(u.CandidatesTokenCount),
			TotalTokens:  int(u.TotalTokenCount),
		}
	}
	return out, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func wrapError(err error) error {
	switch status.Code(err) {
	case codes.Unavailable, codes.ResourceExhausted, codes.Internal, codes.Aborted, codes.DeadlineExceeded:
		return oracle.Transient(fmt.Errorf("gemini: %w", err))
	default:
		return fmt.Errorf("gemini: %w", err)
	}
}

var _ oracle.Model = (*Client)(nil)
