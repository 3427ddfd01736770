package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sourabhsahu334/newsUserBackend/internal/oracle"
)

func TestIsGPT5(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  bool
	}{
		{name: "gpt5", model: "gpt-5", want: true},
		{name: "gpt5 variant", model: "gpt-5-mini", want: true},
		{name: "gpt5 uppercase", model: " GPT-5o ", want: true},
		{name: "gpt4", model: "gpt-4o", want: false},
		{name: "empty", model: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isGPT5(tt.model); got != tt.want {
				t.Fatalf("isGPT5(%q) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}

func newTestClient(t *testing.T, model string, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	oldURL := apiURL
	apiURL = server.URL
	t.Cleanup(func() { apiURL = oldURL })

	client, err := NewClient("test-key", model, 5*time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	client.textOf = func(ctx context.Context, data []byte) (string, error) {
		return "Jane Doe\njane@example.com", nil
	}
	return client
}

func TestGenerateSendsExtractedText(t *testing.T) {
	var mu sync.Mutex
	var body map[string]any
	client := newTestClient(t, "gpt-4o-mini", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer token")
		}
		mu.Lock()
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":" {\"name\":\"Jane Doe\"} "}}],"usage":{"prompt_tokens":40,"completion_tokens":8,"total_tokens":48}}`))
	})

	resp, err := client.Generate(context.Background(), oracle.Prompt{Instructions: "extract", Document: []byte("%PDF")})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(resp.Raw) != `{"name":"Jane Doe"}` || resp.Usage.TotalTokens != 48 {
		t.Fatalf("unexpected response %+v", resp)
	}
	mu.Lock()
	defer mu.Unlock()
	if _, ok := body["temperature"]; !ok {
		t.Fatalf("expected temperature for non gpt-5 model")
	}
	msgs, _ := body["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	user, _ := msgs[1].(map[string]any)
	if content, _ := user["content"].(string); !strings.Contains(content, "jane@example.com") {
		t.Fatalf("user message missing resume text: %v", user)
	}
}

func TestGenerateOmitsTemperatureForGPT5(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, "gpt-5-mini", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{}"}}]}`))
	})
	if _, err := client.Generate(context.Background(), oracle.Prompt{Document: []byte("%PDF")}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, ok := body["temperature"]; ok {
		t.Fatalf("expected temperature to be omitted")
	}
}

func TestGenerateRetriesWithoutTemperatureOnce(t *testing.T) {
	var mu sync.Mutex
	var calls int
	var temps []bool
	client := newTestClient(t, "gpt-4o-mini", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		_ = json.NewDecoder(r.Body).Decode(&payload)
		mu.Lock()
		calls++
		_, hasTemp := payload["temperature"]
		temps = append(temps, hasTemp)
		mu.Unlock()
		_, _ = w.Write([]byte(`{"error":{"message":"Unsupported value: 'temperature' does not support 0 with this model.","type":"invalid_request_error"}}`))
	})
	_, err := client.Generate(context.Background(), oracle.Prompt{Document: []byte("%PDF")})
	if err == nil {
		t.Fatalf("expected error on repeated unsupported temperature")
	}
	if calls != 2 || !temps[0] || temps[1] {
		t.Fatalf("expected one retry without temperature, got calls=%d temps=%v", calls, temps)
	}
}

func TestGenerateMarksServerErrorsTransient(t *testing.T) {
	client := newTestClient(t, "gpt-4o-mini", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := client.Generate(context.Background(), oracle.Prompt{Document: []byte("%PDF")})
	var te *oracle.TransientError
	if !errors.As(err, &te) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestGenerateTextExtractionFailure(t *testing.T) {
	client := newTestClient(t, "gpt-4o-mini", func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected")
	})
	client.textOf = func(ctx context.Context, data []byte) (string, error) {
		return "", errors.New("no extractable text in document")
	}
	_, err := client.Generate(context.Background(), oracle.Prompt{Filename: "scan.pdf"})
	var te *oracle.TransientError
	if err == nil || errors.As(err, &te) {
		t.Fatalf("expected permanent error, got %v", err)
	}
}
