package credits

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newCreditsRouter(svc *Service, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc, "hook-secret")
	h.Now = func() time.Time { return t0 }
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set("userId", userID)
		}
		c.Next()
	})
	api := r.Group("/api/v1")
	h.RegisterRoutes(api)
	h.RegisterDevRoutes(api.Group("/dev"))
	return r
}

func TestGetBalanceReportsTotalAndDetails(t *testing.T) {
	svc := NewService()
	ctx := context.Background()
	svc.TopUp(ctx, "acct-1", 100, 30, "", t0)
	svc.TopUp(ctx, "acct-1", 5, 1, "", t0.Add(-48*time.Hour))

	r := newCreditsRouter(svc, "acct-1")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/credits", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body struct {
		Credits       int     `json:"credits"`
		CreditDetails []Block `json:"creditDetails"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Credits != 100 || len(body.CreditDetails) != 1 {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestTopUpRequiresWebhookSecret(t *testing.T) {
	r := newCreditsRouter(NewService(), "")
	payload := []byte(`{"accountId":"acct-9","plan":"pack250"}`)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/credits/topup", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without secret, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/credits/topup", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Secret", "hook-secret")
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var bal Balance
	if err := json.Unmarshal(resp.Body.Bytes(), &bal); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if bal.Total != 250 || !bal.Blocks[0].ExpiresAt.Equal(t0.AddDate(0, 0, 365)) {
		t.Fatalf("unexpected balance %+v", bal)
	}
}

func TestTopUpValidation(t *testing.T) {
	r := newCreditsRouter(NewService(), "")
	cases := []struct {
		name string
		body string
	}{
		{name: "missing account", body: `{"plan":"pack250"}`},
		{name: "unknown plan", body: `{"accountId":"a","plan":"gold"}`},
		{name: "zero amount", body: `{"accountId":"a","amount":0,"validityDays":30}`},
		{name: "bad json", body: `{`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/credits/topup", bytes.NewReader([]byte(tc.body)))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-Webhook-Secret", "hook-secret")
			resp := httptest.NewRecorder()
			r.ServeHTTP(resp, req)
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.Code)
			}
		})
	}
}

func TestDevGrantAndEvents(t *testing.T) {
	svc := NewService()
	r := newCreditsRouter(svc, "acct-1")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/dev/credits/grant", bytes.NewReader([]byte(`{"amount":7,"validityDays":3}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/credits/events", nil))
	var body struct {
		Events []Event `json:"events"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Events) != 1 || body.Events[0].Amount != 7 || body.Events[0].Kind != EventTopUp {
		t.Fatalf("unexpected events %+v", body.Events)
	}
}

func TestGetBalanceRequiresIdentity(t *testing.T) {
	r := newCreditsRouter(NewService(), "")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/credits", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}
