package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/sourabhsahu334/newsUserBackend/internal/experience"
	"github.com/sourabhsahu334/newsUserBackend/internal/shared/metrics"
	"github.com/sourabhsahu334/newsUserBackend/internal/shared/telemetry"
	"github.com/sourabhsahu334/newsUserBackend/internal/shared/util"
)

const (
	defaultTimeout = 90 * time.Second
	defaultBackoff = 750 * time.Millisecond
	maxRawLen      = 4000
)

// Adapter drives a Model and converts its output into a Candidate.
type Adapter struct {
	Model     Model
	ModelName string
	Timeout   time.Duration
	Backoff   time.Duration
	Now       func() time.Time
}

func NewAdapter(model Model, modelName string, timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Adapter{
		Model:     model,
		ModelName: modelName,
		Timeout:   timeout,
		Backoff:   defaultBackoff,
		Now:       time.Now,
	}
}

// Extract calls the model with at most one retry for transient errors.
func (a *Adapter) Extract(ctx context.Context, in Input, jobDescription string) Result {
	if len(in.Data) == 0 {
		return Fail(CodeDocumentUnavailable, "document is empty", false)
	}
	jd := strings.TrimSpace(jobDescription)
	prompt := Prompt{
		Instructions: BuildPrompt(jd),
		Document:     in.Data,
		MIMEType:     "application/pdf",
		Filename:     in.Filename,
	}

	resp, err := a.call(ctx, prompt, 1)
	if err != nil && isTransient(err) {
		if !sleep(ctx, a.Backoff) {
			return classify(err)
		}
		resp, err = a.call(ctx, prompt, 2)
	}
	if err != nil {
		return classify(err)
	}
	return a.decode(resp.Raw, jd != "")
}

func (a *Adapter) call(ctx context.Context, prompt Prompt, attempt int) (Response, error) {
	timeout := a.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := metrics.OracleCallStarted()
	start := time.Now()
	resp, err := a.Model.Generate(callCtx, prompt)

	fields := map[string]any{
		"model":          a.ModelName,
		"prompt_version": PromptVersion,
		"filename":       prompt.Filename,
		"attempt":        attempt,
		"duration_ms":    time.Since(start).Milliseconds(),
	}
	if err != nil {
		done("error")
		fields["error"] = util.SanitizeError(err.Error())
		telemetry.Warn("oracle.call", fields)
		return Response{}, err
	}
	done("ok")
	fields["prompt_tokens"] = resp.Usage.PromptTokens
	fields["output_tokens"] = resp.Usage.OutputTokens
	fields["total_tokens"] = resp.Usage.TotalTokens
	telemetry.Info("oracle.call", fields)
	return resp, nil
}

func (a *Adapter) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func (a *Adapter) decode(raw []byte, withFit bool) Result {
	body := stripCodeFences(raw)
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return malformed("invalid JSON from oracle", raw)
	}
	if err := validateResponse(doc, withFit); err != nil {
		return malformed(err.Error(), raw)
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return malformed("oracle response is not an object", raw)
	}
	return Result{Candidate: buildCandidate(obj, withFit, a.now())}
}

func buildCandidate(obj map[string]any, withFit bool, now time.Time) *Candidate {
	c := &Candidate{
		Name:           stringValue(obj["name"]),
		Email:          stringValue(obj["email"]),
		Mobile:         stringValue(obj["mobile"]),
		GithubLink:     stringValue(obj["github_link"]),
		LinkedinLink:   stringValue(obj["linkedin_link"]),
		CurrentCompany: stringValue(obj["current_company"]),
		CollegeName:    stringValue(obj["collegename"]),
		Skillsets:      []string{},
		Experience:     experience.Normalize(obj["experience"], now),
	}
	if items, ok := obj["skillsets"].([]any); ok {
		for _, item := range items {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				c.Skillsets = append(c.Skillsets, strings.TrimSpace(s))
			}
		}
	}
	if withFit {
		c.Fit = &FitAnalysis{
			Summary:   stringValue(obj["summary"]),
			FitStatus: stringValue(obj["fit_status"]),
		}
	}
	for key, val := range obj {
		if _, core := coreKeys[key]; core {
			continue
		}
		if c.Extensions == nil {
			c.Extensions = make(map[string]any)
		}
		c.Extensions[key] = val
	}
	return c
}

func stringValue(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func malformed(message string, raw []byte) Result {
	text := string(raw)
	if len(text) > maxRawLen {
		cut := maxRawLen
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return Result{Failure: &Failure{
		Code:      CodeMalformedResponse,
		Message:   util.SanitizeError(message),
		Raw:       text,
		Retryable: true,
	}}
}

// stripCodeFences removes a surrounding ```json ... ``` block if present.
func stripCodeFences(raw []byte) []byte {
	trimmed := bytes.TrimSpace(raw)
	if !bytes.HasPrefix(trimmed, []byte("```")) {
		return trimmed
	}
	trimmed = bytes.TrimPrefix(trimmed, []byte("```"))
	if nl := bytes.IndexByte(trimmed, '\n'); nl >= 0 {
		trimmed = trimmed[nl+1:]
	} else {
		trimmed = bytes.TrimPrefix(trimmed, []byte("json"))
	}
	trimmed = bytes.TrimSpace(trimmed)
	trimmed = bytes.TrimSuffix(trimmed, []byte("```"))
	return bytes.TrimSpace(trimmed)
}

func classify(err error) Result {
	msg := util.SanitizeError(err.Error())
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Fail(CodeTimeout, "oracle call timed out", true)
	case errors.Is(err, ErrNotConfigured):
		return Fail(CodeFailure, msg, false)
	default:
		return Fail(CodeFailure, msg, isTransient(err))
	}
}

func isTransient(err error) bool {
	var te *TransientError
	switch {
	case errors.As(err, &te):
		return true
	case errors.Is(err, context.DeadlineExceeded):
		return true
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return true
	case errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.ECONNREFUSED):
		return true
	}
	return false
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
