// Package batch prices, pays for and runs multi-document extractions.
package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sourabhsahu334/newsUserBackend/internal/credits"
	"github.com/sourabhsahu334/newsUserBackend/internal/folders"
	"github.com/sourabhsahu334/newsUserBackend/internal/history"
	"github.com/sourabhsahu334/newsUserBackend/internal/oracle"
	"github.com/sourabhsahu334/newsUserBackend/internal/shared/metrics"
	"github.com/sourabhsahu334/newsUserBackend/internal/shared/telemetry"
	"github.com/sourabhsahu334/newsUserBackend/internal/shared/util"
	"github.com/sourabhsahu334/newsUserBackend/internal/shared/workpool"
)

const DefaultMaxDocuments = 10

type Ledger interface {
	ReserveAndDeduct(ctx context.Context, accountID string, required int, now time.Time) (credits.Deduction, error)
}

type FolderResolver interface {
	ResolveJobDescription(ctx context.Context, accountID, name string) (string, error)
}

type Recorder interface {
	Record(ctx context.Context, accountID string, folderNames []string, entries []history.Entry) ([]history.Record, error)
}

// Orchestrator runs batches. Payment happens before any oracle call; results
// keep submission order.
type Orchestrator struct {
	Ledger         Ledger
	Oracle         oracle.Extractor
	Folders        FolderResolver
	History        Recorder
	Pool           *workpool.Pool
	RecordFailures bool
	MaxDocuments   int
	Now            func() time.Time
}

func (o *Orchestrator) now() time.Time {
	if o.Now == nil {
		return time.Now().UTC()
	}
	return o.Now().UTC()
}

func (o *Orchestrator) maxDocuments() int {
	if o.MaxDocuments <= 0 {
		return DefaultMaxDocuments
	}
	return o.MaxDocuments
}

func (o *Orchestrator) pool() *workpool.Pool {
	if o.Pool == nil {
		return workpool.New(workpool.DefaultSize)
	}
	return o.Pool
}

func (o *Orchestrator) validate(req Request) error {
	if strings.TrimSpace(req.AccountID) == "" {
		return &ValidationError{Field: "accountId", Message: "account is required"}
	}
	if len(req.Documents) == 0 {
		return &ValidationError{Field: "pdfs", Message: "at least one document is required"}
	}
	if limit := o.maxDocuments(); len(req.Documents) > limit {
		return &ValidationError{Field: "pdfs", Message: fmt.Sprintf("at most %d documents per batch", limit)}
	}
	for i, doc := range req.Documents {
		if len(doc.Data) == 0 && doc.Fetch == nil {
			return &ValidationError{Field: "pdfs", Message: fmt.Sprintf("document %d is empty", i+1)}
		}
	}
	return nil
}

// ProcessBatch validates, resolves the job description, charges the ledger and
// extracts every document. Insufficient credit aborts before any extraction.
func (o *Orchestrator) ProcessBatch(ctx context.Context, req Request) (Outcome, error) {
	if err := o.validate(req); err != nil {
		return Outcome{}, err
	}
	accountID := strings.TrimSpace(req.AccountID)
	folder := strings.TrimSpace(req.FolderName)
	if folder == "" {
		folder = folders.DefaultName
	}
	jd := strings.TrimSpace(req.JobDescription)
	if o.Folders != nil {
		stored, err := o.Folders.ResolveJobDescription(ctx, accountID, folder)
		if err != nil {
			return Outcome{}, err
		}
		if jd == "" {
			jd = strings.TrimSpace(stored)
		}
	}

	n := len(req.Documents)
	perDoc := Price(1, jd != "")
	price := Price(n, jd != "")
	deduction, err := o.Ledger.ReserveAndDeduct(ctx, accountID, price, o.now())
	if err != nil {
		if errors.Is(err, credits.ErrInsufficientCredit) {
			metrics.IncBatchRejected()
		}
		return Outcome{}, err
	}

	// Paid work runs to completion even if the caller goes away.
	runCtx := context.WithoutCancel(ctx)
	start := time.Now()
	results := make([]DocumentResult, n)
	o.pool().Run(runCtx, n, func(ctx context.Context, i int) {
		results[i] = o.processOne(ctx, req.Documents[i], jd, perDoc)
	})

	outcome := Outcome{
		Results:            results,
		CreditsCharged:     deduction.Charged,
		RemainingCredits:   deduction.Remaining,
		JobDescriptionUsed: jd != "",
		Folder:             folder,
	}

	succeeded := 0
	for _, r := range results {
		if r.Status == history.StatusSuccess {
			succeeded++
		}
		metrics.IncBatchDocument(r.Status)
	}
	telemetry.Info("batch.complete", map[string]any{
		"account_id":      accountID,
		"documents":       n,
		"succeeded":       succeeded,
		"failed":          n - succeeded,
		"credits_charged": deduction.Charged,
		"remaining":       deduction.Remaining,
		"folder":          folder,
		"with_jd":         jd != "",
		"source":          req.Source,
		"duration_ms":     time.Since(start).Milliseconds(),
	})

	if err := o.record(runCtx, accountID, folder, req.Source, outcome.Results); err != nil {
		return outcome, fmt.Errorf("record history: %w", err)
	}
	return outcome, nil
}

func (o *Orchestrator) processOne(ctx context.Context, doc Document, jd string, perDoc int) (res DocumentResult) {
	res = DocumentResult{
		Filename:       doc.Filename,
		CreditsCharged: perDoc,
		EmailID:        doc.Meta.EmailID,
		EmailSubject:   doc.Meta.EmailSubject,
	}
	defer func() {
		if r := recover(); r != nil {
			telemetry.Error("batch.document_panic", map[string]any{"filename": doc.Filename, "panic": fmt.Sprint(r)})
			res.Status = history.StatusFailed
			res.Candidate = nil
			res.Error = &oracle.Failure{Code: oracle.CodeFailure, Message: "internal error while extracting document"}
		}
	}()

	data := doc.Data
	if len(data) == 0 && doc.Fetch != nil {
		fetched, err := doc.Fetch(ctx)
		if err != nil {
			res.Status = history.StatusFailed
			res.Error = &oracle.Failure{
				Code:      oracle.CodeDocumentUnavailable,
				Message:   util.SanitizeError(err.Error()),
				Retryable: true,
			}
			return res
		}
		data = fetched
	}

	out := o.Oracle.Extract(ctx, oracle.Input{Filename: doc.Filename, Data: data}, jd)
	if out.Succeeded() {
		res.Status = history.StatusSuccess
		res.Candidate = out.Candidate
		return res
	}
	res.Status = history.StatusFailed
	res.Error = out.Failure
	if res.Error == nil {
		res.Error = &oracle.Failure{Code: oracle.CodeFailure, Message: "no result from oracle"}
	}
	return res
}

func (o *Orchestrator) record(ctx context.Context, accountID, folder, source string, results []DocumentResult) error {
	if o.History == nil {
		return nil
	}
	entries := make([]history.Entry, 0, len(results))
	index := make([]int, 0, len(results))
	for i, r := range results {
		if r.Status != history.StatusSuccess && !o.RecordFailures {
			continue
		}
		e := history.Entry{
			Filename:       r.Filename,
			Candidate:      r.Candidate,
			CreditsCharged: r.CreditsCharged,
			Source:         source,
			EmailID:        r.EmailID,
			EmailSubject:   r.EmailSubject,
		}
		if r.Error != nil {
			e.Error = r.Error.Code + ": " + r.Error.Message
		}
		entries = append(entries, e)
		index = append(index, i)
	}
	if len(entries) == 0 {
		return nil
	}
	records, err := o.History.Record(ctx, accountID, []string{folder}, entries)
	if err != nil {
		return err
	}
	for k, rec := range records {
		if k < len(index) {
			results[index[k]].HistoryID = rec.ID
		}
	}
	return nil
}
