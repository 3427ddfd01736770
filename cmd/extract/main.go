package main

// Run one extraction batch over local PDFs with in-memory storage:
//   go run ./cmd/extract -jd jd.txt -out result.json resume1.pdf resume2.pdf

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sourabhsahu334/newsUserBackend/internal/batch"
	"github.com/sourabhsahu334/newsUserBackend/internal/bootstrap"
	"github.com/sourabhsahu334/newsUserBackend/internal/extract"
	"github.com/sourabhsahu334/newsUserBackend/internal/history"
	"github.com/sourabhsahu334/newsUserBackend/internal/shared/config"
)

const cliAccount = "cli"

func main() {
	cfg := config.Load()

	jdPath := flag.String("jd", "", "Path to job description file (optional)")
	outPath := flag.String("out", "", "Path to write JSON output (optional)")
	provider := flag.String("provider", cfg.OracleProvider, "Oracle provider (gemini, openai, placeholder)")
	model := flag.String("model", cfg.OracleModel, "Oracle model")
	flag.Parse()

	if flag.NArg() == 0 {
		exitErr("at least one PDF path is required")
	}

	cfg.Env = "local"
	cfg.DatabaseURL = ""
	cfg.OracleProvider = *provider
	cfg.OracleModel = *model
	cfg.OracleCacheSize = 0

	if err := run(context.Background(), cfg, flag.Args(), *jdPath, os.Stdout, *outPath); err != nil {
		exitErr(err.Error())
	}
}

func run(ctx context.Context, cfg config.Config, paths []string, jdPath string, stdout io.Writer, outPath string) error {
	docs, err := loadDocuments(paths)
	if err != nil {
		return err
	}
	jd := ""
	if strings.TrimSpace(jdPath) != "" {
		data, err := os.ReadFile(jdPath)
		if err != nil {
			return fmt.Errorf("read job description: %w", err)
		}
		jd = string(data)
	}

	app, err := bootstrap.Assemble(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Folders.EnsureDefault(ctx, cliAccount); err != nil {
		return err
	}
	price := batch.Price(len(docs), strings.TrimSpace(jd) != "")
	if _, err := app.Credits.TopUp(ctx, cliAccount, price, 1, "cli", time.Now().UTC()); err != nil {
		return err
	}

	outcome, err := app.Batches.ProcessBatch(ctx, batch.Request{
		AccountID:      cliAccount,
		Documents:      docs,
		JobDescription: jd,
		Source:         history.SourceUpload,
	})
	if err != nil {
		return fmt.Errorf("process batch: %w", err)
	}

	pretty, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return fmt.Errorf("format json: %w", err)
	}
	if outPath != "" {
		if err := os.WriteFile(outPath, pretty, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	_, err = fmt.Fprintln(stdout, string(pretty))
	return err
}

func loadDocuments(paths []string) ([]batch.Document, error) {
	docs := make([]batch.Document, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		if !extract.IsPDF(data) {
			return nil, fmt.Errorf("%s: %w", p, extract.ErrNotPDF)
		}
		docs = append(docs, batch.Document{Filename: filepath.Base(p), Data: data})
	}
	return docs, nil
}

func exitErr(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
