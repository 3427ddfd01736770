// Package extract pulls plain text out of PDF documents for oracle providers
// that cannot read binary attachments.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

const MimePDF = "application/pdf"

var (
	ErrEmptyDocument = errors.New("empty document")
	ErrNotPDF        = errors.New("document is not a PDF")
	ErrNoText        = errors.New("no extractable text in document")
)

var pdfMagic = []byte("%PDF")

// IsPDF reports whether data carries the PDF header.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, pdfMagic)
}

// TextFromPDF extracts the plain text layer of a PDF.
// Libraries used: github.com/ledongthuc/pdf.
func TextFromPDF(ctx context.Context, data []byte) (text string, err error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", ErrEmptyDocument
	}
	if !IsPDF(data) {
		return "", ErrNotPDF
	}
	// the pdf reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("pdf parse: %v", r)
		}
	}()

	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf parse: %w", err)
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	out := strings.TrimSpace(buf.String())
	if out == "" {
		return "", ErrNoText
	}
	return out, nil
}
