package util

import (
	"strings"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "resume.pdf", want: "resume.pdf"},
		{in: " cv/2024.pdf ", want: "cv_2024.pdf"},
		{in: `a\b.pdf`, want: "a_b.pdf"},
		{in: "../etc/passwd", wantErr: true},
		{in: "   ", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := SanitizeFileName(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestSanitizeError(t *testing.T) {
	got := SanitizeError("line one\nline two\r\n")
	if got != "line one line two" {
		t.Fatalf("unexpected sanitized value %q", got)
	}
	long := SanitizeError(strings.Repeat("x", 900))
	if len(long) != 500 {
		t.Fatalf("expected 500 chars, got %d", len(long))
	}
}
