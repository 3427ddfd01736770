package folders

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestService() *Service {
	svc := NewService(NewMemoryRepo())
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	svc.Now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}
	return svc
}

func TestCreateTrimsAndRejectsDuplicates(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	folder, err := svc.Create(ctx, "acct-1", "  Backend Hires ", " Go engineer ")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if folder.Name != "Backend Hires" || folder.JobDescription != "Go engineer" {
		t.Fatalf("unexpected folder %+v", folder)
	}
	if len(folder.VisibleColumns) != len(DefaultColumns) {
		t.Fatalf("expected default columns, got %v", folder.VisibleColumns)
	}

	if _, err := svc.Create(ctx, "acct-1", "Backend Hires", ""); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if _, err := svc.Create(ctx, "acct-1", "backend hires", ""); err != nil {
		t.Fatalf("names are case-sensitive, got %v", err)
	}
	if _, err := svc.Create(ctx, "acct-2", "Backend Hires", ""); err != nil {
		t.Fatalf("other accounts are independent, got %v", err)
	}
}

func TestCreateValidatesName(t *testing.T) {
	svc := newTestService()
	for _, name := range []string{"", "   ", strings.Repeat("x", 101)} {
		if _, err := svc.Create(context.Background(), "acct-1", name, ""); !errors.Is(err, ErrInvalidName) {
			t.Fatalf("expected ErrInvalidName for %q, got %v", name, err)
		}
	}
	if _, err := svc.Create(context.Background(), "acct-1", strings.Repeat("x", 100), ""); err != nil {
		t.Fatalf("100 characters should be allowed: %v", err)
	}
}

func TestDefaultFolderLifecycle(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if err := svc.EnsureDefault(ctx, "acct-1"); err != nil {
		t.Fatalf("EnsureDefault: %v", err)
	}
	if err := svc.EnsureDefault(ctx, "acct-1"); err != nil {
		t.Fatalf("EnsureDefault should be idempotent: %v", err)
	}
	if err := svc.Delete(ctx, "acct-1", DefaultName); !errors.Is(err, ErrDefaultFolder) {
		t.Fatalf("expected ErrDefaultFolder, got %v", err)
	}
	items, _ := svc.List(ctx, "acct-1")
	if len(items) != 1 || items[0].Name != DefaultName {
		t.Fatalf("unexpected folders %+v", items)
	}
}

func TestDeleteUnknownFolder(t *testing.T) {
	svc := newTestService()
	if err := svc.Delete(context.Background(), "acct-1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetVisibleColumns(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	svc.Create(ctx, "acct-1", "Design", "")

	cols, err := svc.SetVisibleColumns(ctx, "acct-1", "Design", []string{"email", "mobile", "email", " skillsets "})
	if err != nil {
		t.Fatalf("SetVisibleColumns: %v", err)
	}
	if strings.Join(cols, ",") != "email,mobile,skillsets" {
		t.Fatalf("unexpected columns %v", cols)
	}
	folder, _ := svc.Get(ctx, "acct-1", "Design")
	if strings.Join(folder.VisibleColumns, ",") != "email,mobile,skillsets" {
		t.Fatalf("columns not persisted: %v", folder.VisibleColumns)
	}

	if _, err := svc.SetVisibleColumns(ctx, "acct-1", "Design", []string{"salary"}); !errors.Is(err, ErrInvalidColumn) {
		t.Fatalf("expected ErrInvalidColumn, got %v", err)
	}
	if _, err := svc.SetVisibleColumns(ctx, "acct-1", "Nope", []string{"email"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveJobDescription(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	svc.Create(ctx, "acct-1", "Data", "Data engineer, Spark")
	svc.Create(ctx, "acct-1", "Empty", "")

	jd, err := svc.ResolveJobDescription(ctx, "acct-1", "Data")
	if err != nil || jd != "Data engineer, Spark" {
		t.Fatalf("expected stored jd, got %q %v", jd, err)
	}
	jd, err = svc.ResolveJobDescription(ctx, "acct-1", "Empty")
	if err != nil || jd != "" {
		t.Fatalf("expected empty jd, got %q %v", jd, err)
	}
	if _, err := svc.ResolveJobDescription(ctx, "acct-2", "Data"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound across accounts, got %v", err)
	}

	if err := svc.SetJobDescription(ctx, "acct-1", "Empty", "QA lead"); err != nil {
		t.Fatalf("SetJobDescription: %v", err)
	}
	jd, _ = svc.ResolveJobDescription(ctx, "acct-1", "Empty")
	if jd != "QA lead" {
		t.Fatalf("expected updated jd, got %q", jd)
	}
}

func TestDecodeColumnsShapes(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{name: "strings", raw: `["email","mobile"]`, want: "email,mobile"},
		{name: "objects", raw: `[{"key":"email","label":"Email"},{"key":"mobile"}]`, want: "email,mobile"},
		{name: "mixed with dupes", raw: `["email",{"key":"email"},{"key":""}]`, want: "email"},
		{name: "null", raw: `null`, want: strings.Join(DefaultColumns, ",")},
		{name: "empty", raw: ``, want: strings.Join(DefaultColumns, ",")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := decodeColumns([]byte(tc.raw))
			if err != nil {
				t.Fatalf("decodeColumns: %v", err)
			}
			if strings.Join(got, ",") != tc.want {
				t.Fatalf("expected %s, got %v", tc.want, got)
			}
		})
	}
	if _, err := decodeColumns([]byte(`{"email":true}`)); err == nil {
		t.Fatalf("expected error for non-array payload")
	}
}
