package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sourabhsahu334/newsUserBackend/internal/experience"
	"github.com/sourabhsahu334/newsUserBackend/internal/folders"
	"github.com/sourabhsahu334/newsUserBackend/internal/oracle"
)

func strPtr(s string) *string { return &s }

type testEnv struct {
	svc     *Service
	folders *folders.Service
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	fsvc := folders.NewService(folders.NewMemoryRepo())
	ctx := context.Background()
	for _, acct := range []string{"acct-1", "acct-2"} {
		if err := fsvc.EnsureDefault(ctx, acct); err != nil {
			t.Fatalf("EnsureDefault: %v", err)
		}
	}
	fsvc.Create(ctx, "acct-1", "Shortlist", "")
	fsvc.Create(ctx, "acct-1", "Archive", "")

	svc := NewService(NewMemoryRepo(), fsvc)
	tick := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return testEnv{svc: svc, folders: fsvc}
}

func candidate(name, company string, skills ...string) *oracle.Candidate {
	return &oracle.Candidate{
		Name:           name,
		Email:          name + "@example.com",
		CurrentCompany: company,
		Skillsets:      skills,
		Experience:     []experience.Entry{{Company: strPtr("Prior " + company)}},
	}
}

func record(t *testing.T, env testEnv, acct string, folder string, entries ...Entry) []Record {
	t.Helper()
	recs, err := env.svc.Record(context.Background(), acct, []string{folder}, entries)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	return recs
}

func TestRecordAssignsStatusAndSource(t *testing.T) {
	env := newTestEnv(t)
	recs := record(t, env, "acct-1", "default",
		Entry{Filename: "a.pdf", Candidate: candidate("ann", "Acme"), CreditsCharged: 2},
		Entry{Filename: "b.pdf", Error: "ORACLE_TIMEOUT: oracle call timed out\n", CreditsCharged: 2, Source: SourceGmail, EmailID: "m1"},
	)
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Status != StatusSuccess || recs[0].Source != SourceUpload || recs[0].CreditsCharged != 2 {
		t.Fatalf("unexpected success record %+v", recs[0])
	}
	if recs[1].Status != StatusFailed || recs[1].Error != "ORACLE_TIMEOUT: oracle call timed out" || recs[1].Source != SourceGmail {
		t.Fatalf("unexpected failed record %+v", recs[1])
	}
	if _, err := uuid.Parse(recs[0].ID); err != nil {
		t.Fatalf("expected uuid id, got %q", recs[0].ID)
	}
}

func TestListPaginatesNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 5; i++ {
		record(t, env, "acct-1", "default", Entry{Filename: string(rune('a'+i)) + ".pdf", Candidate: candidate("c", "x")})
	}
	record(t, env, "acct-2", "default", Entry{Filename: "other.pdf", Candidate: candidate("o", "y")})

	page, err := env.svc.List(context.Background(), "acct-1", Filter{}, 1, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 5 || len(page.Items) != 2 || page.Items[0].Filename != "e.pdf" {
		t.Fatalf("unexpected first page %+v", page)
	}
	page, _ = env.svc.List(context.Background(), "acct-1", Filter{}, 3, 2)
	if len(page.Items) != 1 || page.Items[0].Filename != "a.pdf" {
		t.Fatalf("unexpected last page %+v", page)
	}
	page, _ = env.svc.List(context.Background(), "acct-1", Filter{}, 0, 1000)
	if page.Page != 1 || page.PageSize != maxPageSize {
		t.Fatalf("expected clamped pagination, got page=%d size=%d", page.Page, page.PageSize)
	}
	if _, err := env.svc.List(context.Background(), "acct-1", Filter{Status: "pending"}, 1, 10); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestSearchMatchesCandidateFields(t *testing.T) {
	env := newTestEnv(t)
	record(t, env, "acct-1", "default",
		Entry{Filename: "a.pdf", Candidate: candidate("Priya", "Acme", "Kubernetes", "Go")},
		Entry{Filename: "b.pdf", Candidate: candidate("Ravi", "Globex", "React")},
		Entry{Filename: "c.pdf", Error: "kubernetes failure text"},
	)
	cases := []struct {
		query string
		want  int
	}{
		{query: "KUBER", want: 1},
		{query: "globex", want: 1},
		{query: "prior acme", want: 1},
		{query: "example.com", want: 2},
		{query: "nobody", want: 0},
	}
	for _, tc := range cases {
		page, err := env.svc.Search(context.Background(), "acct-1", tc.query, Filter{}, 1, 20)
		if err != nil {
			t.Fatalf("Search(%q): %v", tc.query, err)
		}
		if page.Total != tc.want {
			t.Fatalf("Search(%q) expected %d, got %d", tc.query, tc.want, page.Total)
		}
	}
	if _, err := env.svc.Search(context.Background(), "acct-1", "  ", Filter{}, 1, 20); !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("expected ErrEmptyQuery, got %v", err)
	}
}

func TestMoveCopyAndFolderScopedDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	recs := record(t, env, "acct-1", "default",
		Entry{Filename: "a.pdf", Candidate: candidate("a", "x")},
		Entry{Filename: "b.pdf", Candidate: candidate("b", "x")},
	)
	a, b := recs[0].ID, recs[1].ID

	if n, err := env.svc.Copy(ctx, "acct-1", []string{a, b, a}, "Shortlist"); err != nil || n != 2 {
		t.Fatalf("Copy: n=%d err=%v", n, err)
	}
	if n, err := env.svc.Move(ctx, "acct-1", []string{a}, "default", "Archive"); err != nil || n != 1 {
		t.Fatalf("Move: n=%d err=%v", n, err)
	}
	got, _ := env.svc.Get(ctx, "acct-1", a)
	if len(got.FolderNames) != 2 || got.FolderNames[0] != "Shortlist" || got.FolderNames[1] != "Archive" {
		t.Fatalf("unexpected folders after move %v", got.FolderNames)
	}

	page, _ := env.svc.List(ctx, "acct-1", Filter{Folder: "default"}, 1, 20)
	if page.Total != 1 || page.Items[0].ID != b {
		t.Fatalf("expected only b in default, got %+v", page.Items)
	}

	if n, err := env.svc.RemoveFromFolder(ctx, "acct-1", []string{a}, "Shortlist"); err != nil || n != 1 {
		t.Fatalf("RemoveFromFolder: n=%d err=%v", n, err)
	}
	if n, err := env.svc.RemoveFromFolder(ctx, "acct-1", []string{a}, "Archive"); err != nil || n != 1 {
		t.Fatalf("RemoveFromFolder: n=%d err=%v", n, err)
	}
	if _, err := env.svc.Get(ctx, "acct-1", a); !errors.Is(err, ErrNotFound) {
		t.Fatalf("record without folders should be deleted, got %v", err)
	}

	if n, err := env.svc.Delete(ctx, "acct-1", []string{b}); err != nil || n != 1 {
		t.Fatalf("Delete: n=%d err=%v", n, err)
	}
}

func TestMutationsIgnoreOtherAccounts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	recs := record(t, env, "acct-2", "default", Entry{Filename: "x.pdf", Candidate: candidate("x", "y")})
	id := recs[0].ID

	if _, err := env.svc.Delete(ctx, "acct-1", []string{id}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign record, got %v", err)
	}
	if _, err := env.svc.Copy(ctx, "acct-1", []string{id}, "Shortlist"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign copy, got %v", err)
	}
	if _, err := env.svc.Get(ctx, "acct-1", id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign get, got %v", err)
	}
	if _, err := env.svc.Get(ctx, "acct-2", id); err != nil {
		t.Fatalf("owner should still see record: %v", err)
	}
}

func TestMutationValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := uuid.NewString()

	if _, err := env.svc.Delete(ctx, "acct-1", nil); !errors.Is(err, ErrNoIDs) {
		t.Fatalf("expected ErrNoIDs, got %v", err)
	}
	if _, err := env.svc.Delete(ctx, "acct-1", []string{"not-a-uuid"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for malformed ids, got %v", err)
	}
	if _, err := env.svc.Move(ctx, "acct-1", []string{id}, "default", "default"); !errors.Is(err, ErrSameFolder) {
		t.Fatalf("expected ErrSameFolder, got %v", err)
	}
	if _, err := env.svc.Copy(ctx, "acct-1", []string{id}, "Missing"); !errors.Is(err, folders.ErrNotFound) {
		t.Fatalf("expected folders.ErrNotFound, got %v", err)
	}
	if _, err := env.svc.RemoveFromFolder(ctx, "acct-1", []string{id}, " "); !errors.Is(err, ErrInvalidFolder) {
		t.Fatalf("expected ErrInvalidFolder, got %v", err)
	}
}
