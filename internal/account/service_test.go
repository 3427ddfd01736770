package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sourabhsahu334/newsUserBackend/internal/credits"
	"github.com/sourabhsahu334/newsUserBackend/internal/folders"
)

var onboardNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

type countingRepo struct {
	*MemoryRepo
	creates int
}

func (r *countingRepo) Create(ctx context.Context, acct Account) (bool, error) {
	r.creates++
	return r.MemoryRepo.Create(ctx, acct)
}

func newTestService() (*Service, *countingRepo, *credits.Service, *folders.Service) {
	repo := &countingRepo{MemoryRepo: NewMemoryRepo()}
	ledger := credits.NewService()
	fsvc := folders.NewService(folders.NewMemoryRepo())
	svc := NewService(repo, ledger, fsvc)
	svc.Now = func() time.Time { return onboardNow }
	return svc, repo, ledger, fsvc
}

func TestEnsureGrantsSignupCreditsOnce(t *testing.T) {
	svc, repo, ledger, fsvc := newTestService()
	ctx := context.Background()
	id := Identity{ID: "acct-1", Email: " a@example.com ", Name: "Ada"}

	if err := svc.Ensure(ctx, id); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if err := svc.Ensure(ctx, id); err != nil {
		t.Fatalf("Ensure again: %v", err)
	}
	if repo.creates != 1 {
		t.Fatalf("expected known accounts to skip the repo, got %d creates", repo.creates)
	}

	bal, err := ledger.Available(ctx, "acct-1", onboardNow)
	if err != nil {
		t.Fatalf("Available: %v", err)
	}
	if bal.Total != 100 || len(bal.Blocks) != 1 {
		t.Fatalf("expected one signup block of 100, got %+v", bal)
	}
	if want := onboardNow.AddDate(0, 0, 30); !bal.Blocks[0].ExpiresAt.Equal(want) {
		t.Fatalf("expected expiry %s, got %s", want, bal.Blocks[0].ExpiresAt)
	}
	if _, err := fsvc.Get(ctx, "acct-1", folders.DefaultName); err != nil {
		t.Fatalf("expected default folder, got %v", err)
	}
	acct, err := repo.Get(ctx, "acct-1")
	if err != nil || acct.Email != "a@example.com" {
		t.Fatalf("unexpected account %+v (%v)", acct, err)
	}
}

func TestEnsureExistingAccountIsNotGrantedAgain(t *testing.T) {
	svc, repo, ledger, _ := newTestService()
	ctx := context.Background()
	if _, err := repo.MemoryRepo.Create(ctx, Account{ID: "acct-2", CreatedAt: onboardNow}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := repo.ClaimSignup(ctx, "acct-2", onboardNow); err != nil {
		t.Fatalf("seed grant mark: %v", err)
	}

	if err := svc.Ensure(ctx, Identity{ID: "acct-2"}); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	bal, _ := ledger.Available(ctx, "acct-2", onboardNow)
	if bal.Total != 0 {
		t.Fatalf("expected no grant for existing account, got %d", bal.Total)
	}
}

func TestEnsureRequiresID(t *testing.T) {
	svc, _, _, _ := newTestService()
	if err := svc.Ensure(context.Background(), Identity{ID: "  "}); !errors.Is(err, ErrMissingIdentity) {
		t.Fatalf("expected ErrMissingIdentity, got %v", err)
	}
}

func TestMe(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.Me(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.Ensure(ctx, Identity{ID: "acct-1", Name: "Ada"}); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	profile, err := svc.Me(ctx, "acct-1")
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if profile.Credits != 100 || len(profile.Folders) != 1 || profile.Folders[0].Name != folders.DefaultName || profile.Name != "Ada" {
		t.Fatalf("unexpected profile %+v", profile)
	}
}

type flakyLedger struct {
	*credits.Service
	failures int
	grants   int
}

func (l *flakyLedger) Grant(ctx context.Context, accountID string, plan credits.Plan, now time.Time) (credits.Balance, error) {
	l.grants++
	if l.failures > 0 {
		l.failures--
		return credits.Balance{}, errors.New("db blip")
	}
	return l.Service.Grant(ctx, accountID, plan, now)
}

func TestEnsureRetriesFailedSignupGrant(t *testing.T) {
	repo := NewMemoryRepo()
	ledger := &flakyLedger{Service: credits.NewService(), failures: 1}
	svc := NewService(repo, ledger, folders.NewService(folders.NewMemoryRepo()))
	svc.Now = func() time.Time { return onboardNow }
	ctx := context.Background()
	id := Identity{ID: "acct-3"}

	if err := svc.Ensure(ctx, id); err == nil {
		t.Fatalf("expected first Ensure to surface the grant failure")
	}
	if err := svc.Ensure(ctx, id); err != nil {
		t.Fatalf("Ensure retry: %v", err)
	}
	if err := svc.Ensure(ctx, id); err != nil {
		t.Fatalf("Ensure again: %v", err)
	}

	bal, err := ledger.Available(ctx, "acct-3", onboardNow)
	if err != nil {
		t.Fatalf("Available: %v", err)
	}
	if bal.Total != 100 {
		t.Fatalf("expected signup credits after retry, got %d", bal.Total)
	}
	if ledger.grants != 2 {
		t.Fatalf("expected 2 grant attempts, got %d", ledger.grants)
	}
}

func TestEnsureGrantsOnceAcrossProcesses(t *testing.T) {
	repo := NewMemoryRepo()
	ledger := credits.NewService()
	fsvc := folders.NewService(folders.NewMemoryRepo())
	ctx := context.Background()

	// Two services share storage but not the known-account cache.
	for i := 0; i < 2; i++ {
		svc := NewService(repo, ledger, fsvc)
		svc.Now = func() time.Time { return onboardNow }
		if err := svc.Ensure(ctx, Identity{ID: "acct-4"}); err != nil {
			t.Fatalf("Ensure %d: %v", i, err)
		}
	}
	bal, _ := ledger.Available(ctx, "acct-4", onboardNow)
	if bal.Total != 100 {
		t.Fatalf("expected a single signup grant, got %d", bal.Total)
	}
}
