package account

import (
	"context"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/sourabhsahu334/newsUserBackend/internal/credits"
	"github.com/sourabhsahu334/newsUserBackend/internal/folders"
	"github.com/sourabhsahu334/newsUserBackend/internal/shared/telemetry"
)

const knownAccountsSize = 4096

// Ledger is the subset of the credit ledger used for onboarding and /me.
type Ledger interface {
	Grant(ctx context.Context, accountID string, plan credits.Plan, now time.Time) (credits.Balance, error)
	Available(ctx context.Context, accountID string, now time.Time) (credits.Balance, error)
}

// Folders is the subset of the folder registry used for onboarding and /me.
type Folders interface {
	EnsureDefault(ctx context.Context, accountID string) error
	List(ctx context.Context, accountID string) ([]folders.Folder, error)
}

type Service struct {
	Repo       Repo
	Ledger     Ledger
	Folders    Folders
	SignupPlan credits.Plan
	Now        func() time.Time
	known      *lru.Cache[string, struct{}]
}

func NewService(repo Repo, ledger Ledger, fl Folders) *Service {
	known, _ := lru.New[string, struct{}](knownAccountsSize)
	return &Service{
		Repo:       repo,
		Ledger:     ledger,
		Folders:    fl,
		SignupPlan: credits.PlanSignup,
		known:      known,
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Ensure creates the account on first sight, grants the signup plan and
// creates the default folder. Later calls are served from a process-local
// cache of known ids.
func (s *Service) Ensure(ctx context.Context, id Identity) error {
	accountID := strings.TrimSpace(id.ID)
	if accountID == "" {
		return ErrMissingIdentity
	}
	if s.known != nil && s.known.Contains(accountID) {
		return nil
	}

	now := s.now()
	created, err := s.Repo.Create(ctx, Account{
		ID:        accountID,
		Email:     strings.TrimSpace(id.Email),
		Name:      strings.TrimSpace(id.Name),
		CreatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	if created {
		telemetry.Info("account.created", map[string]any{"user_id": accountID})
	}
	if err := s.grantSignup(ctx, accountID, now); err != nil {
		return err
	}
	if err := s.Folders.EnsureDefault(ctx, accountID); err != nil {
		return fmt.Errorf("ensure default folder: %w", err)
	}
	if s.known != nil {
		s.known.Add(accountID, struct{}{})
	}
	return nil
}

// grantSignup gives the signup plan once per account. The mark is taken
// before the grant and dropped again when the grant fails, so a later
// Ensure retries it.
func (s *Service) grantSignup(ctx context.Context, accountID string, now time.Time) error {
	claimed, err := s.Repo.ClaimSignup(ctx, accountID, now)
	if err != nil {
		return fmt.Errorf("claim signup grant: %w", err)
	}
	if !claimed {
		return nil
	}
	if _, err := s.Ledger.Grant(ctx, accountID, s.SignupPlan, now); err != nil {
		if rerr := s.Repo.ReleaseSignup(context.WithoutCancel(ctx), accountID); rerr != nil {
			telemetry.Error("account.signup_release_failed", map[string]any{
				"user_id": accountID,
				"error":   rerr.Error(),
			})
		}
		return fmt.Errorf("grant signup credits: %w", err)
	}
	telemetry.Info("account.signup_granted", map[string]any{
		"user_id": accountID,
		"plan":    s.SignupPlan.Name,
		"credits": s.SignupPlan.Credits,
	})
	return nil
}

// Profile is the /me payload.
type Profile struct {
	Account
	Credits       int              `json:"credits"`
	CreditDetails []credits.Block  `json:"creditDetails"`
	Folders       []folders.Folder `json:"folders"`
}

func (s *Service) Me(ctx context.Context, accountID string) (Profile, error) {
	acct, err := s.Repo.Get(ctx, accountID)
	if err != nil {
		return Profile{}, err
	}
	bal, err := s.Ledger.Available(ctx, accountID, s.now())
	if err != nil {
		return Profile{}, err
	}
	fl, err := s.Folders.List(ctx, accountID)
	if err != nil {
		return Profile{}, err
	}
	blocks := bal.Blocks
	if blocks == nil {
		blocks = []credits.Block{}
	}
	return Profile{Account: acct, Credits: bal.Total, CreditDetails: blocks, Folders: fl}, nil
}
