package credits

import (
	"context"
	"strings"
	"time"

	"github.com/sourabhsahu334/newsUserBackend/internal/shared/metrics"
)

// mutateFunc computes the next block list from the current one. It returns the
// audit event to record with the write, or nil for none.
type mutateFunc func(blocks []Block) ([]Block, *Event, error)

type store interface {
	Blocks(ctx context.Context, accountID string) ([]Block, error)
	// Mutate loads the account's blocks, applies fn and persists the result
	// while holding the account's lock.
	Mutate(ctx context.Context, accountID string, fn mutateFunc) ([]Block, error)
	PruneExpired(ctx context.Context, now time.Time) (int, error)
	Events(ctx context.Context, accountID string, limit int) ([]Event, error)
}

// Service is the credit ledger.
type Service struct {
	store store
}

// NewService constructs a Service with in-memory store.
func NewService() *Service {
	return &Service{store: newMemoryStore()}
}

// NewPostgresService constructs a Service backed by Postgres.
func NewPostgresService(pgStore store) *Service {
	return &Service{store: pgStore}
}

// Available returns the live balance at now.
func (s *Service) Available(ctx context.Context, accountID string, now time.Time) (Balance, error) {
	blocks, err := s.store.Blocks(ctx, accountID)
	if err != nil {
		return Balance{}, err
	}
	live := Prune(blocks, now)
	return Balance{Total: Available(live, now), Blocks: live}, nil
}

// ReserveAndDeduct charges required credits or fails with
// *InsufficientCreditError without touching the ledger.
func (s *Service) ReserveAndDeduct(ctx context.Context, accountID string, required int, now time.Time) (Deduction, error) {
	if required <= 0 {
		bal, err := s.Available(ctx, accountID, now)
		if err != nil {
			return Deduction{}, err
		}
		return Deduction{Remaining: bal.Total, Blocks: bal.Blocks}, nil
	}
	blocks, err := s.store.Mutate(ctx, accountID, func(current []Block) ([]Block, *Event, error) {
		next, err := Deduct(current, required, now)
		if err != nil {
			return nil, nil, err
		}
		return next, &Event{
			AccountID:    accountID,
			Kind:         EventDeduct,
			Amount:       required,
			BalanceAfter: Available(next, now),
			CreatedAt:    now,
		}, nil
	})
	if err != nil {
		return Deduction{}, err
	}
	metrics.AddCreditsDeducted(required)
	return Deduction{Charged: required, Remaining: Available(blocks, now), Blocks: blocks}, nil
}

// TopUp appends a new block of amount credits valid for validityDays.
func (s *Service) TopUp(ctx context.Context, accountID string, amount, validityDays int, reason string, now time.Time) (Balance, error) {
	blocks, err := s.store.Mutate(ctx, accountID, func(current []Block) ([]Block, *Event, error) {
		next, err := AddBlock(current, amount, validityDays, now)
		if err != nil {
			return nil, nil, err
		}
		return next, &Event{
			AccountID:    accountID,
			Kind:         EventTopUp,
			Amount:       amount,
			BalanceAfter: Available(next, now),
			Reason:       strings.TrimSpace(reason),
			CreatedAt:    now,
		}, nil
	})
	if err != nil {
		return Balance{}, err
	}
	metrics.AddCreditsToppedUp(amount)
	return Balance{Total: Available(blocks, now), Blocks: blocks}, nil
}

// Grant applies a named plan.
func (s *Service) Grant(ctx context.Context, accountID string, plan Plan, now time.Time) (Balance, error) {
	return s.TopUp(ctx, accountID, plan.Credits, plan.ValidityDays, "plan:"+plan.Name, now)
}

// PruneExpired removes dead blocks across all accounts.
func (s *Service) PruneExpired(ctx context.Context, now time.Time) (int, error) {
	return s.store.PruneExpired(ctx, now)
}

// Events lists the most recent audit entries for an account.
func (s *Service) Events(ctx context.Context, accountID string, limit int) ([]Event, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.store.Events(ctx, accountID, limit)
}
