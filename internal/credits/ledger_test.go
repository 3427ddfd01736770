package credits

import (
	"errors"
	"math/rand"
	"testing"
	"time"
)

var t0 = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

func days(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }

func TestDeductEarliestExpiryFirst(t *testing.T) {
	blocks := []Block{
		{ID: 1, Amount: 10, CreatedAt: t0, ExpiresAt: t0.Add(days(5))},
		{ID: 2, Amount: 10, CreatedAt: t0, ExpiresAt: t0.Add(days(1))},
	}
	got, err := Deduct(blocks, 5, t0)
	if err != nil {
		t.Fatalf("deduct: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(got))
	}
	if got[0].ID != 2 || got[0].Amount != 5 {
		t.Fatalf("expected 1-day block reduced to 5, got %+v", got[0])
	}
	if got[1].ID != 1 || got[1].Amount != 10 {
		t.Fatalf("expected 5-day block untouched, got %+v", got[1])
	}
	if !got[0].ExpiresAt.Equal(t0.Add(days(1))) {
		t.Fatalf("expected partially consumed block to keep expiry")
	}
	if blocks[1].Amount != 10 {
		t.Fatalf("expected input slice untouched")
	}
}

func TestDeductSpansBlocksAndPrunes(t *testing.T) {
	blocks := []Block{
		{ID: 1, Amount: 4, ExpiresAt: t0.Add(days(2))},
		{ID: 2, Amount: 50, ExpiresAt: t0.Add(-time.Hour)},
		{ID: 3, Amount: 0, ExpiresAt: t0.Add(days(9))},
		{ID: 4, Amount: 6, ExpiresAt: t0.Add(days(3))},
	}
	got, err := Deduct(blocks, 7, t0)
	if err != nil {
		t.Fatalf("deduct: %v", err)
	}
	if len(got) != 1 || got[0].ID != 4 || got[0].Amount != 3 {
		t.Fatalf("expected only block 4 with 3 left, got %+v", got)
	}
}

func TestDeductInsufficientLeavesBlocksUntouched(t *testing.T) {
	blocks := []Block{
		{ID: 1, Amount: 2, ExpiresAt: t0.Add(days(2))},
		{ID: 2, Amount: 100, ExpiresAt: t0},
	}
	_, err := Deduct(blocks, 3, t0)
	var insufficient *InsufficientCreditError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientCreditError, got %v", err)
	}
	if insufficient.Available != 2 || insufficient.Required != 3 {
		t.Fatalf("unexpected numbers %+v", insufficient)
	}
	if !errors.Is(err, ErrInsufficientCredit) {
		t.Fatalf("expected errors.Is match")
	}
	if blocks[0].Amount != 2 || blocks[1].Amount != 100 {
		t.Fatalf("expected no mutation, got %+v", blocks)
	}
	if err.Error() != "Not enough credits. Available: 2, Required: 3" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestAvailableIgnoresExpired(t *testing.T) {
	blocks := []Block{
		{Amount: 5, ExpiresAt: t0.Add(time.Minute)},
		{Amount: 7, ExpiresAt: t0},
		{Amount: 9, ExpiresAt: t0.Add(-days(1))},
	}
	if got := Available(blocks, t0); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
}

func TestAddBlockDoesNotMerge(t *testing.T) {
	blocks := []Block{{ID: 1, Amount: 10, ExpiresAt: t0.Add(days(30))}}
	got, err := AddBlock(blocks, 10, 30, t0)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected separate block, got %+v", got)
	}
	if !got[1].ExpiresAt.Equal(t0.AddDate(0, 0, 30)) || !got[1].CreatedAt.Equal(t0) {
		t.Fatalf("unexpected new block %+v", got[1])
	}
	if _, err := AddBlock(blocks, 0, 30, t0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := AddBlock(blocks, 5, 0, t0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero validity, got %v", err)
	}
}

func TestCreditConservation(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var blocks []Block
	toppedUp, deducted := 0, 0
	for i := 0; i < 200; i++ {
		if rng.Intn(3) == 0 {
			amount := 1 + rng.Intn(20)
			var err error
			blocks, err = AddBlock(blocks, amount, 1+rng.Intn(60), t0)
			if err != nil {
				t.Fatalf("add: %v", err)
			}
			toppedUp += amount
			continue
		}
		amount := rng.Intn(15)
		next, err := Deduct(blocks, amount, t0)
		if err != nil {
			if !errors.Is(err, ErrInsufficientCredit) {
				t.Fatalf("unexpected error: %v", err)
			}
			continue
		}
		blocks = next
		deducted += amount

		sum := 0
		for _, b := range blocks {
			if b.Amount <= 0 {
				t.Fatalf("dead block kept: %+v", b)
			}
			sum += b.Amount
		}
		if sum != toppedUp-deducted {
			t.Fatalf("step %d: expected %d, got %d", i, toppedUp-deducted, sum)
		}
	}
}

func TestLookupPlan(t *testing.T) {
	p, err := LookupPlan("pack250")
	if err != nil || p.Credits != 250 {
		t.Fatalf("expected pack250 plan, got %+v %v", p, err)
	}
	if _, err := LookupPlan("gold"); !errors.Is(err, ErrUnknownPlan) {
		t.Fatalf("expected ErrUnknownPlan, got %v", err)
	}
}
