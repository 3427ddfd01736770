package credits

import (
	"sort"
	"time"
)

func live(b Block, now time.Time) bool {
	return b.Amount > 0 && b.ExpiresAt.After(now)
}

// Available sums the amounts of blocks that have not expired at now.
func Available(blocks []Block, now time.Time) int {
	total := 0
	for _, b := range blocks {
		if live(b, now) {
			total += b.Amount
		}
	}
	return total
}

// Prune drops empty and expired blocks, keeping the original order.
func Prune(blocks []Block, now time.Time) []Block {
	out := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		if live(b, now) {
			out = append(out, b)
		}
	}
	return out
}

// Deduct removes amount from blocks, soonest expiry first, and returns the
// pruned result sorted by expiry. Nothing changes when the live total is short.
func Deduct(blocks []Block, amount int, now time.Time) ([]Block, error) {
	if amount < 0 {
		return nil, ErrInvalidAmount
	}
	avail := Available(blocks, now)
	if avail < amount {
		return nil, &InsufficientCreditError{Available: avail, Required: amount}
	}

	sorted := make([]Block, len(blocks))
	copy(sorted, blocks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ExpiresAt.Before(sorted[j].ExpiresAt)
	})

	remaining := amount
	for i := range sorted {
		if remaining == 0 {
			break
		}
		if !live(sorted[i], now) {
			continue
		}
		take := min(sorted[i].Amount, remaining)
		sorted[i].Amount -= take
		remaining -= take
	}
	return Prune(sorted, now), nil
}

// AddBlock appends a new block valid for validityDays and prunes dead ones.
func AddBlock(blocks []Block, amount, validityDays int, now time.Time) ([]Block, error) {
	if amount <= 0 || validityDays <= 0 {
		return nil, ErrInvalidAmount
	}
	out := Prune(blocks, now)
	out = append(out, Block{
		Amount:    amount,
		CreatedAt: now,
		ExpiresAt: now.AddDate(0, 0, validityDays),
	})
	return out, nil
}
