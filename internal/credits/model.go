package credits

import "time"

// Block is a prepaid quantity of credit that expires independently.
type Block struct {
	ID        int64     `json:"id,omitempty"`
	Amount    int       `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Balance is the live view of an account's ledger.
type Balance struct {
	Total  int     `json:"credits"`
	Blocks []Block `json:"creditDetails"`
}

// Deduction is the result of a successful ReserveAndDeduct.
type Deduction struct {
	Charged   int     `json:"charged"`
	Remaining int     `json:"remaining"`
	Blocks    []Block `json:"blocks"`
}

// Event kinds recorded in the audit trail.
const (
	EventTopUp  = "topup"
	EventDeduct = "deduct"
)

// Event is one audit entry written alongside a ledger mutation.
type Event struct {
	AccountID    string    `json:"accountId"`
	Kind         string    `json:"kind"`
	Amount       int       `json:"amount"`
	BalanceAfter int       `json:"balanceAfter"`
	Reason       string    `json:"reason,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Plan is a named credit grant.
type Plan struct {
	Name         string `json:"name"`
	Credits      int    `json:"credits"`
	ValidityDays int    `json:"validityDays"`
}
