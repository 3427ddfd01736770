package account

import "time"

// Account is the owner of credit blocks, folders and history.
type Account struct {
	ID        string    `json:"id"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Identity is what the auth layer knows about the caller.
type Identity struct {
	ID    string
	Email string
	Name  string
}
