package partner

import "errors"

var (
	// ErrNotFound is returned when a referenced user or profile does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientFunds is returned by balance debits that would go negative.
	ErrInsufficientFunds = errors.New("insufficient funds")
)
