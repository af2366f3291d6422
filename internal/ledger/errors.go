package ledger

import "errors"

var (
	// Validation failures: rejected before any state mutation.
	ErrInvalidAmount      = errors.New("amount must be a positive number of sats")
	ErrSelfTip            = errors.New("cannot tip yourself")
	ErrInvalidDestination = errors.New("invalid destination address")

	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrUserNotFound      = errors.New("user not found")

	ErrTransactionNotFound = errors.New("withdrawal request not found")
	// ErrTransactionNotPending signals an already-resolved withdrawal.
	// Idempotent callers should treat it as "resolution already happened",
	// not as a fresh failure.
	ErrTransactionNotPending = errors.New("withdrawal already resolved")
)

// PaymentError reports a payment executor failure during withdrawal
// approval. The withdrawal is recorded as denied and the requester's
// balance stays untouched.
type PaymentError struct {
	Reason string
}

func (e *PaymentError) Error() string {
	return "payment failed: " + e.Reason
}
