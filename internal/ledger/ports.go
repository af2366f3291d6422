package ledger

import (
	"context"
	"strings"
)

// Executor moves value outside the internal ledger. Send calls return
// the external transaction id on success. The executor may be slow and
// may fail independently of the ledger; the ledger never assumes
// otherwise.
type Executor interface {
	ValidateAddress(address string) bool
	SendPayment(ctx context.Context, invoice string) (externalTxID string, err error)
	SendOnchain(ctx context.Context, address string, amountSats int64) (externalTxID string, err error)
}

// Broadcaster fans events out to connected viewers. Delivery is
// best-effort; ledger correctness never depends on it.
type Broadcaster interface {
	Publish(event string, payload interface{})
}

// TipEvent is published on every completed tip.
type TipEvent struct {
	Amount       int64  `json:"amount"`
	FromUsername string `json:"from"`
	ToUsername   string `json:"to"`
	Message      string `json:"message,omitempty"`
	PostID       *uint  `json:"post_id,omitempty"`
	StreamID     *uint  `json:"stream_id,omitempty"`
}

// IsLightningInvoice reports whether a destination is a BOLT11 invoice
// rather than an on-chain address. Mirrors the executor's own format
// recognition so the approval path can pick the payment rail.
func IsLightningInvoice(destination string) bool {
	return strings.HasPrefix(destination, "lnbc") || strings.HasPrefix(destination, "lntb")
}
