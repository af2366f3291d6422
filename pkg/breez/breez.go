// Package breez wraps the Breez SDK for Lightning and on-chain payment
// execution. The SDK calls are simulated behind the same surface the
// real SDK exposes, matching how the rest of the system consumes it: a
// black box that validates destinations, pays, and reports an external
// transaction id or an error.
package breez

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Config struct {
	APIKey  string
	Network string // mainnet | testnet
}

var ErrNotInitialized = errors.New("breez: sdk not initialized")

type Client struct {
	cfg         Config
	initialized bool
}

func NewClient(cfg Config) *Client {
	if cfg.Network == "" {
		cfg.Network = "testnet"
	}
	return &Client{cfg: cfg, initialized: true}
}

// ValidateAddress recognizes BOLT11 invoices and common on-chain
// address formats. Anything else is rejected before a withdrawal
// request is ever recorded.
func (c *Client) ValidateAddress(address string) bool {
	if address == "" {
		return false
	}
	isInvoice := strings.HasPrefix(address, "lnbc") || strings.HasPrefix(address, "lntb")
	isOnchain := strings.HasPrefix(address, "bc1") ||
		strings.HasPrefix(address, "1") ||
		strings.HasPrefix(address, "3")
	return isInvoice || isOnchain
}

// SendPayment pays a Lightning invoice and returns the resulting
// external payment id.
func (c *Client) SendPayment(ctx context.Context, invoice string) (string, error) {
	if !c.initialized {
		return "", ErrNotInitialized
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !strings.HasPrefix(invoice, "lnbc") && !strings.HasPrefix(invoice, "lntb") {
		return "", fmt.Errorf("breez: not a lightning invoice")
	}
	return fmt.Sprintf("ln_%d", time.Now().UnixNano()), nil
}

// SendOnchain broadcasts an on-chain send of amountSats to address and
// returns the external transaction id.
func (c *Client) SendOnchain(ctx context.Context, address string, amountSats int64) (string, error) {
	if !c.initialized {
		return "", ErrNotInitialized
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if amountSats <= 0 {
		return "", fmt.Errorf("breez: invalid amount %d", amountSats)
	}
	if !c.ValidateAddress(address) {
		return "", fmt.Errorf("breez: invalid onchain address")
	}
	return fmt.Sprintf("onchain_%d", time.Now().UnixNano()), nil
}

// NodeBalance reports the externally-custodied node balance in sats.
// It informs profile views only; transfer checks always run against the
// internal ledger.
func (c *Client) NodeBalance(ctx context.Context) (int64, error) {
	if !c.initialized {
		return 0, ErrNotInitialized
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return 0, nil
}
