package breez

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAddress(t *testing.T) {
	c := NewClient(Config{Network: "testnet"})

	cases := []struct {
		address string
		want    bool
	}{
		{"lnbc500u1pjsomething", true},
		{"lntb100n1pjtestnet", true},
		{"bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", true},
		{"1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", true},
		{"3J98t1WpEZ73CNmQviecrnyiWrnqRhWNLy", true},
		{"", false},
		{"not-an-address", false},
		{"0x52908400098527886E0F7030069857D2E4169EE7", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, c.ValidateAddress(tc.address), "address %q", tc.address)
	}
}

func TestSendPayment(t *testing.T) {
	c := NewClient(Config{})
	ctx := context.Background()

	id, err := c.SendPayment(ctx, "lnbc500u1pjinvoice")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "ln_"))

	_, err = c.SendPayment(ctx, "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4")
	assert.Error(t, err, "on-chain address is not payable as an invoice")
}

func TestSendOnchain(t *testing.T) {
	c := NewClient(Config{})
	ctx := context.Background()

	id, err := c.SendOnchain(ctx, "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", 5000)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "onchain_"))

	_, err = c.SendOnchain(ctx, "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", 0)
	assert.Error(t, err)

	_, err = c.SendOnchain(ctx, "garbage", 5000)
	assert.Error(t, err)
}

func TestSendRespectsContext(t *testing.T) {
	c := NewClient(Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.SendPayment(ctx, "lnbc500u1pjinvoice")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = c.SendOnchain(ctx, "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", 100)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNodeBalance(t *testing.T) {
	c := NewClient(Config{})
	balance, err := c.NodeBalance(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, balance, int64(0))
}
