package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsLightningInvoice(t *testing.T) {
	assert.True(t, IsLightningInvoice("lnbc500u1pjsomething"))
	assert.True(t, IsLightningInvoice("lntb100n1pjtestnet"))
	assert.False(t, IsLightningInvoice("bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4"))
	assert.False(t, IsLightningInvoice("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"))
	assert.False(t, IsLightningInvoice(""))
}
