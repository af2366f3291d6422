package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(userID uint, buffer int) *Client {
	return &Client{UserID: userID, Send: make(chan []byte, buffer)}
}

func TestHubPublishReachesAllClients(t *testing.T) {
	hub := NewHub()
	a := newTestClient(1, 8)
	b := newTestClient(2, 8)
	hub.Register(a)
	hub.Register(b)
	assert.Equal(t, 2, hub.ClientCount())

	hub.Publish("tip-received", map[string]interface{}{"amount": 300, "from": "satoshi"})

	for _, c := range []*Client{a, b} {
		select {
		case raw := <-c.Send:
			var msg struct {
				Type string                 `json:"type"`
				Data map[string]interface{} `json:"data"`
			}
			require.NoError(t, json.Unmarshal(raw, &msg))
			assert.Equal(t, "tip-received", msg.Type)
			assert.Equal(t, float64(300), msg.Data["amount"])
		default:
			t.Fatalf("client %d received nothing", c.UserID)
		}
	}
}

func TestHubSkipsSlowConsumers(t *testing.T) {
	hub := NewHub()
	slow := newTestClient(1, 1)
	hub.Register(slow)

	// Fill the buffer; the next publish must drop rather than block.
	hub.Publish("chat-message", "first")
	hub.Publish("chat-message", "second")

	assert.Len(t, slow.Send, 1)
}

func TestClientCloseUnregisters(t *testing.T) {
	hub := NewHub()
	c := newTestClient(7, 1)
	hub.Register(c)
	require.Equal(t, 1, hub.ClientCount())

	c.Close()
	assert.Equal(t, 0, hub.ClientCount())

	// Double close is safe.
	c.Close()

	// Publishing after close must not panic on the closed channel.
	hub.Publish("tip-received", "payload")
}
