package messagebroker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNatsClient_PublishWithoutConnection(t *testing.T) {
	var c *NatsClient
	err := c.Publish(context.Background(), "promo.escalations", []byte("{}"))
	assert.ErrorIs(t, err, ErrNotConnected)

	c = &NatsClient{}
	err = c.Publish(context.Background(), "promo.escalations", []byte("{}"))
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestNatsClient_CloseIsSafeWithoutConnection(t *testing.T) {
	var c *NatsClient
	assert.NotPanics(t, func() { c.Close() })
	assert.NotPanics(t, func() { (&NatsClient{}).Close() })
}
