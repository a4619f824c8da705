package bus_test

import (
	"context"
	"testing"
	"time"

	"codeberg.org/mutker/homedash/internal/bus"
	"codeberg.org/mutker/homedash/internal/errors"
	"codeberg.org/mutker/homedash/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidatesConfig(t *testing.T) {
	_, err := bus.New(bus.Config{ClientID: "homedash"}, logger.Default())
	assert.True(t, errors.HasCode(err, bus.ErrInvalidConfig))

	_, err = bus.New(bus.Config{Broker: "tcp://localhost:1883"}, logger.Default())
	assert.True(t, errors.HasCode(err, bus.ErrInvalidConfig))
}

func TestPublishWhileDisconnected(t *testing.T) {
	c, err := bus.New(bus.Config{
		Broker:   "tcp://127.0.0.1:1",
		ClientID: "homedash-test",
	}, logger.Default())
	require.NoError(t, err)

	assert.False(t, c.IsConnected())

	err = c.Publish(context.Background(), "home/dashboard/led1", "on")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, bus.ErrNotConnected))
}

func TestSubscribeBeforeConnect(t *testing.T) {
	c, err := bus.New(bus.Config{
		Broker:   "tcp://127.0.0.1:1",
		ClientID: "homedash-test",
	}, logger.Default())
	require.NoError(t, err)

	assert.NoError(t, c.Subscribe("home/dashboard/sensores", func(string, []byte) {}))
	c.Close()
}

func TestConnectHonoursContext(t *testing.T) {
	c, err := bus.New(bus.Config{
		Broker:         "tcp://127.0.0.1:1",
		ClientID:       "homedash-test",
		ConnectTimeout: time.Minute,
	}, logger.Default())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err = c.Connect(ctx)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, bus.ErrConnectFailed))
	c.Close()
}
