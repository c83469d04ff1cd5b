package redis_client

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectClient(t *testing.T) {
	server := miniredis.RunT(t)

	require.NoError(t, ConnectClient(redis.NewClient(&redis.Options{Addr: server.Addr()})))
	assert.NotNil(t, Client)
	require.NotNil(t, QueueConnection)

	queue, err := QueueConnection.OpenQueue("render-test")
	require.NoError(t, err)
	require.NoError(t, queue.Publish("hello"))

	count, err := queue.ReadyCount()
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestConnectClientUnreachable(t *testing.T) {
	server := miniredis.RunT(t)
	addr := server.Addr()
	server.Close()

	assert.Error(t, ConnectClient(redis.NewClient(&redis.Options{Addr: addr})))
}

func TestConnectBadDatabase(t *testing.T) {
	t.Setenv("FLEETTRACK_REDIS_DATABASE", "first")

	assert.ErrorContains(t, Connect(), "FLEETTRACK_REDIS_DATABASE")
}
