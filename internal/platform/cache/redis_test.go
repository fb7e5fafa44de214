package cache

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmptyAddrDisablesCache(t *testing.T) {
	client, err := New(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewPingsServer(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := New(context.Background(), mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	assert.Equal(t, "PONG", client.Ping(context.Background()).Val())
}

func TestNewFailsWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err := New(context.Background(), addr)
	assert.Error(t, err)
}

func TestNewAcceptsRedisURL(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := New(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	assert.Equal(t, mr.Addr(), client.Options().Addr)
}

func TestOptionsRejectsBadURL(t *testing.T) {
	_, err := Options("redis://localhost:6379/notadb")
	assert.Error(t, err)
}

func TestQueueOptionsFromURL(t *testing.T) {
	mr := miniredis.RunT(t)

	opt, err := QueueOptions("redis://user:secret@" + mr.Addr() + "/3")
	require.NoError(t, err)
	assert.Equal(t, mr.Addr(), opt.Addr)
	assert.Equal(t, "user", opt.Username)
	assert.Equal(t, "secret", opt.Password)
	assert.Equal(t, 3, opt.DB)

	opt, err = QueueOptions("redis://" + mr.Addr() + "/0")
	require.NoError(t, err)
	client, ok := opt.MakeRedisClient().(redis.UniversalClient)
	require.True(t, ok)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())

	inspector := asynq.NewInspector(opt)
	t.Cleanup(func() { _ = inspector.Close() })
	queues, err := inspector.Queues()
	require.NoError(t, err)
	assert.Empty(t, queues)
}

func TestQueueOptionsPlainAddr(t *testing.T) {
	opt, err := QueueOptions("localhost:6379")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opt.Addr)

	_, err = QueueOptions(" ")
	assert.Error(t, err)
}
