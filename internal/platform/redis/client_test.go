package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pawhub/internal/platform/config"
)

func TestNewRequiresURL(t *testing.T) {
	c, err := New(config.RedisConfig{})
	require.Error(t, err)
	assert.Nil(t, c)
}

func TestNewInvalidURL(t *testing.T) {
	_, err := New(config.RedisConfig{URL: "://nope"})
	assert.ErrorContains(t, err, "parse url")
}

func TestNewUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := New(config.RedisConfig{URL: "redis://" + addr})
	assert.ErrorContains(t, err, "ping")
}

func TestNewAndHealth(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := New(config.RedisConfig{URL: "redis://" + mr.Addr(), PoolSize: 2})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.Equal(t, 2, c.Options().PoolSize)
	assert.NoError(t, c.Health(context.Background()))

	mr.Close()
	assert.Error(t, c.Health(context.Background()))
}

func TestPoolCollector(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := New(config.RedisConfig{URL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Set(context.Background(), "vid:1", "x", 0).Err())

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(NewPoolCollector("pawhub", c)))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	problems, err := testutil.GatherAndLint(reg)
	require.NoError(t, err)
	assert.Empty(t, problems)
}
