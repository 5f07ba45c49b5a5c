package db

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finance-tracker/period-engine/config"
)

func TestNewRedisClient(t *testing.T) {
	t.Run("disabled without url", func(t *testing.T) {
		client, err := NewRedisClient(&config.RedisConfig{})
		require.NoError(t, err)
		assert.Nil(t, client)
	})

	t.Run("connects to a running server", func(t *testing.T) {
		server := miniredis.RunT(t)

		client, err := NewRedisClient(&config.RedisConfig{URL: "redis://" + server.Addr()})
		require.NoError(t, err)
		t.Cleanup(func() { _ = client.Close() })

		assert.Equal(t, server.Addr(), client.Options().Addr)
	})

	t.Run("rejects a malformed url", func(t *testing.T) {
		_, err := NewRedisClient(&config.RedisConfig{URL: "not a url"})
		assert.Error(t, err)
	})
}
