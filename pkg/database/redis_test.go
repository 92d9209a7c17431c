package database

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/mindquest/internal/config"
)

func TestNewUniversalRedisClient_Single(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewUniversalRedisClient(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestNewUniversalRedisClient_ConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.RedisConfig
	}{
		{name: "no address", cfg: config.RedisConfig{}},
		{name: "sentinel without master", cfg: config.RedisConfig{Mode: "sentinel", Addr: "localhost:26379"}},
		{name: "cluster with one node", cfg: config.RedisConfig{Mode: "cluster", Addr: "localhost:7000"}},
		{name: "unknown mode", cfg: config.RedisConfig{Mode: "ring", Addr: "localhost:6379"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewUniversalRedisClient(context.Background(), tt.cfg)
			assert.Error(t, err)
			assert.Nil(t, client)
		})
	}
}

func TestNewUniversalRedisClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	client, err := NewUniversalRedisClient(context.Background(), config.RedisConfig{Addr: addr})
	assert.Error(t, err)
	assert.Nil(t, client)
}
