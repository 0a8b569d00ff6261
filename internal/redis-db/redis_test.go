package redis_db

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRedisURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected *redis.Options
		wantErr  bool
	}{
		{
			name: "simple docker style",
			url:  "redis:6379",
			expected: &redis.Options{
				Addr: "redis:6379",
			},
		},
		{
			name: "redis url with password",
			url:  "redis://:password123@localhost:6379",
			expected: &redis.Options{
				Addr:     "localhost:6379",
				Password: "password123",
			},
		},
		{
			name:    "unsupported scheme",
			url:     "http://localhost:6379",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRedisURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected.Addr, got.Addr)
			assert.Equal(t, tt.expected.Password, got.Password)
		})
	}
}

func TestNewRedisClient(t *testing.T) {
	server := miniredis.RunT(t)

	client, err := NewRedisClient([]string{server.Addr()})
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, client.Client().Set(ctx, "tracsync:probe", "1", 0).Err())
	value, err := server.Get("tracsync:probe")
	require.NoError(t, err)
	assert.Equal(t, "1", value)
}

func TestNewRedisClientURL(t *testing.T) {
	server := miniredis.RunT(t)

	client, err := NewRedisClient([]string{"redis://" + server.Addr()})
	require.NoError(t, err)
	assert.NotNil(t, client.Client())
	assert.NoError(t, client.Close())
}

func TestNewRedisClientErrors(t *testing.T) {
	_, err := NewRedisClient([]string{})
	assert.Error(t, err)

	server := miniredis.RunT(t)
	addr := server.Addr()
	server.Close()

	_, err = NewRedisClient([]string{addr})
	assert.Error(t, err)
}
