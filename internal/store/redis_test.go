package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"catalyst-trader/internal/service"
)

func setupRedis(t *testing.T) (*RedisStore, func()) {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("failed to get redis endpoint: %v", err)
	}

	s, err := NewRedisStore(ctx, service.RedisConfig{Addr: endpoint, TTL: time.Minute})
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}

	return s, func() {
		s.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Errorf("failed to terminate container: %v", err)
		}
	}
}

func TestRedisStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	s, cleanup := setupRedis(t)
	defer cleanup()
	ctx := context.Background()

	t.Run("unseen then seen", func(t *testing.T) {
		seen, err := s.Seen(ctx, "abc")
		require.NoError(t, err)
		assert.False(t, seen)

		require.NoError(t, s.Save(ctx, "abc"))
		seen, err = s.Seen(ctx, "abc")
		require.NoError(t, err)
		assert.True(t, seen)
	})

	t.Run("key has ttl", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, "ttl"))
		ttl, err := s.client.TTL(ctx, KeyPrefix+"ttl").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
		assert.LessOrEqual(t, ttl, time.Minute)
	})
}
