package cache

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wildcare/compliance-engine/internal/readiness"
)

// unreachableAddr returns an address nothing is listening on
func unreachableAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestReportKey(t *testing.T) {
	assert.Equal(t, "readiness:org-1", reportKey("org-1"))
}

func TestRedisCacheUnavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        unreachableAddr(t),
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := NewRedisCache(client, time.Minute, zap.NewNop())
	ctx := context.Background()

	_, err := c.GetReport(ctx, "org-1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)

	assert.Error(t, c.SetReport(ctx, "org-1", &readiness.Report{OverallScore: 90}))
	assert.Error(t, c.Invalidate(ctx, "org-1"))
	assert.Error(t, c.Ping(ctx))
}

func TestNoop(t *testing.T) {
	var c ReportCache = Noop{}
	ctx := context.Background()

	require.NoError(t, c.SetReport(ctx, "org-1", &readiness.Report{}))
	_, err := c.GetReport(ctx, "org-1")
	assert.ErrorIs(t, err, ErrMiss)
	assert.NoError(t, c.Invalidate(ctx, "org-1"))
}
