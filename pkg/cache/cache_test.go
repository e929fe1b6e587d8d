package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNoop(t *testing.T) {
	c := NewNoop()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Bump(ctx, "gen"))
	v, err := c.Version(ctx, "gen")
	require.NoError(t, err)
	assert.Zero(t, v)
	assert.NoError(t, c.Close())
}

func TestNewRedis_Unreachable(t *testing.T) {
	_, err := NewRedis("127.0.0.1:1", "", 0, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "127.0.0.1:1")
}
