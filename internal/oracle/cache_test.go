package oracle_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coffeeisafruit/jv-matcher/internal/oracle"
)

func setupRedis(t *testing.T) *redis.Client {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

type countingOracle struct {
	calls int
	score float64
}

func (c *countingOracle) SimilarityBatch(_ context.Context, pairs []oracle.Pair) ([]float64, error) {
	c.calls++
	out := make([]float64, len(pairs))
	for i := range pairs {
		out[i] = c.score
	}
	return out, nil
}

func TestCachingOracle_SecondCallIsServedFromCache(t *testing.T) {
	rdb := setupRedis(t)
	inner := &countingOracle{score: 0.75}
	c := oracle.NewCaching(rdb, inner, time.Hour, nil)

	pairs := []oracle.Pair{{A: "video editor", B: "video producer"}}
	first, err := c.SimilarityBatch(context.Background(), pairs)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.75}, first)
	assert.Equal(t, 1, inner.calls)

	second, err := c.SimilarityBatch(context.Background(), pairs)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.75}, second)
	assert.Equal(t, 1, inner.calls, "second call must be served from cache, not forwarded")
}

func TestCachingOracle_HitCallbackFiresOnlyOnHit(t *testing.T) {
	rdb := setupRedis(t)
	inner := &countingOracle{score: 0.5}
	c := oracle.NewCaching(rdb, inner, time.Hour, nil)
	hits := 0
	c.OnHit(func() { hits++ })

	pairs := []oracle.Pair{{A: "a", B: "b"}}
	_, err := c.SimilarityBatch(context.Background(), pairs)
	require.NoError(t, err)
	assert.Equal(t, 0, hits)

	_, err = c.SimilarityBatch(context.Background(), pairs)
	require.NoError(t, err)
	assert.Equal(t, 1, hits)
}

func TestCachingOracle_NormalizesTextBeforeKeying(t *testing.T) {
	rdb := setupRedis(t)
	inner := &countingOracle{score: 0.9}
	c := oracle.NewCaching(rdb, inner, time.Hour, nil)

	_, err := c.SimilarityBatch(context.Background(), []oracle.Pair{{A: "  Video Editor  ", B: "producer"}})
	require.NoError(t, err)
	_, err = c.SimilarityBatch(context.Background(), []oracle.Pair{{A: "video editor", B: "producer"}})
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls, "differently-cased/whitespaced text must hit the same cache key")
}

func TestCachingOracle_MixedHitAndMissOnlyForwardsMisses(t *testing.T) {
	rdb := setupRedis(t)
	inner := &countingOracle{score: 0.4}
	c := oracle.NewCaching(rdb, inner, time.Hour, nil)

	_, err := c.SimilarityBatch(context.Background(), []oracle.Pair{{A: "a", B: "b"}})
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)

	scores, err := c.SimilarityBatch(context.Background(), []oracle.Pair{{A: "a", B: "b"}, {A: "c", B: "d"}})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.4, 0.4}, scores)
	assert.Equal(t, 2, inner.calls, "only the new pair should reach the wrapped oracle")
}
