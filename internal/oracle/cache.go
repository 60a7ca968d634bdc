package oracle

import (
	"context"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"

	"github.com/coffeeisafruit/jv-matcher/internal/logger"
)

// CachingOracle memoizes a wrapped Similarity by (text_a, text_b,
// normalized) in Redis, per §5: "memoized by (text_a, text_b, normalized)
// to bound latency and cost." Keys are content-addressed with blake2b
// rather than storing raw text, so cache keys stay a fixed, short size
// regardless of profile free-text length.
type CachingOracle struct {
	rdb    *redis.Client
	inner  Similarity
	ttl    time.Duration
	prefix string
	log    logger.Logger
	onHit  func()
}

// NewCaching wraps inner with a Redis-backed memoization layer.
func NewCaching(rdb *redis.Client, inner Similarity, ttl time.Duration, log logger.Logger) *CachingOracle {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &CachingOracle{rdb: rdb, inner: inner, ttl: ttl, prefix: "oracle:sim:", log: log}
}

// OnHit registers a callback fired once per cache hit, so callers can bump
// a metrics counter without this package depending on internal/metrics.
func (c *CachingOracle) OnHit(fn func()) { c.onHit = fn }

// SimilarityBatch serves whatever it can from cache and forwards only the
// misses to the wrapped oracle, preserving pair order in the result.
func (c *CachingOracle) SimilarityBatch(ctx context.Context, pairs []Pair) ([]float64, error) {
	out := make([]float64, len(pairs))
	keys := make([]string, len(pairs))
	var missIdx []int
	var missPairs []Pair

	for i, p := range pairs {
		keys[i] = c.key(p)
	}

	if len(keys) > 0 {
		vals, err := c.rdb.MGet(ctx, keys...).Result()
		if err == nil {
			for i, v := range vals {
				if v == nil {
					missIdx = append(missIdx, i)
					missPairs = append(missPairs, pairs[i])
					continue
				}
				s, ok := v.(string)
				f, perr := strconv.ParseFloat(s, 64)
				if !ok || perr != nil {
					missIdx = append(missIdx, i)
					missPairs = append(missPairs, pairs[i])
					continue
				}
				out[i] = f
				if c.onHit != nil {
					c.onHit()
				}
			}
		} else {
			c.log.Warn("oracle cache: MGET failed, treating batch as all-miss", map[string]interface{}{"error": err.Error()})
			missIdx = allIndices(len(pairs))
			missPairs = pairs
		}
	}

	if len(missPairs) == 0 {
		return out, nil
	}

	resolved, err := c.inner.SimilarityBatch(ctx, missPairs)
	if err != nil {
		return nil, err
	}

	pipe := c.rdb.Pipeline()
	for j, idx := range missIdx {
		out[idx] = resolved[j]
		pipe.Set(ctx, keys[idx], strconv.FormatFloat(resolved[j], 'f', 6, 64), c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warn("oracle cache: failed to persist scores", map[string]interface{}{"error": err.Error()})
	}

	return out, nil
}

func (c *CachingOracle) key(p Pair) string {
	normA := strings.ToLower(strings.TrimSpace(p.A))
	normB := strings.ToLower(strings.TrimSpace(p.B))
	sum := blake2b.Sum256([]byte(normA + "\x00" + normB))
	return c.prefix + hex.EncodeToString(sum[:])
}

func allIndices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
