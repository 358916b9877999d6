package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheTTL = 24 * time.Hour

// CachedProvider fronts another Provider with a Redis cache keyed by a hash
// of the input text. The same sentence gets re-embedded constantly as the
// writer's cursor moves around it, so hits are common. Redis being down or
// absent degrades to a passthrough.
type CachedProvider struct {
	inner Provider
	rdb   *redis.Client
}

func NewCachedProvider(inner Provider, rdb *redis.Client) Provider {
	if rdb == nil {
		return inner
	}
	return &CachedProvider{inner: inner, rdb: rdb}
}

func (p *CachedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(text)

	if raw, err := p.rdb.Get(ctx, key).Bytes(); err == nil {
		var vec []float32
		if err := json.Unmarshal(raw, &vec); err == nil && len(vec) > 0 {
			return vec, nil
		}
	}

	vec, err := p.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(vec); err == nil {
		// Best effort; a failed cache write must not fail the request.
		p.rdb.Set(ctx, key, raw, cacheTTL)
	}
	return vec, nil
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("emb:%x", sum)
}
