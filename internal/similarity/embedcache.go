package similarity

import (
	"context"
	"sync"

	"github.com/pranavkharat/nexus-data-governance-catalog/internal/models"
)

// CachedColumnEmbedder memoizes column-name embeddings keyed by normalized
// name. The same names recur constantly across an N×M sweep, so caching
// avoids recomputing identical embeddings without changing any score.
// Safe for concurrent use.
type CachedColumnEmbedder struct {
	inner ColumnEmbedder

	mu    sync.RWMutex
	cache map[string][]float32
}

// NewCachedColumnEmbedder wraps an embedder with memoization.
func NewCachedColumnEmbedder(inner ColumnEmbedder) *CachedColumnEmbedder {
	return &CachedColumnEmbedder{
		inner: inner,
		cache: make(map[string][]float32),
	}
}

// EmbedColumn returns the cached embedding for the normalized column name,
// computing and storing it on first use. Failures are not cached so a
// transient provider error can recover on retry.
func (c *CachedColumnEmbedder) EmbedColumn(ctx context.Context, name string) ([]float32, error) {
	key := models.NormalizeColumnName(name)

	c.mu.RLock()
	emb, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return emb, nil
	}

	emb, err := c.inner.EmbedColumn(ctx, name)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[key] = emb
	c.mu.Unlock()
	return emb, nil
}

// Size returns the number of cached embeddings.
func (c *CachedColumnEmbedder) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}
