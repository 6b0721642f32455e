package embeddings

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimited wraps an Embedder with a token bucket that allows at most rpm
// provider calls per minute. Callers block until a token is available or
// their context ends; nothing is retried.
type RateLimited struct {
	embedder Embedder
	limiter  *rate.Limiter
}

// NewRateLimited wraps the given embedder. rpm <= 0 returns it unchanged.
func NewRateLimited(embedder Embedder, rpm int) Embedder {
	if rpm <= 0 {
		return embedder
	}
	return &RateLimited{
		embedder: embedder,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm),
	}
}

func (r *RateLimited) Name() string {
	return r.embedder.Name()
}

func (r *RateLimited) Dimensions() int {
	return r.embedder.Dimensions()
}

func (r *RateLimited) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.embedder.Embed(ctx, texts)
}
