package metrics

import (
	"context"
	"errors"
)

// PostMetrics are the raw engagement counters for a single content post.
type PostMetrics struct {
	Views    int64 `json:"views"`
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
	Shares   int64 `json:"shares"`
}

// Provider fetches live metrics for a post URL. Failures are transient from
// the engine's perspective; callers fall back to last known values.
type Provider interface {
	FetchPostMetrics(ctx context.Context, postURL string) (*PostMetrics, error)
}

// ChainProvider tries each provider in order and returns the first success.
type ChainProvider []Provider

func (c ChainProvider) FetchPostMetrics(ctx context.Context, postURL string) (*PostMetrics, error) {
	var lastErr error
	for _, p := range c {
		m, err := p.FetchPostMetrics(ctx, postURL)
		if err == nil {
			return m, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no metrics providers configured")
	}
	return nil, lastErr
}
