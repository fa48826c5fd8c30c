package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
	"stockcard/internal/provider"
)

// Limited wraps a Fetcher and waits for a token before each request.
// A canceled context while waiting returns the context error; nothing is retried.
type Limited struct {
	F provider.Fetcher
	L *rate.Limiter
}

func (l *Limited) Name() string { return l.F.Name() }

func (l *Limited) FetchQuote(ctx context.Context, symbol string) ([]byte, error) {
	if l.L != nil {
		if err := l.L.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return l.F.FetchQuote(ctx, symbol)
}
