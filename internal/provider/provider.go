package provider

import (
	"context"
	"errors"
	"fmt"
)

// Fetcher retrieves the raw quote payload for one symbol.
// The body is returned untouched; normalization happens in package quote.
//
//go:generate mockgen -package=pipeline_test -destination=../pipeline/mock_fetcher_test.go -source=provider.go Fetcher
type Fetcher interface {
	Name() string
	FetchQuote(ctx context.Context, symbol string) ([]byte, error)
}

// ErrNetwork matches every NetworkError.
var ErrNetwork = errors.New("network error")

// NetworkError reports a failed request or a non-success HTTP status.
type NetworkError struct {
	Op         string
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: unexpected status %d: %v", e.Op, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }
