package alphavantage

import (
	"context"
	"io"
	"maps"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"stockcard/internal/logger"
	"stockcard/internal/provider"
)

// FetchQuote performs GET <baseURL>?function=GLOBAL_QUOTE&symbol=<symbol>&apikey=<key>
// and returns the response body. Every failure is a *provider.NetworkError.
func (c *Client) FetchQuote(ctx context.Context, symbol string) ([]byte, error) {
	query := maps.Clone(c.query)
	query.Set("function", "GLOBAL_QUOTE")
	query.Set("symbol", symbol)

	fail := func(status int, err error) error {
		// baseURL only: the query carries the API key
		return &provider.NetworkError{Op: http.MethodGet, URL: c.baseURL, StatusCode: status, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), http.NoBody)
	if err != nil {
		return nil, fail(0, errors.Wrap(err, "creating request"))
	}
	req.Header = c.header.Clone()
	req.Header.Set("Accept", "application/json")

	logger.FromContext(ctx).Debug("querying alpha vantage", "symbol", symbol)
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fail(0, errors.Wrap(err, "performing request"))
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 2<<10))
		return nil, fail(res.StatusCode, errors.Errorf("response: %s", strings.TrimSpace(string(snippet))))
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fail(0, errors.Wrap(err, "reading response body"))
	}
	if len(body) > maxBodyBytes {
		return nil, fail(0, errors.Errorf("response body exceeds %d bytes", maxBodyBytes))
	}
	return body, nil
}
