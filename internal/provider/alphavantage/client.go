package alphavantage

import (
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

const (
	baseURL = "https://www.alphavantage.co/query"
	name    = "AlphaVantage"

	// maxBodyBytes caps how much of a response body is read.
	maxBodyBytes = 1 << 20
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=alphavantage_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches GLOBAL_QUOTE payloads from the Alpha Vantage API.
type Client struct {
	// baseURL is the query endpoint.
	baseURL string
	// httpClient performs the requests.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
	// query contains parameters sent with each request, including the API key.
	query url.Values
}

// Option is a configuration option for the Alpha Vantage client.
type Option func(*Client)

// WithBaseURL sets the query endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) Option {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// New creates a client authenticated with key. Alpha Vantage accepts "demo" for MSFT.
func New(key string, options ...Option) (*Client, error) {
	if key == "" {
		return nil, errors.New("alphavantage: api key is required")
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		query:      url.Values{},
	}
	c.query.Set("apikey", key)
	for _, option := range options {
		option(c)
	}
	return c, nil
}

func (c *Client) Name() string { return name }
