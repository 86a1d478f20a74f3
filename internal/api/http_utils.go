package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// DefaultHTTPClient is a shared HTTP client with connection pooling.
// Reusing a single client avoids creating new connections for each request.
var DefaultHTTPClient = &http.Client{
	Timeout: 30 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

// DefaultUserAgent is sent with every request; GitHub rejects requests without one.
const DefaultUserAgent = "orgrepos-app"

// JSONFetcher retrieves a URL and decodes its body as JSON.
type JSONFetcher interface {
	GetJSON(ctx context.Context, url string) (any, error)
}

// HTTPFetcher is the JSONFetcher backed by a real HTTP client.
type HTTPFetcher struct {
	// Client performs the requests. DefaultHTTPClient is used when nil.
	Client *http.Client
	// UserAgent overrides DefaultUserAgent when set.
	UserAgent string
}

// NewHTTPFetcher returns a fetcher using DefaultHTTPClient.
// When token is non-empty, requests are authenticated with it as an OAuth2
// bearer token, which raises GitHub's rate limit from 60 to 5000 requests/hour.
func NewHTTPFetcher(token string) *HTTPFetcher {
	return &HTTPFetcher{Client: authenticatedClient(DefaultHTTPClient, token)}
}

func authenticatedClient(base *http.Client, token string) *http.Client {
	if token == "" {
		return base
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
}

// GetJSON issues a GET for url with the package default fetcher.
func GetJSON(ctx context.Context, url string) (any, error) {
	return (&HTTPFetcher{}).GetJSON(ctx, url)
}

// GetJSON performs a single GET request and decodes the response body into a
// generic JSON value (map[string]any, []any, string, float64, bool or nil).
//
// Non-2xx responses are returned as errors carrying the status and body.
func (f *HTTPFetcher) GetJSON(ctx context.Context, url string) (any, error) {
	client := f.Client
	if client == nil {
		client = DefaultHTTPClient
	}
	userAgent := f.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Add("Accept", "application/vnd.github.v3+json")
	req.Header.Add("User-Agent", userAgent)

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	log.Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("GET")

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return payload, nil
}

// Ensure HTTPFetcher implements JSONFetcher
var _ JSONFetcher = (*HTTPFetcher)(nil)
