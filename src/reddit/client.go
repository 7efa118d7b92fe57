// Package reddit provides functionality for pulling wallpapers from Reddit
package reddit

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"git.asdf.cafe/abs3nt/wallpaper_changer/constants"
	"git.asdf.cafe/abs3nt/wallpaper_changer/errors"
)

// Client talks to the public Reddit JSON endpoints. Every request is a single
// attempt bounded by the HTTP client timeout.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	logger    *slog.Logger
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithBaseURL points the client at another host, e.g. a test server
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient creates a client that identifies itself with userAgent
func NewClient(userAgent string, logger *slog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   constants.RedditBaseURL,
		userAgent: userAgent,
		http: &http.Client{
			Timeout: constants.RequestTimeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        constants.MaxIdleConns,
				MaxIdleConnsPerHost: constants.MaxIdleConnsPerHost,
				IdleConnTimeout:     constants.IdleConnTimeout,
			},
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RandomPost fetches one random post from the subreddit's listing
func (c *Client) RandomPost(ctx context.Context, subreddit string) (Post, error) {
	endpoint := fmt.Sprintf("%s/r/%s/random.json", c.baseURL, url.PathEscape(subreddit))
	c.logger.Debug("Making API request to reddit", "endpoint", endpoint)

	body, err := c.get(ctx, endpoint, constants.MaxDownloadBytes)
	if err != nil {
		return Post{}, err
	}

	post, err := ParsePost(body)
	if err != nil {
		return Post{}, err
	}
	c.logger.Debug("API request successful", "post_id", post.ID, "url", post.URL)
	return post, nil
}

// Download returns the body served at imageURL
func (c *Client) Download(ctx context.Context, imageURL string) ([]byte, error) {
	c.logger.Debug("Downloading image", "url", imageURL)

	data, err := c.get(ctx, imageURL, constants.MaxDownloadBytes)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Download completed", "url", imageURL, "bytes_written", len(data))
	return data, nil
}

func (c *Client) get(ctx context.Context, target string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewAPIError(target, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: response larger than %d bytes", errors.ErrInvalidResponse, limit)
	}
	return data, nil
}
