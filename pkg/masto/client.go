// Package masto is a minimal Mastodon REST API client covering the
// subset of endpoints the simulation drives: statuses, favourites,
// reblogs, relationship changes, timelines and notifications.
package masto

import (
	"context"
	"fmt"

	"resty.dev/v3"
)

type Client struct {
	client *resty.Client
}

func NewClient(baseURL string, config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig
	}

	client := resty.NewWithTransportSettings(config.TransportSettings).
		SetBaseURL(baseURL)

	for _, m := range config.RequestMiddlewares {
		client.AddRequestMiddleware(m)
	}
	for _, m := range config.ResponseMiddlewares {
		client.AddResponseMiddleware(m)
	}

	return &Client{
		client: client,
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) r(ctx context.Context, token string) *resty.Request {
	return c.client.R().
		WithContext(ctx).
		SetAuthToken(token)
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mastodon api error: status %d: %s", e.StatusCode, e.Body)
}

// Transient reports whether the failure is worth retrying: rate limits
// and server-side errors.
func (e *APIError) Transient() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

func checkResponse(res *resty.Response, err error) (*resty.Response, error) {
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, &APIError{StatusCode: res.StatusCode(), Body: res.String()}
	}
	return res, nil
}
