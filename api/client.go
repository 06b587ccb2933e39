// Package api is the client for the external library REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Client sends requests to the library API, attaching the bearer
// credential from its TokenSource whenever one is available.
type Client struct {
	baseURL    *url.URL
	base       http.RoundTripper
	httpClient *http.Client
}

type Option func(*Client)

// WithTransport sets the round tripper beneath the bearer transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.base = rt
	}
}

func New(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("api: invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api: invalid base url %q: scheme must be http or https", baseURL)
	}

	c := &Client{baseURL: u, base: http.DefaultTransport}
	for _, opt := range opts {
		opt(c)
	}
	c.httpClient = &http.Client{
		Transport: &bearerTransport{base: c.base, tokens: tokens},
	}
	return c, nil
}

// BaseURL returns the address requests are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// WithToken returns a client that sends token on every request regardless
// of what is stored.
func (c *Client) WithToken(token string) *Client {
	return &Client{
		baseURL: c.baseURL,
		base:    c.base,
		httpClient: &http.Client{
			Transport: &bearerTransport{base: c.base, tokens: StaticToken(token)},
		},
	}
}

// Do sends in as the JSON body (when non-nil) and decodes a 2xx response
// into out (when non-nil). Non-2xx responses are returned as *Error.
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("api: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), body)
	if err != nil {
		return fmt.Errorf("api: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("api: read %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{StatusCode: resp.StatusCode, Detail: parseDetail(data)}
	}
	if out == nil {
		return nil
	}
	if err := decode(data, out); err != nil {
		return fmt.Errorf("api: decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) resolve(path string) string {
	return c.baseURL.String() + "/" + strings.TrimLeft(path, "/")
}

// decode unmarshals data into out, unwrapping a top-level {"data": ...}
// envelope if the API sent one.
func decode(data []byte, out any) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	if data[0] == '{' {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(data, &envelope); err == nil {
			if inner, ok := envelope["data"]; ok {
				data = inner
			}
		}
	}
	return json.Unmarshal(data, out)
}

func get[T any](ctx context.Context, c *Client, path string) (T, error) {
	var v T
	err := c.Do(ctx, http.MethodGet, path, nil, &v)
	return v, err
}

func post[T any](ctx context.Context, c *Client, path string, in any) (T, error) {
	var v T
	err := c.Do(ctx, http.MethodPost, path, in, &v)
	return v, err
}
