package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

var _ Interface = &RestClient{}

type RestClient struct {
	baseURL     string
	headers     map[string]string
	httpClient  *http.Client
	tokenSource oauth2.TokenSource
}

type Option func(*RestClient)

// WithTokenSource attaches a bearer token from ts to every request.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *RestClient) {
		c.tokenSource = ts
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *RestClient) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

func NewRestClient(baseURL string, headers map[string]string, opts ...Option) *RestClient {
	c := &RestClient{
		baseURL:    baseURL,
		headers:    headers,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RestClient) BaseURL() string {
	return c.baseURL
}

func (c *RestClient) setHeaders(req *http.Request, headers map[string]string) error {
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	if c.tokenSource != nil {
		tok, err := c.tokenSource.Token()
		if err != nil {
			return fmt.Errorf("fetch access token: %w", err)
		}
		tok.SetAuthHeader(req)
	}
	return nil
}

func (c *RestClient) doRequest(request *http.Request) ([]byte, int, error) {
	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, 0, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	return body, response.StatusCode, err
}

func (c *RestClient) send(ctx context.Context, method, endpoint string, body any, headers map[string]string) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, 0, err
		}
		reader = bytes.NewReader(jsonBody)
	}
	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, 0, err
	}
	if err = c.setHeaders(request, headers); err != nil {
		return nil, 0, err
	}
	return c.doRequest(request)
}

func (c *RestClient) Post(ctx context.Context, endpoint string, body any, headers map[string]string) ([]byte, int, error) {
	return c.send(ctx, http.MethodPost, endpoint, body, headers)
}
