package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	pageTokenParam = "pageToken"

	retryDelay = 500 * time.Millisecond
)

// Client queries endpoints resolved from a discovery catalog. Retries are
// the client's business entirely; callers only pick the count.
type Client struct {
	catalog    Catalog
	httpClient *http.Client
}

// Request identifies one endpoint invocation.
type Request struct {
	Service  string
	Version  string
	Endpoint string
	Params   map[string]string
	Paginate bool
	Retries  int
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	catalog, err := LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	httpClient, err := cfg.httpClient(ctx)
	if err != nil {
		return nil, err
	}
	return &Client{catalog: catalog, httpClient: httpClient}, nil
}

func NewClientWithCatalog(catalog Catalog, httpClient *http.Client) (*Client, error) {
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{catalog: catalog, httpClient: httpClient}, nil
}

// Query invokes the endpoint and returns the response document. With
// Paginate set, every page is fetched by following nextPageToken and the
// result is a JSON array of page objects instead of a single object.
func (c *Client) Query(ctx context.Context, req Request) (json.RawMessage, error) {
	resolved, err := c.catalog.Resolve(req.Service, req.Version, req.Endpoint)
	if err != nil {
		return nil, err
	}

	if !req.Paginate {
		return c.fetch(ctx, resolved, req.Params, req.Retries)
	}

	params := make(map[string]string, len(req.Params)+1)
	for k, v := range req.Params {
		params[k] = v
	}
	var pages []json.RawMessage
	for {
		page, err := c.fetch(ctx, resolved, params, req.Retries)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", len(pages)+1, err)
		}
		pages = append(pages, page)

		var envelope struct {
			NextPageToken string `json:"nextPageToken"`
		}
		if err := json.Unmarshal(page, &envelope); err != nil {
			return nil, fmt.Errorf("page %d is not an object: %w", len(pages), err)
		}
		if envelope.NextPageToken == "" {
			break
		}
		params[pageTokenParam] = envelope.NextPageToken
	}
	return json.Marshal(pages)
}

func (c *Client) fetch(ctx context.Context, resolved Resolved, params map[string]string, retries int) (json.RawMessage, error) {
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}
		body, err := c.do(ctx, resolved, params)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("after %d attempts: %w", retries+1, lastErr)
}

func (c *Client) do(ctx context.Context, resolved Resolved, params map[string]string) (json.RawMessage, error) {
	var httpReq *http.Request
	var err error

	switch resolved.Method {
	case http.MethodGet:
		httpReq, err = http.NewRequestWithContext(ctx, http.MethodGet, resolved.URL, nil)
		if err == nil {
			q := url.Values{}
			for k, v := range params {
				q.Set(k, v)
			}
			httpReq.URL.RawQuery = q.Encode()
		}
	case http.MethodPost:
		var payload []byte
		payload, err = json.Marshal(params)
		if err == nil {
			httpReq, err = http.NewRequestWithContext(ctx, http.MethodPost, resolved.URL, bytes.NewReader(payload))
			if err == nil {
				httpReq.Header.Set("Content-Type", "application/json")
			}
		}
	default:
		return nil, fmt.Errorf("unsupported method %q", resolved.Method)
	}
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &transportError{err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &transportError{err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode >= 500 {
		return nil, &serverError{status: resp.StatusCode, body: truncate(body)}
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%s %s: status %d: %s", resolved.Method, resolved.URL, resp.StatusCode, truncate(body))
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%s %s: response is not valid JSON", resolved.Method, resolved.URL)
	}
	return json.RawMessage(body), nil
}

type transportError struct{ err error }

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

type serverError struct {
	status int
	body   string
}

func (e *serverError) Error() string {
	return fmt.Sprintf("server error: status %d: %s", e.status, e.body)
}

// retryable: transport failures and 5xx responses are worth another attempt,
// 4xx responses are not.
func retryable(err error) bool {
	switch err.(type) {
	case *transportError, *serverError:
		return true
	default:
		return false
	}
}

func truncate(body []byte) string {
	const max = 256
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
