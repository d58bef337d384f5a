package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"skillbridge/internal/ctxdata"
	"skillbridge/internal/utils"
	"time"
)

type rawResponse struct {
	status  int
	body    []byte
	cookies []*http.Cookie
}

// call describes one upstream request. route is the path template used for
// metrics; path is the concrete path.
type call struct {
	method string
	route  string
	path   string
	query  url.Values
	body   any
}

func (c *Client) do(ctx context.Context, cl call) (*rawResponse, error) {
	attempt := func() (*rawResponse, error) {
		return c.roundTrip(ctx, cl)
	}

	// Only GETs are safe to repeat. Mutations are sent exactly once.
	maxRetries := 1
	if cl.method == http.MethodGet {
		maxRetries = c.maxRetries
	}

	if c.breaker != nil {
		return utils.RetryWithCircuitBreaker(ctx, c.breaker, maxRetries, c.retryDelay, attempt)
	}
	return utils.RetryWithBackoff(ctx, maxRetries, c.retryDelay, attempt)
}

func (c *Client) roundTrip(ctx context.Context, cl call) (resp *rawResponse, err error) {
	start := time.Now()
	defer func() {
		if c.observe == nil {
			return
		}
		status := 0
		if resp != nil {
			status = resp.status
		} else if apiErr, ok := AsError(err); ok {
			status = apiErr.StatusCode
		}
		c.observe(cl.method, cl.route, status, time.Since(start))
	}()

	reqURL := c.baseURL + cl.path
	if len(cl.query) > 0 {
		reqURL += "?" + cl.query.Encode()
	}

	var bodyReader io.Reader
	if cl.body != nil {
		bodyBytes, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, reqURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set(headerAccept, contentTypeJSON)
	req.Header.Set(headerUserAgent, clientUserAgent)
	if cl.body != nil {
		req.Header.Set(headerContentType, contentTypeJSON)
	}
	if cookie, ok := ctxdata.GetCookieHeader(ctx); ok {
		req.Header.Set(headerCookie, cookie)
	}
	if traceID, ok := ctxdata.GetTraceID(ctx); ok {
		req.Header.Set(headerTraceID, traceID)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, parseError(httpResp.StatusCode, respBody)
	}

	return &rawResponse{
		status:  httpResp.StatusCode,
		body:    respBody,
		cookies: httpResp.Cookies(),
	}, nil
}

func (c *Client) doJSON(ctx context.Context, cl call, result any) error {
	resp, err := c.do(ctx, cl)
	if err != nil {
		return err
	}
	if result != nil && len(resp.body) > 0 {
		if err := json.Unmarshal(resp.body, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// getData unwraps the {"data": ...} envelope used by most endpoints.
func getData[T any](ctx context.Context, c *Client, cl call) (*T, error) {
	var env envelope[T]
	if err := c.doJSON(ctx, cl, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, ErrEmptyEnvelope
	}
	return env.Data, nil
}
