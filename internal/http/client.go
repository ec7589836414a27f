// Package http is the gateway's single-attempt JSON transport.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/kaigouthro/nimbus/internal/constants"
	"github.com/kaigouthro/nimbus/pkg/openstack"
)

// Request is one upstream call. URL is absolute; the token is per call.
type Request struct {
	Service string
	Method  string
	URL     string
	Token   string
	Query   url.Values
	Body    any
	Headers map[string]string
}

// Response is a successful upstream reply. NoContent is set for 204 and
// empty bodies, in which case Body is nil.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	NoContent  bool
}

// Client sends requests exactly once.
type Client struct {
	client       *retryablehttp.Client
	logger       openstack.Logger
	debug        bool
	userAgent    string
	interceptors *openstack.InterceptorChain
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger openstack.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDebug logs every request and response.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithTimeout bounds every round trip.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.client.HTTPClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.client.HTTPClient = httpClient
		}
	}
}

// WithInterceptors runs chain around every request.
func WithInterceptors(chain *openstack.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// NewClient creates a transport. Retries are disabled: a failed call is
// reported, never repeated.
func NewClient(opts ...Option) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 0
	rc.CheckRetry = neverRetry
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	c := &Client{
		client:    rc,
		logger:    openstack.NopLogger{},
		userAgent: constants.DefaultUserAgent,
	}

	for _, opt := range opts {
		opt(c)
	}

	rc.Logger = &leveledLogger{logger: c.logger}

	return c
}

func neverRetry(ctx context.Context, _ *http.Response, _ error) (bool, error) {
	return false, ctx.Err()
}

// Do sends the request once and decodes failures into gateway errors.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if req.Token == "" {
		return nil, openstack.ErrTokenRequired
	}

	fullURL, err := withQuery(req.URL, req.Query)
	if err != nil {
		return nil, c.transportError(req, err)
	}

	var body []byte
	if req.Body != nil {
		body, err = json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
	}

	intercepted := &openstack.Request{
		Service: req.Service,
		Method:  req.Method,
		URL:     fullURL,
		Headers: c.headers(req),
	}

	err = c.interceptors.ExecuteRequestInterceptors(ctx, intercepted)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, intercepted, body)

	observed := &openstack.Response{Error: err}
	if resp != nil {
		observed.StatusCode = resp.StatusCode
		observed.Headers = resp.Headers
		observed.Body = resp.Body
	}

	if icErr := c.interceptors.ExecuteResponseInterceptors(ctx, intercepted, observed); icErr != nil && err == nil {
		err = icErr
	}

	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *Client) send(ctx context.Context, req *openstack.Request, body []byte) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, req.URL, reader)
	if err != nil {
		return nil, c.gatewayError(req, 0, err.Error(), err)
	}

	httpReq.Header = req.Headers

	if c.debug {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    req.URL,
			"body":   string(body),
		})
	}

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		if httpResp != nil {
			httpResp.Body.Close()
		}

		return nil, c.gatewayError(req, 0, err.Error(), err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, c.gatewayError(req, 0, "reading response body: "+err.Error(), err)
	}

	if c.debug {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status_code": httpResp.StatusCode,
			"url":         req.URL,
			"body":        string(respBody),
		})
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		gwErr := c.gatewayError(req, httpResp.StatusCode, extractMessage(httpResp.StatusCode, respBody), nil)
		if httpResp.StatusCode == http.StatusUnauthorized {
			return resp, &openstack.AuthError{Gateway: gwErr, Hint: openstack.AuthHint}
		}

		return resp, gwErr
	}

	if httpResp.StatusCode == http.StatusNoContent || httpResp.ContentLength == 0 {
		resp.Body = nil
		resp.NoContent = true
	}

	return resp, nil
}

func (c *Client) headers(req *Request) http.Header {
	headers := make(http.Header)
	headers.Set("X-Auth-Token", req.Token)
	headers.Set("Accept", "application/json")
	headers.Set("Content-Type", "application/json")
	headers.Set("User-Agent", c.userAgent)

	for key, value := range req.Headers {
		headers.Set(key, value)
	}

	return headers
}

func (c *Client) transportError(req *Request, err error) error {
	return &openstack.GatewayError{Method: req.Method, URL: req.URL, Message: err.Error(), Err: err}
}

func (c *Client) gatewayError(req *openstack.Request, status int, message string, cause error) *openstack.GatewayError {
	return &openstack.GatewayError{
		StatusCode: status,
		Message:    message,
		Method:     req.Method,
		URL:        req.URL,
		Err:        cause,
	}
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, service, rawURL, token string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Service: service, Method: http.MethodGet, URL: rawURL, Token: token, Query: query})
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, service, rawURL, token string, body any) (*Response, error) {
	return c.Do(ctx, &Request{Service: service, Method: http.MethodPost, URL: rawURL, Token: token, Body: body})
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, service, rawURL, token string, body any) (*Response, error) {
	return c.Do(ctx, &Request{Service: service, Method: http.MethodPut, URL: rawURL, Token: token, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, service, rawURL, token string) (*Response, error) {
	return c.Do(ctx, &Request{Service: service, Method: http.MethodDelete, URL: rawURL, Token: token})
}

func withQuery(rawURL string, query url.Values) (string, error) {
	if len(query) == 0 {
		return rawURL, nil
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing url: %w", err)
	}

	values := parsed.Query()
	for key, vals := range query {
		for _, v := range vals {
			values.Add(key, v)
		}
	}

	parsed.RawQuery = values.Encode()

	return parsed.String(), nil
}

// extractMessage pulls a human readable message out of an error body.
// OpenStack services wrap it under "error", at the top level, or under a
// fault name such as "itemNotFound" or "NeutronError".
func extractMessage(status int, body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return http.StatusText(status)
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return trimmed
	}

	switch v := decoded.(type) {
	case string:
		return v
	case map[string]any:
		if msg := messageOf(v["error"]); msg != "" {
			return msg
		}

		if msg, ok := v["message"].(string); ok && msg != "" {
			return msg
		}

		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}

		sort.Strings(keys)

		for _, key := range keys {
			if msg := messageOf(v[key]); msg != "" {
				return msg
			}
		}
	}

	compact := &bytes.Buffer{}
	if err := json.Compact(compact, body); err != nil {
		return trimmed
	}

	return compact.String()
}

func messageOf(v any) string {
	switch inner := v.(type) {
	case string:
		return inner
	case map[string]any:
		if msg, ok := inner["message"].(string); ok {
			return msg
		}
	}

	return ""
}

// leveledLogger forwards retryablehttp's own logging.
type leveledLogger struct {
	logger openstack.Logger
}

func (l *leveledLogger) fields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}

	return fields
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, l.fields(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, l.fields(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, l.fields(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, l.fields(keysAndValues))
}
