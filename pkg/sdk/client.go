package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// TokenType is the authorization scheme the users API expects.
const TokenType = "Token"

// RequestIDHeader carries a per-request identifier used to correlate logs.
const RequestIDHeader = "X-Request-Id"

// Client provides typed access to the users/groups REST API.
// Every call is a single round trip; failures are returned to the caller
// and logged, never retried.
type Client struct {
	httpClient *http.Client
	baseURL    string
	authPath   string
	logger     *zap.SugaredLogger
}

// ClientOptions configures SDK client construction.
type ClientOptions struct {
	HTTPClient *http.Client
	Token      string
	AuthPath   string
	Logger     *zap.Logger
}

// ClientOption mutates ClientOptions.
type ClientOption func(*ClientOptions)

// WithHTTPClient overrides the HTTP client used for API calls.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(opts *ClientOptions) {
		opts.HTTPClient = client
	}
}

// WithToken attaches "Authorization: Token <token>" to every request.
// An empty token leaves requests unauthenticated.
func WithToken(token string) ClientOption {
	return func(opts *ClientOptions) {
		opts.Token = token
	}
}

// WithAuthPath overrides the token endpoint (default DefaultAuthPath).
func WithAuthPath(path string) ClientOption {
	return func(opts *ClientOptions) {
		opts.AuthPath = path
	}
}

// WithLogger sets the diagnostic logger. Failed requests are logged with
// their raw payload at warn level.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(opts *ClientOptions) {
		opts.Logger = logger
	}
}

// NewClient creates a client for the API served at baseURL.
// http.DefaultClient is used when no HTTP client is supplied.
func NewClient(baseURL string, optFns ...ClientOption) *Client {
	opts := ClientOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Token != "" {
		opts.HTTPClient = TokenHTTPClient(opts.HTTPClient, opts.Token)
	}
	if opts.AuthPath == "" {
		opts.AuthPath = DefaultAuthPath
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Client{
		httpClient: opts.HTTPClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		authPath:   opts.AuthPath,
		logger:     opts.Logger.Sugar(),
	}
}

// TokenHTTPClient wraps base so that every request carries the token using
// the API's "Token" authorization scheme.
func TokenHTTPClient(base *http.Client, token string) *http.Client {
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	source := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   TokenType,
	})
	return oauth2.NewClient(ctx, source)
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do issues a request and decodes a JSON response into out (when non-nil).
// A non-2xx status yields *APIError carrying the status and raw body.
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s request: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warnw("request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s response: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warnw("request rejected",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"request_id", requestID,
			"payload", string(data),
		)
		return &APIError{Method: method, Path: path, Status: resp.StatusCode, Body: data}
	}

	c.logger.Debugw("request ok", "method", method, "path", path, "status", resp.StatusCode, "request_id", requestID)

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Warnw("malformed response", "method", method, "path", path, "request_id", requestID, "payload", string(data))
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
