// Package platform is the single point of egress to the upstream platform
// API. The client attaches the session bearer token to every request, aborts
// slow calls at a fixed timeout, and pushes every failure through one
// classification pipeline that emits exactly one user-facing notification and
// re-returns the classified error unchanged to the caller. It never retries.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nexusgg/partner-portal/internal/infrastructure/notify"
	"github.com/nexusgg/partner-portal/internal/infrastructure/session"
)

// DefaultTimeout aborts requests that received no response. A timeout is
// classified identically to a connection failure.
const DefaultTimeout = 15 * time.Second

// Config holds client construction parameters.
type Config struct {
	// BaseURL is the fixed API prefix, resolved against the edge proxy.
	BaseURL string
	// Timeout for the whole request; zero means DefaultTimeout.
	Timeout time.Duration
}

// Client issues requests to the platform API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	sessions   session.Store
	notifier   notify.Notifier
	logger     *zap.Logger
}

// New creates a platform client.
func New(cfg Config, sessions session.Store, notifier notify.Notifier, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
			},
		},
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		sessions: sessions,
		notifier: notifier,
		logger:   logger.With(zap.String("component", "platform_client")),
	}
}

// Get issues a GET request and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a POST request with a JSON body and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// Put issues a PUT request with a JSON body and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// GetRaw issues a GET request and returns the raw response body. Used for
// non-JSON payloads such as CSV exports.
func (c *Client) GetRaw(ctx context.Context, path string, query url.Values) ([]byte, error) {
	resp, err := c.send(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(&Error{Kind: KindNetwork, Message: "Unable to read the server response.", cause: err})
	}
	return data, nil
}

// do executes one request/response cycle through the interceptor pipeline.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	resp, err := c.send(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return c.fail(&Error{
			Kind:       KindServer,
			StatusCode: resp.StatusCode,
			Message:    "Something went wrong on our side. Please try again later.",
			cause:      fmt.Errorf("decoding response: %w", err),
		})
	}
	return nil
}

// send builds the request, attaches auth, executes it and classifies any
// failure. On success the caller owns resp.Body.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	// Bearer attachment: a missing token is not an error, the request simply
	// goes out unauthenticated and the platform is the authority on rejecting
	// it.
	if token := session.Token(c.sessions); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// No response received: connection failure and timeout are the same
		// condition for the caller.
		return nil, c.fail(&Error{
			Kind:    KindNetwork,
			Message: "Unable to reach the server. Please try again.",
			cause:   err,
		})
	}

	if resp.StatusCode >= 400 {
		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			data = nil
		}
		return nil, c.fail(classify(resp.StatusCode, data))
	}

	return resp, nil
}

// fail emits exactly one notification for the failure and returns the error
// unchanged so calling code can still branch on it.
func (c *Client) fail(e *Error) *Error {
	switch e.Kind {
	case KindNetwork:
		c.notifier.Notify(notify.ClassNetworkError, notify.TitleNetworkError, e.Message)
	case KindSessionExpired:
		c.notifier.Notify(notify.ClassSessionExpired, notify.TitleSessionExpired, e.Message)
	case KindValidation:
		c.notifier.Notify(notify.ClassValidationError, "Validation Error", e.Message)
	case KindServer:
		c.notifier.Notify(notify.ClassServerError, notify.TitleServerError, e.Message)
	default:
		c.notifier.Notify(notify.ClassRequestError, "Request Failed", e.Message)
	}

	c.logger.Warn("Platform call failed",
		zap.String("kind", string(e.Kind)),
		zap.Int("status", e.StatusCode),
		zap.Error(e.cause),
	)
	return e
}
