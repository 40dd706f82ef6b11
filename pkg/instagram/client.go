package instagram

import (
	"net/http"
	"time"

	errs "igcomments/pkg/errors"
	"igcomments/pkg/logger"
)

// Client performs comment-listing requests with a shared header set. Headers
// carry the session cookies; InstallHeaders swaps in a fresh set mid-run
// after a re-authentication without rebuilding the client.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	logger     logger.Logger
}

// NewClient creates a new query-endpoint client. Redirects are not followed:
// the endpoint answers logged-out clients with a redirect, and that has to
// surface to the caller as auth loss, not as a transparently followed hop.
func NewClient(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		headers: make(map[string]string),
		baseURL: baseURL,
		logger:  log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// InstallHeaders replaces the client's header set
func (c *Client) InstallHeaders(headers map[string]string) {
	c.headers = make(map[string]string, len(headers))
	for key, value := range headers {
		c.headers[key] = value
	}
}

// BaseURL returns the endpoint base this client targets
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get performs a GET request with the configured headers
func (c *Client) Get(url string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeUnknown, "failed to create request: "+err.Error())
	}
	return c.doRequest(req)
}

// doRequest performs an HTTP request with the configured headers
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errs.New(errs.ErrorTypeNetwork, "network error: "+err.Error())
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}
