package sina

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"sinacrawler/pkg/config"
	errs "sinacrawler/pkg/errors"
	"sinacrawler/pkg/logger"
	"sinacrawler/pkg/metrics"
	"sinacrawler/pkg/retry"
)

// Client fetches raw feed API bodies
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	userAgents []string
	retry      *retry.Config
	metrics    *metrics.Metrics
	logger     logger.Logger

	mu   sync.Mutex
	rand *rand.Rand
}

// NewClient creates a feed API client. A nil retry config means a single attempt.
func NewClient(cfg config.SinaConfig, retryCfg *retry.Config, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if retryCfg == nil {
		retryCfg = &retry.Config{MaxAttempts: 1}
	}

	userAgents := cfg.UserAgents
	if len(userAgents) == 0 {
		userAgents = config.DefaultUserAgents
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		headers: map[string]string{
			"Accept":           "application/json, text/plain, */*",
			"Accept-Language":  "zh-CN,zh;q=0.9,en;q=0.8",
			"Cache-Control":    "no-cache",
			"Pragma":           "no-cache",
			"X-Requested-With": "XMLHttpRequest",
		},
		userAgents: append([]string(nil), userAgents...),
		retry:      retryCfg,
		logger:     log,
		rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetMetrics attaches request collectors
func (c *Client) SetMetrics(m *metrics.Metrics) {
	c.metrics = m
}

// SetHeader sets a custom header sent with every request
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// Fetch GETs url and returns the body of a 200 response, retrying transient
// failures according to the client's retry configuration
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	return retry.DoWithResult(ctx, func() ([]byte, error) {
		return c.fetchOnce(ctx, url)
	}, c.retry)
}

func (c *Client) userAgent() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userAgents[c.rand.Intn(len(c.userAgents))]
}

func (c *Client) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
		}
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	ua := c.userAgent()
	req.Header.Set("User-Agent", ua)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.metrics.ObserveRequest(0, duration)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"url":      url,
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
		}
	}
	defer resp.Body.Close()

	c.metrics.ObserveRequest(resp.StatusCode, duration)
	logger.LogRequest(c.logger.WithField("user_agent", ua), url, resp.StatusCode, duration.Milliseconds())

	if err := checkResponseStatus(resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}
	return body, nil
}

// checkResponseStatus maps HTTP status codes onto typed errors
func checkResponseStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return &errs.Error{
			Type:    errs.ErrorTypeNotFound,
			Message: "resource not found",
			Code:    resp.StatusCode,
		}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &errs.Error{
			Type:    errs.ErrorTypeRateLimit,
			Message: "rate limit exceeded",
			Code:    resp.StatusCode,
		}
	case resp.StatusCode >= 500:
		return &errs.Error{
			Type:    errs.ErrorTypeServerError,
			Message: "server error",
			Code:    resp.StatusCode,
		}
	default:
		return &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
			Code:    resp.StatusCode,
		}
	}
}
