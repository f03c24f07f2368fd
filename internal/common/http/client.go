// internal/common/http/client.go
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"mergington-portal/internal/common/logger"
	"mergington-portal/internal/common/metrics"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Client wraps *http.Client with request ids, request logging and
// Prometheus accounting.
type Client struct {
	httpClient *http.Client
	logger     logger.Logger
}

func NewClient(timeout time.Duration, log logger.Logger) *Client {
	return NewClientWith(&http.Client{Timeout: timeout}, log)
}

// NewClientWith reuses a caller-supplied *http.Client (httptest servers hand
// one out).
func NewClientWith(hc *http.Client, log logger.Logger) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Client{httpClient: hc, logger: log}
}

// DoWithContext sends req under ctx. endpoint is the route template used as
// the metrics label (e.g. "/activities/{id}/signup"), so ids and emails never
// reach label values.
func (c *Client) DoWithContext(ctx context.Context, endpoint string, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)

	requestID := req.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
		req.Header.Set(RequestIDHeader, requestID)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	metrics.APIRequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())

	if err != nil {
		metrics.APIRequests.WithLabelValues(endpoint, metrics.OutcomeFailed).Inc()
		c.logger.Warn("API request failed", map[string]interface{}{
			"endpoint":   endpoint,
			"method":     req.Method,
			"requestId":  requestID,
			"durationMs": elapsed.Milliseconds(),
			"error":      err.Error(),
		})
		return nil, err
	}

	c.logger.Debug("API request completed", map[string]interface{}{
		"endpoint":   endpoint,
		"method":     req.Method,
		"status":     resp.StatusCode,
		"requestId":  requestID,
		"durationMs": elapsed.Milliseconds(),
	})
	return resp, nil
}

// Observe records the final outcome of a request once the body has been
// interpreted by the caller.
func Observe(endpoint, outcome string) {
	metrics.APIRequests.WithLabelValues(endpoint, outcome).Inc()
}
