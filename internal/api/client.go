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

	"mergington-portal/internal/common/errors"
	commonhttp "mergington-portal/internal/common/http"
	"mergington-portal/internal/common/logger"
	"mergington-portal/internal/common/metrics"
	"mergington-portal/internal/common/validation"
	"mergington-portal/internal/models"
)

// Route templates, used for logging and metric labels.
const (
	EndpointActivities = "/activities"
	EndpointRegister   = "/register"
	EndpointSignup     = "/activities/{id}/signup"
)

// maxBodyBytes bounds how much of a response is read.
const maxBodyBytes = 1 << 20

// Client talks to the activities server.
type Client struct {
	config *Config
	logger logger.Logger
	http   *commonhttp.Client
}

type ClientOptions struct {
	Config *Config
	Logger logger.Logger
	// HTTPClient overrides the transport, e.g. httptest.Server.Client().
	HTTPClient *http.Client
}

func NewClient(opts ClientOptions) (*Client, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid api client configuration: %w", err)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.WithFields(map[string]interface{}{"component": "api"})

	var transport *commonhttp.Client
	if opts.HTTPClient != nil {
		hc := *opts.HTTPClient
		hc.Timeout = cfg.Timeout
		transport = commonhttp.NewClientWith(&hc, log)
	} else {
		transport = commonhttp.NewClient(cfg.Timeout, log)
	}

	return &Client{
		config: cfg,
		logger: log,
		http:   transport,
	}, nil
}

// ListActivities fetches GET /activities. The payload must be a JSON array of
// activity records; anything else is a RESPONSE_INVALID error, whatever the
// status code.
func (c *Client) ListActivities(ctx context.Context) ([]models.Activity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+EndpointActivities, nil)
	if err != nil {
		return nil, errors.NewRequestBuildError(EndpointActivities, err)
	}
	req.Header.Set("Accept", "application/json")

	status, body, err := c.do(ctx, EndpointActivities, req)
	if err != nil {
		return nil, err
	}

	if result := validation.ValidateJSON(validation.ActivityListSchema(), body); !result.Valid {
		commonhttp.Observe(EndpointActivities, metrics.OutcomeInvalid)
		return nil, errors.NewResponseInvalidError(EndpointActivities, status, result.Err())
	}

	var activities []models.Activity
	if err := json.Unmarshal(body, &activities); err != nil {
		commonhttp.Observe(EndpointActivities, metrics.OutcomeInvalid)
		return nil, errors.NewResponseInvalidError(EndpointActivities, status, err)
	}

	commonhttp.Observe(EndpointActivities, metrics.OutcomeOK)
	c.logger.Debug("Activities fetched", map[string]interface{}{
		"count":  len(activities),
		"status": status,
	})
	return activities, nil
}

// Register posts the registration form. A 2xx response is success whatever
// its body; otherwise the server's detail is returned in a REQUEST_REJECTED
// error.
func (c *Client) Register(ctx context.Context, input models.RegistrationRequest) error {
	payload, err := json.Marshal(input)
	if err != nil {
		return errors.NewRequestBuildError(EndpointRegister, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+EndpointRegister, bytes.NewReader(payload))
	if err != nil {
		return errors.NewRequestBuildError(EndpointRegister, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	status, body, err := c.do(ctx, EndpointRegister, req)
	if err != nil {
		return err
	}

	if isOK(status) {
		commonhttp.Observe(EndpointRegister, metrics.OutcomeOK)
		c.logger.Info("Registration accepted", map[string]interface{}{
			"email":  input.Email,
			"status": status,
		})
		return nil
	}

	return c.rejection(EndpointRegister, status, body)
}

// Signup posts /activities/{id}/signup?email=... and returns the server's
// confirmation message. Both values are escaped: they are free-form text.
func (c *Client) Signup(ctx context.Context, input models.SignupRequest) (string, error) {
	endpointURL := fmt.Sprintf("%s/activities/%s/signup?email=%s",
		c.config.BaseURL,
		url.PathEscape(input.ActivityID.String()),
		url.QueryEscape(input.Email),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL, nil)
	if err != nil {
		return "", errors.NewRequestBuildError(EndpointSignup, err)
	}
	req.Header.Set("Accept", "application/json")

	status, body, err := c.do(ctx, EndpointSignup, req)
	if err != nil {
		return "", err
	}

	if !isOK(status) {
		return "", c.rejection(EndpointSignup, status, body)
	}

	var result models.SignupResponse
	if err := json.Unmarshal(body, &result); err != nil {
		commonhttp.Observe(EndpointSignup, metrics.OutcomeInvalid)
		return "", errors.NewResponseInvalidError(EndpointSignup, status, err)
	}

	commonhttp.Observe(EndpointSignup, metrics.OutcomeOK)
	c.logger.Info("Signup accepted", map[string]interface{}{
		"activityId": input.ActivityID.String(),
		"email":      input.Email,
	})
	return result.Message, nil
}

// do sends req and reads the whole body. Only transport failures are
// returned as errors; status interpretation is left to the caller.
func (c *Client) do(ctx context.Context, endpoint string, req *http.Request) (int, []byte, error) {
	resp, err := c.http.DoWithContext(ctx, endpoint, req)
	if err != nil {
		return 0, nil, errors.NewTransportError(endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		commonhttp.Observe(endpoint, metrics.OutcomeFailed)
		return resp.StatusCode, nil, errors.NewTransportError(endpoint, fmt.Errorf("failed to read response body: %w", err))
	}
	if len(body) > maxBodyBytes {
		commonhttp.Observe(endpoint, metrics.OutcomeInvalid)
		return resp.StatusCode, nil, errors.NewResponseInvalidError(endpoint, resp.StatusCode,
			fmt.Errorf("response too large: more than %d bytes", maxBodyBytes))
	}
	return resp.StatusCode, body, nil
}

// rejection turns a non-ok response into an error. The body has to be JSON;
// a non-JSON error page counts as a parse failure, not a rejection.
func (c *Client) rejection(endpoint string, status int, body []byte) error {
	var errResp models.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		commonhttp.Observe(endpoint, metrics.OutcomeInvalid)
		return errors.NewResponseInvalidError(endpoint, status, fmt.Errorf("non-JSON error body (status %d): %w", status, err))
	}

	commonhttp.Observe(endpoint, metrics.OutcomeRejected)
	detail := errResp.DetailText()
	c.logger.Info("Request rejected", map[string]interface{}{
		"endpoint": endpoint,
		"status":   status,
		"detail":   detail,
	})
	return errors.NewRejectedError(endpoint, status, detail)
}

func isOK(status int) bool {
	return status >= 200 && status < 300
}

// BaseURL returns the configured server root without a trailing slash.
func (c *Client) BaseURL() string {
	return strings.TrimRight(c.config.BaseURL, "/")
}
