package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dinodia/dinodia-core/internal/infrastructure/logging"
)

// maxErrorBodyBytes caps how much of a hub error body is kept for diagnostics.
const maxErrorBodyBytes = 2048

// CallRecorder receives telemetry about completed hub calls.
// The InfluxDB client implements it; a nil recorder disables telemetry.
type CallRecorder interface {
	RecordHubCall(householdID int64, operation string, status int, duration time.Duration, err error)
}

// Client performs authenticated HTTP calls against households' hubs.
//
// The client itself is stateless; per-household base URL and token are
// resolved through the InstanceRepository on every call. All calls are
// bounded by the configured timeout and classified into the package's
// sentinel errors.
type Client struct {
	instances InstanceRepository
	http      *http.Client
	logger    *logging.Logger
	recorder  CallRecorder
}

// NewClient creates a hub client.
//
// timeout bounds every hub HTTP call; recorder may be nil.
func NewClient(instances InstanceRepository, timeout time.Duration, logger *logging.Logger, recorder CallRecorder) *Client {
	return &Client{
		instances: instances,
		http:      &http.Client{Timeout: timeout},
		logger:    logger.With("component", "hub"),
		recorder:  recorder,
	}
}

// States fetches all entity states for the household's hub.
func (c *Client) States(ctx context.Context, householdID int64) ([]EntityState, error) {
	body, _, err := c.do(ctx, householdID, "states", http.MethodGet, "/api/states", nil)
	if err != nil {
		return nil, err
	}

	var states []EntityState
	if err := json.Unmarshal(body, &states); err != nil {
		return nil, fmt.Errorf("%w: decoding states: %w", ErrProtocol, err)
	}
	return states, nil
}

// Ping verifies the hub is reachable and the token is accepted.
// GET /api/ returns a small JSON message on success.
func (c *Client) Ping(ctx context.Context, householdID int64) error {
	_, _, err := c.do(ctx, householdID, "ping", http.MethodGet, "/api/", nil)
	return err
}

// RenderTemplate renders a Jinja template server-side on the hub and
// parses the result as JSON.
//
// A response that is not valid JSON is reported as ErrTemplate; callers
// are expected to degrade (no area, no labels) rather than abort.
func (c *Client) RenderTemplate(ctx context.Context, householdID int64, template string) (json.RawMessage, error) {
	payload, err := json.Marshal(map[string]string{"template": template})
	if err != nil {
		return nil, fmt.Errorf("encoding template request: %w", err)
	}

	body, _, err := c.do(ctx, householdID, "template", http.MethodPost, "/api/template", payload)
	if err != nil {
		return nil, err
	}

	if !json.Valid(body) {
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200] + "…"
		}
		return nil, fmt.Errorf("%w: template did not return valid JSON, got: %s", ErrTemplate, snippet)
	}
	return json.RawMessage(body), nil
}

// CallService invokes POST /api/services/{domain}/{service} with the given
// payload (which must include the target entity_id).
//
// There is no automatic retry: a toggle retried blindly could double-toggle.
// On a non-2xx response the hub's status and raw error text are returned
// inside ServiceResult alongside the classified error.
func (c *Client) CallService(ctx context.Context, householdID int64, domain, service string, payload map[string]any) (*ServiceResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding service payload: %w", err)
	}

	path := fmt.Sprintf("/api/services/%s/%s", domain, service)
	respBody, status, err := c.do(ctx, householdID, "service", http.MethodPost, path, body)

	result := &ServiceResult{Status: status}
	if err != nil {
		result.Body = errorBody(err, respBody)
		return result, err
	}
	return result, nil
}

// do performs one authenticated request against the household's hub and
// classifies failures. It returns the response body and HTTP status.
func (c *Client) do(ctx context.Context, householdID int64, operation, method, path string, body []byte) (respBody []byte, status int, err error) {
	start := time.Now()
	defer func() {
		if c.recorder != nil {
			c.recorder.RecordHubCall(householdID, operation, status, time.Since(start), err)
		}
	}()

	instance, err := c.instances.GetByHousehold(ctx, householdID)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			return nil, 0, err
		}
		return nil, 0, fmt.Errorf("looking up hub instance: %w", err)
	}

	url := strings.TrimRight(instance.BaseURL, "/") + path

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("building hub request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+instance.AccessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Timeouts and connection failures both land here.
		return nil, 0, fmt.Errorf("%w: %s %s: %w", ErrUnreachable, method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read side only

	status = resp.StatusCode
	respBody, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, status, fmt.Errorf("%w: reading response: %w", ErrUnreachable, err)
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return respBody, status, fmt.Errorf("%w: status %d", ErrUnauthorized, status)
	case status < 200 || status > 299:
		c.logger.Warn("hub returned error status",
			"household_id", householdID,
			"operation", operation,
			"status", status,
		)
		return respBody, status, fmt.Errorf("%w: status %d: %s", ErrProtocol, status, truncate(respBody))
	}

	return respBody, status, nil
}

// truncate limits a hub error body for inclusion in error messages.
func truncate(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBodyBytes {
		return s[:maxErrorBodyBytes] + "…"
	}
	return s
}

// errorBody picks the most useful diagnostic text for a failed service call.
func errorBody(err error, respBody []byte) string {
	if len(respBody) > 0 {
		return truncate(respBody)
	}
	return err.Error()
}
