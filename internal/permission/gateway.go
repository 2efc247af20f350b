// Package permission talks to the organisation core service, the external
// authority that answers whether a user may perform an action on an event.
package permission

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/LeonVreling/oms-statutory/pkg/domain"
)

// Action names a permission checked against the core service.
type Action string

// Gateway answers authorization queries for a (user token, event, action)
// triple. Implementations may fail (network, timeout); callers must treat a
// failed check as a denial, never as a grant.
type Gateway interface {
	HasRight(ctx context.Context, token string, eventID domain.EventID, action Action) (bool, error)
}

// Client is the HTTP Gateway implementation. Transient failures are retried
// with bounded exponential backoff; the context caps total time spent.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type checkRequest struct {
	EventID int64  `json:"event_id"`
	Action  string `json:"action"`
}

type checkResponse struct {
	Allowed bool `json:"allowed"`
}

func (c *Client) HasRight(ctx context.Context, token string, eventID domain.EventID, action Action) (bool, error) {
	payload, err := json.Marshal(checkRequest{EventID: eventID.Int64(), Action: string(action)})
	if err != nil {
		return false, fmt.Errorf("encode permission check: %w", err)
	}

	var allowed bool
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/permissions/check", bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("permission check request: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode >= 500:
			return fmt.Errorf("core service returned %d", resp.StatusCode)
		default:
			return backoff.Permanent(fmt.Errorf("core service returned %d", resp.StatusCode))
		}

		var body checkResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return fmt.Errorf("decode permission response: %w", err)
		}
		allowed = body.Allowed
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		c.logger.WarnContext(ctx, "permission check failed",
			"event_id", eventID,
			"action", action,
			"error", err,
		)
		return false, err
	}
	return allowed, nil
}
