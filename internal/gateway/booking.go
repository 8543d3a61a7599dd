// Package gateway holds the HTTP clients for the systems this service
// consumes but does not own: the booking backend and the video room
// presence endpoint.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/config"
	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/models"
	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/service"
	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/pkg/logger"
)

type bookingClient struct {
	cfg    config.BookingConfig
	client *http.Client
	l      logger.Logger
}

func NewBookingClient(cfg config.BookingConfig, l logger.Logger) service.BookingBackend {
	return &bookingClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		l: l,
	}
}

func (c *bookingClient) GetSession(ctx context.Context, sessionID string) (*models.ScheduledSession, error) {
	url := fmt.Sprintf("%s/internal/sessions/%s", c.cfg.BaseURL, sessionID)

	var ss models.ScheduledSession
	found, err := c.do(ctx, http.MethodGet, url, nil, &ss)
	if err != nil {
		c.l.Errorf(ctx, "gateway.bookingClient.GetSession: %v", err)
		return nil, err
	}
	if !found {
		return nil, nil
	}

	return &ss, nil
}

func (c *bookingClient) SubmitCancellation(ctx context.Context, req *models.CancellationRequest) (*service.CancellationSubmitResult, error) {
	url := fmt.Sprintf("%s/internal/sessions/%s/cancellations", c.cfg.BaseURL, req.SessionID)

	var res service.CancellationSubmitResult
	found, err := c.do(ctx, http.MethodPost, url, req, &res)
	if err != nil {
		c.l.Errorf(ctx, "gateway.bookingClient.SubmitCancellation: %v", err)
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("session %s not found on booking backend", req.SessionID)
	}

	return &res, nil
}

func (c *bookingClient) IssueJoinTokens(ctx context.Context, sessionID string) (bool, error) {
	url := fmt.Sprintf("%s/internal/sessions/%s/tokens", c.cfg.BaseURL, sessionID)

	var res struct {
		TokensReady bool `json:"tokens_ready"`
	}
	found, err := c.do(ctx, http.MethodPost, url, nil, &res)
	if err != nil {
		c.l.Errorf(ctx, "gateway.bookingClient.IssueJoinTokens: %v", err)
		return false, err
	}
	if !found {
		return false, fmt.Errorf("session %s not found on booking backend", sessionID)
	}

	return res.TokensReady, nil
}

// do issues one JSON request. It reports found=false on a 404 so callers
// can distinguish a missing resource from a transport failure.
func (c *bookingClient) do(ctx context.Context, method, url string, body, out interface{}) (bool, error) {
	var reqBody *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return false, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewBuffer(raw)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return false, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("X-Api-Key", c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return false, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return true, nil
}
