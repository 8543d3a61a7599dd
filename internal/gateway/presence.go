package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/config"
	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/models"
	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/service"
	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/pkg/logger"
)

type presenceClient struct {
	cfg    config.BookingConfig
	client *http.Client
	l      logger.Logger
}

func NewPresenceClient(cfg config.BookingConfig, l logger.Logger) service.PresenceGateway {
	return &presenceClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		l: l,
	}
}

func (c *presenceClient) RecordJoin(ctx context.Context, sessionID string, role models.ParticipantRole, at time.Time) error {
	payload := struct {
		SessionID string    `json:"session_id"`
		Role      string    `json:"role"`
		JoinedAt  time.Time `json:"joined_at"`
	}{
		SessionID: sessionID,
		Role:      string(role),
		JoinedAt:  at,
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode presence payload: %w", err)
	}

	url := fmt.Sprintf("%s/internal/presence/joins", c.cfg.PresenceURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(raw))
	if err != nil {
		return fmt.Errorf("failed to build presence request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("X-Api-Key", c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.l.Errorf(ctx, "gateway.presenceClient.RecordJoin: %v", err)
		return fmt.Errorf("presence request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d from presence endpoint", resp.StatusCode)
	}

	return nil
}
