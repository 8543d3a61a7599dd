package consumer

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"

	kafka "github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/delivery/kafka"
	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/service"
)

func (c *Consumer) HandleStatusChanged(ctx context.Context, message *sarama.ConsumerMessage) error {
	c.l.Info(ctx, "HandleStatusChanged consumed")

	var e kafka.StatusChangedEvent
	if err := json.Unmarshal(message.Value, &e); err != nil {
		c.l.Errorf(ctx, "delivery.kafka.consumer.handlers.HandleStatusChanged: %v", err)
		return err
	}

	if err := c.lcSvc.HandleStatusChanged(ctx, service.StatusChangedInput{
		SessionID: e.SessionID,
		Status:    e.Status,
		Epoch:     e.Epoch,
		Timestamp: e.Timestamp,
	}); err != nil {
		c.l.Errorf(ctx, "delivery.kafka.consumer.handlers.HandleStatusChanged: %v", err)
		return err
	}

	return nil
}

func (c *Consumer) HandleInactivity(ctx context.Context, message *sarama.ConsumerMessage) error {
	c.l.Info(ctx, "HandleInactivity consumed")

	var e kafka.InactivityEvent
	if err := json.Unmarshal(message.Value, &e); err != nil {
		c.l.Errorf(ctx, "delivery.kafka.consumer.handlers.HandleInactivity: %v", err)
		return err
	}

	if err := c.lcSvc.HandleInactivity(ctx, service.InactivityInput{
		SessionID:   e.SessionID,
		MissingRole: e.MissingRole,
		Epoch:       e.Epoch,
		Timestamp:   e.Timestamp,
	}); err != nil {
		c.l.Errorf(ctx, "delivery.kafka.consumer.handlers.HandleInactivity: %v", err)
		return err
	}

	return nil
}
