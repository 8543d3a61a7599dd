package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"

	kafka "github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/delivery/kafka"
	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/pkg/logger"
)

type Producer interface {
	PublishPhaseChanged(ctx context.Context, event kafka.PhaseChangedEvent) error
	PublishSessionDelivered(ctx context.Context, event kafka.SessionDeliveredEvent) error
	PublishCancellationRequested(ctx context.Context, event kafka.CancellationRequestedEvent) error
	Close() error
}

type implProducer struct {
	l    logger.Logger
	prod sarama.SyncProducer
}

func NewProducer(prod sarama.SyncProducer, l logger.Logger) Producer {
	return &implProducer{
		l:    l,
		prod: prod,
	}
}

func (p *implProducer) PublishPhaseChanged(ctx context.Context, event kafka.PhaseChangedEvent) error {
	event.Timestamp = time.Now()
	val, err := json.Marshal(event)
	if err != nil {
		p.l.Errorf(ctx, "delivery.kafka.producer.PublishPhaseChanged: %v", err)
		return err
	}

	return p.send(kafka.TopicSessionPhaseChanged, event.SessionID, val)
}

func (p *implProducer) PublishSessionDelivered(ctx context.Context, event kafka.SessionDeliveredEvent) error {
	event.Timestamp = time.Now()
	val, err := json.Marshal(event)
	if err != nil {
		p.l.Errorf(ctx, "delivery.kafka.producer.PublishSessionDelivered: %v", err)
		return err
	}

	return p.send(kafka.TopicSessionDelivered, event.SessionID, val)
}

func (p *implProducer) PublishCancellationRequested(ctx context.Context, event kafka.CancellationRequestedEvent) error {
	event.Timestamp = time.Now()
	val, err := json.Marshal(event)
	if err != nil {
		p.l.Errorf(ctx, "delivery.kafka.producer.PublishCancellationRequested: %v", err)
		return err
	}

	return p.send(kafka.TopicCancellationRequested, event.SessionID, val)
}

func (p *implProducer) send(topic, sessionID string, val []byte) error {
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(sessionID), // Partition by session_id for ordering
		Value: sarama.ByteEncoder(val),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("timestamp"),
				Value: []byte(time.Now().Format(time.RFC3339)),
			},
		},
	}

	_, _, err := p.prod.SendMessage(msg)
	return err
}

func (p *implProducer) Close() error {
	if err := p.prod.Close(); err != nil {
		return err
	}

	return nil
}
