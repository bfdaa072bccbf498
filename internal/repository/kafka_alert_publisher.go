package repository

import (
	"context"
	"errors"

	"EcoTrack/internal/domain/models"
	domrepo "EcoTrack/internal/domain/repository"
	pkgkafka "EcoTrack/pkg/kafka"
)

type keyedPublisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaAlertPublisher implements AlertPublisher for Kafka. Alerts are keyed
// by company id so one company's alerts stay on one partition.
type KafkaAlertPublisher struct {
	producer keyedPublisher
	topic    string
}

func NewKafkaAlertPublisher(producer *pkgkafka.Producer, topic string) *KafkaAlertPublisher {
	return &KafkaAlertPublisher{producer: producer, topic: topic}
}

func (p *KafkaAlertPublisher) PublishAnomalies(ctx context.Context, alert models.AnomalyAlert) error {
	if alert.CompanyID == "" {
		return errors.New("alert without company id")
	}
	if len(alert.Anomalies) == 0 {
		return nil
	}
	return p.producer.Publish(ctx, p.topic, []byte(alert.CompanyID), alert)
}

// Close is a no-op; the shared producer is closed by its owner.
func (p *KafkaAlertPublisher) Close() error { return nil }

// NoopAlertPublisher drops alerts. Used when Kafka is disabled.
type NoopAlertPublisher struct{}

func (NoopAlertPublisher) PublishAnomalies(context.Context, models.AnomalyAlert) error { return nil }
func (NoopAlertPublisher) Close() error                                               { return nil }

var (
	_ domrepo.AlertPublisher = (*KafkaAlertPublisher)(nil)
	_ domrepo.AlertPublisher = NoopAlertPublisher{}
)
