package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"EcoTrack/internal/domain/models"
	domrepo "EcoTrack/internal/domain/repository"
	pkgkafka "EcoTrack/pkg/kafka"
	xutil "EcoTrack/pkg/util"
)

var ErrInvalidReading = errors.New("invalid reading")

// readingMessage is the wire format on the readings topic.
// t is unix seconds or milliseconds.
type readingMessage struct {
	CompanyID string  `json:"company_id"`
	T         int64   `json:"t"`
	Emissions float64 `json:"emissions"`
	Scope     int     `json:"scope"`
	Source    string  `json:"source"`
}

// ReadingsHandler consumes emission readings from Kafka and writes them to the store.
type ReadingsHandler struct {
	topic   string
	store   domrepo.EmissionsStore
	metrics domrepo.Metrics
}

func NewReadingsHandler(topic string, store domrepo.EmissionsStore, metrics domrepo.Metrics) *ReadingsHandler {
	return &ReadingsHandler{topic: topic, store: store, metrics: metrics}
}

func (h *ReadingsHandler) Topic() string { return h.topic }

// Handle accepts a single reading object or an array of them.
func (h *ReadingsHandler) Handle(ctx context.Context, b []byte) error {
	msgs, err := decodeReadings(b)
	if err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}

	readings := make([]models.Reading, 0, len(msgs))
	for i, m := range msgs {
		r, err := m.toReading()
		if err != nil {
			h.metrics.RecordError("consumer_invalid")
			return fmt.Errorf("reading %d: %w", i, err)
		}
		readings = append(readings, r)
	}
	if len(readings) == 0 {
		return nil
	}

	start := time.Now()
	err = h.store.StoreReadings(ctx, readings)
	h.metrics.RecordLatency("ch_insert", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	for _, r := range readings {
		h.metrics.RecordReadingIngested(r.Source)
	}
	return nil
}

func decodeReadings(b []byte) ([]readingMessage, error) {
	trimmed := strings.TrimSpace(string(b))
	if strings.HasPrefix(trimmed, "[") {
		var out []readingMessage
		if err := json.Unmarshal(b, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	var m readingMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return []readingMessage{m}, nil
}

func (m readingMessage) toReading() (models.Reading, error) {
	switch {
	case strings.TrimSpace(m.CompanyID) == "":
		return models.Reading{}, fmt.Errorf("%w: company_id required", ErrInvalidReading)
	case m.T <= 0:
		return models.Reading{}, fmt.Errorf("%w: t required", ErrInvalidReading)
	case m.Emissions < 0 || math.IsNaN(m.Emissions) || math.IsInf(m.Emissions, 0):
		return models.Reading{}, fmt.Errorf("%w: emissions must be a non-negative number", ErrInvalidReading)
	case m.Scope < 0 || m.Scope > 3:
		return models.Reading{}, fmt.Errorf("%w: scope must be 0..3", ErrInvalidReading)
	}
	return models.Reading{
		CompanyID: strings.TrimSpace(m.CompanyID),
		Timestamp: xutil.UnixAuto(m.T),
		Emissions: m.Emissions,
		Scope:     m.Scope,
		Source:    m.Source,
	}, nil
}

var _ pkgkafka.MessageHandler = (*ReadingsHandler)(nil)
