package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type fakeCommitter struct {
	mu      sync.Mutex
	offsets []int64
}

func (c *fakeCommitter) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range msgs {
		c.offsets = append(c.offsets, m.Offset)
	}
	return nil
}

type countingHandler struct {
	failures int
	calls    int
	traceIDs []string
}

func (h *countingHandler) Topic() string { return "emissions.readings" }

func (h *countingHandler) Handle(ctx context.Context, _ []byte) error {
	h.calls++
	h.traceIDs = append(h.traceIDs, TraceIDFromContext(ctx))
	if h.calls <= h.failures {
		return errors.New("store unavailable")
	}
	return nil
}

func testConsumer(retryMax int) *Consumer {
	return newConsumer(&ConsumerConfig{
		RetryMax:   retryMax,
		BackoffMin: time.Millisecond,
		BackoffMax: 2 * time.Millisecond,
		BufferSize: 1,
		DLQTopic:   "emissions.readings.dlq",
	}, nil)
}

func TestProducer_EncodesValues(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "snappy")

	require.NoError(t, p.Publish(context.Background(), "emissions.anomalies", []byte("c-1"), map[string]string{"company_id": "c-1"}))
	require.NoError(t, p.PublishMessage(context.Background(), "ecotrack.logs", "raw"))
	require.NoError(t, p.PublishBatch(context.Background(), "t", nil))

	require.Len(t, w.msgs, 2)
	assert.Equal(t, "emissions.anomalies", w.msgs[0].Topic)
	assert.Equal(t, []byte("c-1"), w.msgs[0].Key)
	assert.JSONEq(t, `{"company_id":"c-1"}`, string(w.msgs[0].Value))
	assert.Equal(t, "raw", string(w.msgs[1].Value))
}

func TestProducer_WriteError(t *testing.T) {
	p := newProducer(&fakeWriter{err: errors.New("leader not available")}, "snappy")
	err := p.Publish(context.Background(), "t", nil, []byte("x"))
	assert.ErrorContains(t, err, "leader not available")
}

func TestConsumer_RetriesThenSucceeds(t *testing.T) {
	c := testConsumer(3)
	h := &countingHandler{failures: 2}
	c.RegisterHandler(h)
	c.WithConsumerHook(TraceHook())
	dlq := &fakeWriter{}
	c.dlq = dlq
	cm := &fakeCommitter{}

	c.process(&message{
		topic:  h.Topic(),
		km:     kafka.Message{Offset: 7, Headers: []kafka.Header{{Key: "trace_id", Value: []byte("tr-1")}}},
		commit: cm,
	})

	assert.Equal(t, 3, h.calls)
	assert.Equal(t, []string{"tr-1", "tr-1", "tr-1"}, h.traceIDs)
	assert.Empty(t, dlq.msgs)
	assert.Equal(t, []int64{7}, cm.offsets)
}

func TestConsumer_ExhaustedGoesToDLQ(t *testing.T) {
	c := testConsumer(1)
	h := &countingHandler{failures: 100}
	c.RegisterHandler(h)
	dlq := &fakeWriter{}
	c.dlq = dlq
	cm := &fakeCommitter{}

	var hookErrs int
	c.WithConsumerHook(HookFuncs{Err: func(context.Context, string, kafka.Message, []byte, error) { hookErrs++ }})

	c.process(&message{topic: h.Topic(), km: kafka.Message{Offset: 9, Value: []byte(`{}`)}, commit: cm})

	assert.Equal(t, 2, h.calls)
	assert.Equal(t, 1, hookErrs)
	require.Len(t, dlq.msgs, 1)
	assert.Equal(t, "emissions.readings.dlq", dlq.msgs[0].Topic)
	assert.Equal(t, "source_topic", dlq.msgs[0].Headers[0].Key)
	assert.Equal(t, []int64{9}, cm.offsets)
}

func TestConsumer_NoDLQLeavesOffsetUncommitted(t *testing.T) {
	c := testConsumer(0)
	h := &countingHandler{failures: 1}
	c.RegisterHandler(h)
	cm := &fakeCommitter{}

	c.process(&message{topic: h.Topic(), km: kafka.Message{Offset: 3}, commit: cm})
	assert.Empty(t, cm.offsets)
}

func TestHookChain_BeforeErrorShortCircuits(t *testing.T) {
	var order []string
	failing := HookFuncs{Before: func(ctx context.Context, _ string, km kafka.Message, d []byte) (context.Context, kafka.Message, []byte, error) {
		order = append(order, "fail")
		return ctx, km, d, &HookError{Code: "ERR_VALIDATION"}
	}}
	never := HookFuncs{
		Before: func(ctx context.Context, _ string, km kafka.Message, d []byte) (context.Context, kafka.Message, []byte, error) {
			order = append(order, "never")
			return ctx, km, d, nil
		},
		Err: func(context.Context, string, kafka.Message, []byte, error) { order = append(order, "onerror") },
	}

	_, _, _, err := NewHookChain(failing, nil, never).BeforeHandle(context.Background(), "t", kafka.Message{}, nil)
	var he *HookError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, []string{"fail", "onerror"}, order)
}

func TestHookChain_PanicContained(t *testing.T) {
	panicky := HookFuncs{Before: func(context.Context, string, kafka.Message, []byte) (context.Context, kafka.Message, []byte, error) {
		panic("bad hook")
	}}
	_, _, _, err := NewHookChain(panicky).BeforeHandle(context.Background(), "t", kafka.Message{}, nil)
	assert.ErrorContains(t, err, "ERR_PANIC")
}

func TestBackoffWithJitter_Bounds(t *testing.T) {
	for attempt := 1; attempt < 40; attempt++ {
		d := backoffWithJitter(10*time.Millisecond, 200*time.Millisecond, attempt)
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 200*time.Millisecond)
	}
}

func TestProducerConfig_OptionsKeepDefaultsOnZero(t *testing.T) {
	cfg := defaultProducerConfig()
	for _, opt := range []ProducerOption{
		WithBrokers([]string{"b1:9092"}),
		WithCompression(""),
		WithDelivery(7, 0, true),
		WithBatching(0, 0, 0),
		WithTimeouts(0, 2*time.Second),
	} {
		opt(&cfg)
	}

	assert.Equal(t, []string{"b1:9092"}, cfg.Brokers)
	assert.Equal(t, "snappy", cfg.Compression)
	assert.Equal(t, -1, cfg.RequiredAcks)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.True(t, cfg.Async)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 50*time.Millisecond, cfg.BatchTimeout)
	assert.Equal(t, 10*time.Second, cfg.WriteTimeout)
	assert.Equal(t, 2*time.Second, cfg.ReadTimeout)
}

func TestProducerConfig_Writer(t *testing.T) {
	cfg := defaultProducerConfig()
	WithBrokers([]string{"b1:9092"})(&cfg)
	WithCompression("zstd")(&cfg)
	WithDelivery(1, 5, false)(&cfg)
	WithBatching(500, 2048, time.Second)(&cfg)

	w := cfg.writer()
	assert.Equal(t, kafka.Zstd, w.Compression)
	assert.Equal(t, kafka.RequireOne, w.RequiredAcks)
	assert.Equal(t, 5, w.MaxAttempts)
	assert.Equal(t, 500, w.BatchSize)
	assert.Equal(t, int64(2048), w.BatchBytes)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)

	WithHashByKey(false)(&cfg)
	assert.IsType(t, &kafka.LeastBytes{}, cfg.writer().Balancer)
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer()
	assert.Error(t, err)
}
