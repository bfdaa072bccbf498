package di

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"EcoTrack/internal/domain/repository"
	domsvc "EcoTrack/internal/domain/service"
	"EcoTrack/internal/handler/api"
	internalrepo "EcoTrack/internal/repository"
	icache "EcoTrack/internal/service/cache"
	"EcoTrack/internal/service/ratelimit"
	"EcoTrack/internal/services/analytics"
	"EcoTrack/internal/services/recommendation"
	"EcoTrack/internal/services/textgen"
	"EcoTrack/internal/usecase"
	pkgch "EcoTrack/pkg/clickhouse"
	"EcoTrack/pkg/config"
	xhttp "EcoTrack/pkg/http"
	pkgkafka "EcoTrack/pkg/kafka"
	applogger "EcoTrack/pkg/logger"
	"EcoTrack/pkg/metrics"
	"EcoTrack/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: cfg.Log.TimeFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client and ensures the schema exists.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, internalrepo.Schema(cfg.ClickHouse.Database)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideEmissionsStore creates the ClickHouse-backed emissions store.
func ProvideEmissionsStore(ch *pkgch.Client, l *applogger.Logger) repository.EmissionsStore {
	store := internalrepo.NewCHEmissionsStore(ch)
	store.SetLogger(l)
	return store
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithDelivery(cfg.Kafka.RequiredAcks, cfg.Kafka.Producer.MaxAttempts, cfg.Kafka.Producer.Async),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideAlertPublisher publishes anomaly alerts to Kafka, or drops them when Kafka is disabled.
func ProvideAlertPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.AlertPublisher {
	if producer == nil {
		return internalrepo.NoopAlertPublisher{}
	}
	return internalrepo.NewKafkaAlertPublisher(producer, cfg.Kafka.AlertsTopic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML, or nil when Kafka is disabled.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger, m repository.Metrics) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(l,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.NewHookChain(
		pkgkafka.TraceHook(),
		pkgkafka.HookFuncs{
			Err: func(_ context.Context, topic string, _ kafka.Message, _ []byte, _ error) {
				m.RecordError("kafka_handle:" + topic)
			},
		},
	))
	return consumer, nil
}

// ProvideReadingsHandler consumes the readings topic into the store.
func ProvideReadingsHandler(cfg *config.Config, store repository.EmissionsStore, m repository.Metrics) *usecase.ReadingsHandler {
	return usecase.NewReadingsHandler(cfg.Kafka.ReadingsTopic, store, m)
}

// ProvideRedisCache returns nil when Redis is disabled.
func ProvideRedisCache(cfg *config.Config) *icache.RedisCache {
	if !cfg.Redis.Enabled {
		return nil
	}
	return icache.NewRedisCache(icache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// ProvideInsightsCache prefers Redis and falls back to process memory.
// Payloads are snappy-compressed either way.
func ProvideInsightsCache(redis *icache.RedisCache) icache.BytesCache {
	if redis != nil {
		return icache.NewSnappyCache(redis)
	}
	return icache.NewSnappyCache(icache.NewTTLCache())
}

// ProvideTextGenerator returns nil (catalog only) unless textgen is enabled.
func ProvideTextGenerator(cfg *config.Config) domsvc.TextGenerator {
	if !cfg.TextGen.Enabled {
		return nil
	}
	return textgen.NewChatClient(textgen.Options{
		BaseURL:     cfg.TextGen.BaseURL,
		APIKey:      cfg.TextGen.APIKey,
		Model:       cfg.TextGen.Model,
		MaxTokens:   cfg.TextGen.MaxTokens,
		Temperature: cfg.TextGen.Temperature,
		Timeout:     cfg.TextGen.Timeout,
	})
}

func ProvideRecommender(gen domsvc.TextGenerator, cfg *config.Config, l *applogger.Logger, m repository.Metrics) domsvc.RecommendationProvider {
	return recommendation.NewAdapter(gen, cfg.TextGen.Timeout, l, m)
}

func ProvideAnalyzer(cfg *config.Config) domsvc.Analyzer {
	return analytics.NewEngine(analytics.DetectorConfig{
		DetectThreshold: cfg.Analytics.DetectThreshold,
		HighThreshold:   cfg.Analytics.HighThreshold,
	})
}

func ProvideInsightsAggregator(
	store repository.EmissionsStore,
	analyzer domsvc.Analyzer,
	recommender domsvc.RecommendationProvider,
	publisher repository.AlertPublisher,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.InsightsAggregator {
	return usecase.NewInsightsAggregator(store, analyzer, recommender, publisher, m, l, cfg.Analytics.Timeout)
}

func ProvideInsightsRefresher(
	agg *usecase.InsightsAggregator,
	store repository.EmissionsStore,
	c icache.BytesCache,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.InsightsRefresher {
	return usecase.NewInsightsRefresher(agg, store, c, m, l,
		cfg.Analytics.RefreshCron, cfg.Analytics.HistoryMonths, cfg.Analytics.CacheTTL)
}

// ProvideFootprintHandler builds the HTTP handler with cache, rate limits and health checks.
func ProvideFootprintHandler(
	l *applogger.Logger,
	agg *usecase.InsightsAggregator,
	store repository.EmissionsStore,
	c icache.BytesCache,
	cfg *config.Config,
) *api.FootprintHandler {
	h := api.NewFootprintHandler(l, agg)
	h.SetCache(c, cfg.Analytics.CacheTTL)
	h.SetRateRules(api.RateRules{
		Insights:   ratelimit.PerSecond(cfg.Analytics.RateLimit.Insights),
		Analyze:    ratelimit.PerSecond(cfg.Analytics.RateLimit.Analyze),
		Recommends: ratelimit.PerSecond(cfg.Analytics.RateLimit.Recommends),
	})
	h.AddHealthCheck("clickhouse", store.Health)
	h.AddHealthCheck("cache", c.Ping)
	return h
}

// ProvideHTTPServer creates the echo server.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, h *api.FootprintHandler) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(l, h,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	chClient *pkgch.Client,
	refresher *usecase.InsightsRefresher,
	consumer *pkgkafka.Consumer,
	readings *usecase.ReadingsHandler,
	producer *pkgkafka.Producer,
	redis *icache.RedisCache,
) *server.App {
	app := server.New(cfg, l, srv, chClient, refresher)
	if consumer != nil {
		app.SetConsumer(consumer, readings)
	}
	if producer != nil {
		app.SetProducer(producer)
		if cfg.Log.Collector.Enabled {
			l.AddCollector(&applogger.CollectionConfig{
				TimeInterval:   cfg.Log.Collector.FlushInterval,
				CountThreshold: cfg.Log.Collector.MaxBatchSize,
				Topic:          cfg.Kafka.LogsTopic,
				Publisher:      producer,
			})
		}
	}
	if redis != nil {
		app.AddCloser(redis)
	}
	return app
}
