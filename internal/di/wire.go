//go:build wireinject
// +build wireinject

package di

import (
	"EcoTrack/pkg/config"
	"EcoTrack/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideRedisCache,

		// Repositories
		ProvideEmissionsStore,
		ProvideAlertPublisher,
		ProvideInsightsCache,

		// Services and use cases
		ProvideTextGenerator,
		ProvideRecommender,
		ProvideAnalyzer,
		ProvideInsightsAggregator,
		ProvideInsightsRefresher,
		ProvideReadingsHandler,

		// Transport
		ProvideFootprintHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
