//go:build wireinject
// +build wireinject

package di

import (
	"WatchPull/pkg/config"
	xlogger "WatchPull/pkg/logger"
	"WatchPull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config, logger *xlogger.Logger) (*server.App, error) {
	wire.Build(
		// Metrics
		ProvideMetrics,

		// Infrastructure clients
		ProvideCacheService,
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideResultStore,
		ProvideNotifier,
		ProvideQuoteStream,

		// Services
		ProvideMarketData,
		ProvideAnalyzer,
		ProvideScanProbe,
		ProvideSearch,
		ProvideReviewer,
		ProvideDocPublisher,

		// Use cases
		ProvideQuoteBoard,
		ProvideQuoteCollector,
		ProvideAssembler,
		ProvidePipeline,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
