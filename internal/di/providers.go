package di

import (
	"context"
	"fmt"
	"time"

	domrepo "WatchPull/internal/domain/repository"
	domservice "WatchPull/internal/domain/service"
	mid "WatchPull/internal/middleware"
	internalrepo "WatchPull/internal/repository"
	"WatchPull/internal/service/analyzer"
	"WatchPull/internal/service/docpub"
	"WatchPull/internal/service/marketdata"
	"WatchPull/internal/service/notification"
	"WatchPull/internal/service/quotefeed"
	"WatchPull/internal/service/review"
	"WatchPull/internal/service/scanner"
	"WatchPull/internal/service/search"
	"WatchPull/internal/usecase"
	pkgcache "WatchPull/pkg/cache"
	pkgch "WatchPull/pkg/clickhouse"
	"WatchPull/pkg/config"
	pkgkafka "WatchPull/pkg/kafka"
	xlogger "WatchPull/pkg/logger"
	"WatchPull/pkg/metrics"
	"WatchPull/pkg/server"
)

// ProvideCacheService builds the snapshot cache: layered memory+redis when
// redis is configured, memory-only otherwise.
func ProvideCacheService(cfg *config.Config) (pkgcache.Service, error) {
	if cfg.Cache.Redis.Enabled {
		rc, err := pkgcache.NewRedisCache(
			pkgcache.WithRedisHost(cfg.Cache.Redis.Host),
			pkgcache.WithRedisPort(cfg.Cache.Redis.Port),
			pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
			pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return pkgcache.NewLayeredCache(rc, pkgcache.WithLayeredMemorySize(cfg.Cache.MemorySize)), nil
	}
	if cfg.Cache.MemorySize > 0 {
		return pkgcache.NewMemoryCache(pkgcache.WithMemoryMaxSize(cfg.Cache.MemorySize)), nil
	}
	return pkgcache.NewMemoryCache(), nil
}

// ProvideMarketData creates the market data client.
func ProvideMarketData(cfg *config.Config, cacheSvc pkgcache.Service) *marketdata.Client {
	return marketdata.NewClient(cfg.MarketData.APIURL, cfg.MarketData.Timeout, cacheSvc, cfg.MarketData.CacheTTL)
}

// ProvideAnalyzer creates the LLM-backed analyzer.
func ProvideAnalyzer(cfg *config.Config, md *marketdata.Client, logger *xlogger.Logger) *analyzer.LLMAnalyzer {
	return analyzer.New(md, logger,
		cfg.LLM.APIURL,
		cfg.LLM.APIKey,
		cfg.LLM.Model,
		cfg.LLM.Timeout,
		cfg.LLM.MaxAttempts,
		cfg.LLM.MaxRPS,
	)
}

// ProvideQuoteBoard creates the shared live-price board. Quotes older than
// two minutes are considered stale.
func ProvideQuoteBoard() *usecase.QuoteBoard {
	return usecase.NewQuoteBoard(2 * time.Minute)
}

// ProvideScanProbe creates the market scanner, preferring board prices when
// the quote feed is running.
func ProvideScanProbe(md *marketdata.Client, logger *xlogger.Logger, board *usecase.QuoteBoard) domservice.ScanProbe {
	return scanner.New(md, logger, scanner.WithLivePrices(board.LastPrice))
}

// ProvideSearch creates the news search client; nil when unconfigured.
func ProvideSearch(cfg *config.Config) domservice.SearchService {
	if cfg.Search.APIURL == "" {
		return nil
	}
	return search.New(cfg.Search.APIURL, cfg.Search.APIKey, 10*time.Second)
}

// ProvideReviewer creates the market reviewer.
func ProvideReviewer(cfg *config.Config, md *marketdata.Client, srch domservice.SearchService, llm *analyzer.LLMAnalyzer, logger *xlogger.Logger) domservice.MarketReviewer {
	return review.New(md, srch, llm, logger, cfg.Review.IndexSymbols, cfg.Search.Limit)
}

// ProvideDocPublisher creates the doc publisher; nil when unconfigured.
func ProvideDocPublisher(cfg *config.Config) domservice.DocPublisher {
	if cfg.Docs.APIURL == "" {
		return nil
	}
	return docpub.New(cfg.Docs.APIURL, cfg.Docs.AppID, cfg.Docs.AppSecret, cfg.Docs.Folder, 15*time.Second)
}

// ProvideKafkaProducer creates a Kafka producer; nil when no brokers are
// configured.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideNotifier selects the notification backend. Disabled notification
// yields a nil notifier; the gate treats that like suppression.
func ProvideNotifier(cfg *config.Config, producer *pkgkafka.Producer) (domrepo.Notifier, error) {
	if !cfg.Notify.Enabled {
		return nil, nil
	}
	switch cfg.Notify.Backend {
	case "kafka":
		if producer == nil {
			return nil, fmt.Errorf("kafka notify backend requires brokers")
		}
		return internalrepo.NewKafkaNotifier(producer, cfg.Kafka.NotifyTopic), nil
	default:
		return notification.NewWebhook(cfg.Notify.WebhookURL, 10*time.Second), nil
	}
}

// ProvideKafkaConsumer creates the run-request consumer; nil when the
// requests topic is not configured.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.RequestsTopic == "" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
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
	return consumer, nil
}

// ProvideClickHouseClient connects to ClickHouse; nil when no host is
// configured (runs then skip persistence).
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.ClickHouse.Host == "" {
		return nil, nil
	}
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
	return client, nil
}

// ProvideResultStore builds the ClickHouse result store and initializes its
// schema; nil when ClickHouse is not configured.
func ProvideResultStore(chClient *pkgch.Client, cfg *config.Config) (domrepo.ResultStore, error) {
	if chClient == nil {
		return nil, nil
	}
	store := internalrepo.NewClickHouseResultStore(chClient.DB(), cfg.ClickHouse.Database+".watch_results")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("result store schema: %w", err)
	}
	return store, nil
}

// ProvideQuoteStream creates the WebSocket quote feed; nil when no URL is
// configured.
func ProvideQuoteStream(cfg *config.Config) domrepo.QuoteStream {
	if cfg.Quotes.WebSocketURL == "" {
		return nil
	}
	return quotefeed.New(
		cfg.Quotes.APIKey,
		cfg.Quotes.WebSocketURL,
		cfg.Watchlist.Symbols,
		cfg.Quotes.ReconnectDelay,
		cfg.Quotes.PingInterval,
	)
}

// ProvideQuoteCollector wires the quote feed through the validation pipeline
// into the board; nil when there is no feed.
func ProvideQuoteCollector(stream domrepo.QuoteStream, board *usecase.QuoteBoard, m domrepo.Metrics) *usecase.QuoteCollector {
	if stream == nil {
		return nil
	}
	pipe := mid.NewQuotePipeline(board, m, mid.WithMaxRPS(20))
	return usecase.NewQuoteCollector(stream, board, pipe, m)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideAssembler creates the work-list assembler.
func ProvideAssembler(probe domservice.ScanProbe, logger *xlogger.Logger) *usecase.Assembler {
	return usecase.NewAssembler(probe, logger)
}

// ProvidePipeline assembles the run pipeline from configuration.
func ProvidePipeline(
	cfg *config.Config,
	assembler *usecase.Assembler,
	llm *analyzer.LLMAnalyzer,
	reviewer domservice.MarketReviewer,
	notifier domrepo.Notifier,
	store domrepo.ResultStore,
	docs domservice.DocPublisher,
	m domrepo.Metrics,
	logger *xlogger.Logger,
) *usecase.Pipeline {
	deps := usecase.PipelineDeps{
		Assembler: assembler,
		Analyzer:  llm,
		Reviewer:  reviewer,
		Notifier:  notifier,
		Store:     store,
		Docs:      docs,
		Metrics:   m,
		Logger:    logger,
	}
	settings := usecase.PipelineSettings{
		Symbols:       cfg.Watchlist.Symbols,
		ScanLimit:     cfg.Watchlist.ScanLimit,
		Workers:       cfg.Watchlist.Workers,
		Cooldown:      cfg.Watchlist.Cooldown,
		ReviewEnabled: cfg.Review.Enabled,
		NotifyEnabled: cfg.Notify.Enabled,
		NotifyMode:    cfg.Notify.Mode,
	}
	return usecase.NewPipeline(deps, settings)
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	logger *xlogger.Logger,
	pipeline *usecase.Pipeline,
	collector *usecase.QuoteCollector,
	consumer *pkgkafka.Consumer,
	producer *pkgkafka.Producer,
	store domrepo.ResultStore,
	m domrepo.Metrics,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	return server.New(cfg, logger, pipeline, collector, consumer, producer, store, m)
}
