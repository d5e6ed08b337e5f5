package di

import (
	"fmt"

	"github.com/aristath/invesmart/internal/clientdata"
	"github.com/aristath/invesmart/internal/clients/yahoo"
	"github.com/aristath/invesmart/internal/config"
	"github.com/aristath/invesmart/internal/domain"
	"github.com/aristath/invesmart/internal/events"
	"github.com/aristath/invesmart/internal/modules/portfolio"
	"github.com/aristath/invesmart/internal/modules/series"
	"github.com/aristath/invesmart/internal/modules/symbols"
	"github.com/aristath/invesmart/internal/modules/watchlist"
	"github.com/aristath/invesmart/internal/scheduler"
	"github.com/rs/zerolog"
)

// InitializeRepositories creates repositories over the open databases
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container.CacheDB != nil {
		container.ClientDataRepo = clientdata.NewRepository(container.CacheDB.Conn())
		log.Debug().Msg("Client data repository initialized")
	}
	return nil
}

// NewProvider builds the configured market data provider, wrapped in the
// response cache when repo is non-nil.
func NewProvider(cfg *config.Config, repo *clientdata.Repository, log zerolog.Logger) (domain.MarketDataProvider, error) {
	var provider domain.MarketDataProvider

	switch cfg.Yahoo.Provider {
	case config.ProviderHTTP, "":
		provider = yahoo.NewClient(yahoo.Config{
			BaseURL: cfg.Yahoo.BaseURL,
			Timeout: cfg.Yahoo.Timeout,
		}, log)
	case config.ProviderNative:
		provider = yahoo.NewNativeClient(log)
	default:
		return nil, fmt.Errorf("unknown market data provider %q", cfg.Yahoo.Provider)
	}

	if repo != nil {
		provider = yahoo.NewCachedProvider(provider, repo, log)
	}

	log.Info().
		Str("provider", cfg.Yahoo.Provider).
		Bool("cached", repo != nil).
		Msg("Market data provider initialized")

	return provider, nil
}

// InitializeServices creates the event bus and domain services
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	provider, err := NewProvider(cfg, container.ClientDataRepo, log)
	if err != nil {
		return err
	}
	container.Provider = provider

	container.EventBus = events.NewBus()
	container.EventManager = events.NewManager(container.EventBus, log)

	container.SeriesService = series.NewService(provider, container.EventManager, log)
	container.Aggregator = portfolio.NewAggregator(container.SeriesService, log)
	container.SymbolsService = symbols.NewService(provider, container.EventManager, log)
	container.Refresher = watchlist.NewRefresher(
		container.Aggregator,
		container.EventManager,
		cfg.Watchlist.Symbols,
		series.Range(cfg.Watchlist.Range),
		series.Interval(cfg.Watchlist.Interval),
		log,
	)

	container.Scheduler = scheduler.New(log)

	return nil
}
