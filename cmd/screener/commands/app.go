package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/joho/godotenv"

	"github.com/wonny/moatscreen/internal/api/ws"
	"github.com/wonny/moatscreen/internal/contracts"
	"github.com/wonny/moatscreen/internal/external/quote"
	"github.com/wonny/moatscreen/internal/external/treasury"
	"github.com/wonny/moatscreen/internal/screening"
	"github.com/wonny/moatscreen/internal/strategyconfig"
	"github.com/wonny/moatscreen/pkg/config"
	"github.com/wonny/moatscreen/pkg/database"
	"github.com/wonny/moatscreen/pkg/httputil"
	"github.com/wonny/moatscreen/pkg/logger"
	"github.com/wonny/moatscreen/pkg/redis"
)

// cacheNamespace prefixes every Redis key and rate-limit bucket
const cacheNamespace = "moatscreen"

// app bundles the wired dependencies shared by every command
// ⭐ SSOT: 의존성 조립은 여기서만
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	db        *database.DB
	redis     *redis.Client
	quotes    *quote.Client
	runs      contracts.AnalysisRunRepository
	watchlist contracts.WatchlistRepository
	service   *screening.Service
	hub       *ws.Hub
}

type appOptions struct {
	withHub bool // API 서버만 websocket 허브 사용
}

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		if err := godotenv.Load(configFile); err != nil {
			return nil, fmt.Errorf("load %s: %w", configFile, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if protocolFile != "" {
		cfg.Screening.ProtocolFile = protocolFile
	}
	return cfg, nil
}

func newApp(ctx context.Context, opts appOptions) (*app, error) {
	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	// 2. Initialize logger
	log := logger.New(cfg)
	a := &app{cfg: cfg, log: log}

	// 3. Redis (disabled → cache no-op, local rate limiter)
	a.redis, err = redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	cache := redis.NewCache(a.redis, cacheNamespace)

	// 4. Run store: PostgreSQL when configured, in-memory otherwise
	a.db, err = database.New(cfg)
	switch {
	case errors.Is(err, database.ErrDisabled):
		a.db = nil
		store := screening.NewMemoryStore(0)
		a.runs, a.watchlist = store, store
		log.Info("DATABASE_URL not set, using in-memory run store")
	case err != nil:
		a.close()
		return nil, fmt.Errorf("connect to database: %w", err)
	default:
		if err := screening.Migrate(ctx, a.db); err != nil {
			a.close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		repo := screening.NewRepository(a.db)
		a.runs, a.watchlist = repo, repo
		log.Info("Connected to database")
	}

	// 5. External clients
	quoteHTTP := httputil.New(cfg, log).WithLimiter(quote.NewLimiter(a.redis, cacheNamespace, cfg.Quote.RatePerSec))
	scraperHTTP := httputil.New(cfg, log)
	if a.redis.Enabled() {
		scraperHTTP = scraperHTTP.WithLimiter(redis.NewRateLimiter(a.redis, cacheNamespace).Bind(redis.TreasuryRateLimit))
	}
	scraper := treasury.NewClient(scraperHTTP, log, cfg.Treasury.PageURL, cfg.Treasury.Selector)
	a.quotes = quote.NewClient(quoteHTTP, cfg.Quote.BaseURL, log,
		quote.WithCache(cache),
		quote.WithTreasuryScraper(scraper),
	)

	// 6. Protocol
	protocol, err := strategyconfig.LoadOrDefault(cfg.Screening.ProtocolFile)
	if err != nil {
		a.close()
		return nil, err
	}
	for _, w := range strategyconfig.Warn(protocol) {
		log.WithField("code", w.Code).Warn(w.Message)
	}

	// 7. Screening service
	serviceOpts := []screening.Option{
		screening.WithRunStore(a.runs),
		screening.WithCache(cache),
		screening.WithInvestor(cfg.Screening.InvestorName, cfg.Screening.TotalCapital),
		screening.WithLogger(log),
	}
	if opts.withHub {
		a.hub = ws.NewHub(log)
		serviceOpts = append(serviceOpts, screening.WithNotifier(a.hub))
	}

	a.service, err = screening.NewService(a.quotes, protocol, serviceOpts...)
	if err != nil {
		a.close()
		return nil, err
	}

	return a, nil
}

func (a *app) close() {
	if a.hub != nil {
		a.hub.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
