// @title           MetaStor API
// @version         1.0
// @description     Wallet-authenticated storage with on-chain subscription payments.
// @host            localhost:8080
// @schemes         http https
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"metastor/internal/api"
	"metastor/internal/auth"
	"metastor/internal/cache"
	"metastor/internal/config"
	"metastor/internal/database"
	"metastor/internal/events"
	"metastor/internal/logger"
	"metastor/internal/metrics"
	"metastor/internal/migrations"
	"metastor/internal/payment"
	"metastor/internal/plans"
	"metastor/internal/quota"
	"metastor/internal/scheduler"
	"metastor/internal/storage"
	"metastor/internal/subscription"
	"metastor/internal/websocket"

	_ "metastor/docs"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	dbpool, err := pgxpool.New(ctx, cfg.DB.Source)
	if err != nil {
		return err
	}
	defer dbpool.Close()

	if err := dbpool.Ping(ctx); err != nil {
		return err
	}
	log.Info().Msg("connected to database")

	if err := migrations.Run(stdlib.OpenDBFromPool(dbpool), cfg.DB.Migrations); err != nil {
		return err
	}
	store := database.NewStore(dbpool)

	var redisCache *cache.Cache
	if cfg.Redis.Addr != "" {
		redisCache, err = cache.InitServer(ctx, cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer redisCache.Close()
		log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")
	}

	oracle, refreshPrice := newOracle(cfg, redisCache, log)
	if price, err := oracle.Price(ctx); err != nil {
		log.Warn().Err(err).Str("oracle", cfg.Oracle.Kind).Msg("price oracle unavailable at startup")
	} else {
		metrics.SetOraclePrice(price)
	}

	ledgerRPC := payment.NewSolanaRPC(cfg.Solana.RPCURL, rpc.CommitmentType(cfg.Solana.Commitment))
	if err := ledgerRPC.Health(ctx); err != nil {
		log.Warn().Err(err).Str("rpc", cfg.Solana.RPCURL).Msg("ledger rpc is not healthy, continuing")
	}
	settlement, err := payment.NewSettlement(ledgerRPC, payment.Config{
		PlatformWallet: cfg.Solana.PlatformWallet,
		PollInterval:   cfg.Solana.PollInterval,
		ConfirmTimeout: cfg.Solana.ConfirmTimeout,
	})
	if err != nil {
		return err
	}
	settlement.SetObserver(metrics.ConfirmationObserver{})
	log.Info().Str("platform_wallet", settlement.PlatformWallet()).Msg("payments settle to platform wallet")

	wsHub := websocket.NewHub(log)
	go wsHub.Run(ctx)

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQP.URL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			return err
		}
		publisher = amqpPublisher
		log.Info().Str("exchange", cfg.AMQP.Exchange).Msg("publishing events to amqp")
	}
	defer publisher.Close()

	notifier := events.NewNotifier(store, wsHub, publisher, log)
	manager := subscription.NewManager(store, settlement, oracle, quota.NewLedger(store),
		subscription.WithNotifier(notifier))

	authOpts := []auth.Option{
		auth.WithAppName(cfg.Auth.AppName),
		auth.WithSessionTTL(cfg.JWT.TTL),
	}
	if cfg.Auth.NonceGuard {
		if redisCache == nil {
			return errors.New("auth.nonce_guard requires redis.addr")
		}
		authOpts = append(authOpts, auth.WithNonceGuard(auth.NewNonceGuard(redisCache, cfg.Auth.AppName, cfg.Auth.NonceMaxAge)))
	}
	authenticator := auth.NewAuthenticator(store, cfg.JWT.Secret, authOpts...)

	blobs, err := newBlobStore(cfg)
	if err != nil {
		return err
	}

	server, err := api.NewServer(cfg, api.Deps{
		Store:         store,
		Auth:          authenticator,
		Subscriptions: manager,
		Blobs:         blobs,
		Notifier:      notifier,
		Hub:           wsHub,
		Logger:        log,
	})
	if err != nil {
		return err
	}

	var loginLimiter *api.RateLimiter
	if cfg.Auth.RateLimit > 0 {
		loginLimiter = api.NewRateLimiter(cfg.Auth.RateLimit, cfg.Auth.RateBurst)
	}

	jobs := scheduler.New(log)
	if refreshPrice != nil && cfg.Oracle.RefreshSchedule != "" {
		if err := jobs.Add(scheduler.Job{
			Name:     "oracle_refresh",
			Schedule: cfg.Oracle.RefreshSchedule,
			Timeout:  10 * time.Second,
			Run: func(ctx context.Context) error {
				price, err := refreshPrice(ctx)
				if err != nil {
					return err
				}
				metrics.SetOraclePrice(price)
				return nil
			},
		}); err != nil {
			return err
		}
	}
	if loginLimiter != nil {
		if err := jobs.Add(scheduler.Job{
			Name:     "rate_limiter_cleanup",
			Schedule: "@every 5m",
			Run: func(context.Context) error {
				loginLimiter.Cleanup()
				return nil
			},
		}); err != nil {
			return err
		}
	}
	jobs.Start()
	log.Info().Int("jobs", jobs.Entries()).Msg("scheduler started")
	defer func() { <-jobs.Stop().Done() }()

	ln, err := net.Listen("tcp", cfg.HTTP.Addr)
	if err != nil {
		return err
	}
	log.Info().Str("addr", ln.Addr().String()).Msg("starting http server")
	return serve(ctx, newHTTPServer(ctx, server.Routes(loginLimiter)), ln, shutdownTimeout, log)
}

// newOracle builds the configured price source. The returned refresh func is
// non-nil when a cron job should keep a cached price warm.
func newOracle(cfg *config.Config, c *cache.Cache, log zerolog.Logger) (plans.PriceOracle, func(context.Context) (float64, error)) {
	var upstream plans.PriceOracle
	switch cfg.Oracle.Kind {
	case "http":
		upstream = plans.NewHTTPOracle(cfg.Oracle.URL, "solana", "usd")
	default:
		upstream = plans.NewStaticOracle(cfg.Oracle.StaticPrice)
	}
	if c == nil || cfg.Oracle.Kind != "http" {
		return upstream, nil
	}
	cached := cache.NewCachedOracle(c, upstream, cfg.Oracle.CacheTTL, log)
	return cached, cached.Refresh
}

func newBlobStore(cfg *config.Config) (storage.BlobStore, error) {
	switch cfg.Storage.Kind {
	case "ipfs":
		return storage.NewIPFSStorage(cfg.Storage.IPFSURL), nil
	default:
		return storage.NewLocalStorage(cfg.Storage.Path)
	}
}
