package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	httpAdapter "github.com/agentpay/agentledger/internal/adapter/http"
	"github.com/agentpay/agentledger/internal/adapter/http/handler"
	memoryRepo "github.com/agentpay/agentledger/internal/adapter/repository/memory"
	postgresRepo "github.com/agentpay/agentledger/internal/adapter/repository/postgres"
	redisRepo "github.com/agentpay/agentledger/internal/adapter/repository/redis"
	"github.com/agentpay/agentledger/internal/adapter/tools"
	"github.com/agentpay/agentledger/internal/infrastructure/config"
	"github.com/agentpay/agentledger/internal/infrastructure/idgen"
	"github.com/agentpay/agentledger/internal/infrastructure/logger"
	"github.com/agentpay/agentledger/internal/infrastructure/metrics"
	"github.com/agentpay/agentledger/internal/infrastructure/postgres"
	"github.com/agentpay/agentledger/internal/infrastructure/redis"
	"github.com/agentpay/agentledger/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()
	m := metrics.New()

	// Storage backends
	var (
		balances    usecase.BalanceStore
		idemStore   usecase.IdempotencyStore
		pool        *pgxpool.Pool
		redisClient *goredis.Client
	)

	switch cfg.Storage {
	case "postgres":
		pool, err = postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to postgres")
		}
		defer pool.Close()

		if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		balances = postgresRepo.NewBalanceStore(pool)
		log.Info().Msg("using postgres balance store")

	case "redis":
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()

		balances = redisRepo.NewBalanceStore(redisClient)
		idemStore = redisRepo.NewIdempotencyStore(redisClient)
		log.Info().Msg("using redis balance store")

	default:
		balances = memoryRepo.NewBalanceStore()
		log.Info().Msg("using in-memory balance store")
	}

	quotes := memoryRepo.NewQuoteStore()
	idGen := idgen.NewULIDGenerator()

	// Use cases
	ledgerUC := usecase.NewLedgerUseCase(balances, cfg.Currency, logger.WithComponent(log, "ledger"), m)
	taxRate, err := decimal.NewFromString(cfg.TaxRate)
	if err != nil {
		log.Fatal().Err(err).Str("tax_rate", cfg.TaxRate).Msg("invalid tax rate")
	}
	pricing := usecase.NewPricingPolicy(taxRate)

	seedBalance(ctx, log, ledgerUC, cfg)

	// External tool clients; each runs in simulated mode when unconfigured
	search := tools.NewTavilyClient(cfg.TavilyAPIKey, nil)
	voice := tools.NewVapiClient(cfg.VapiSecretKey, cfg.VapiAssistantID, nil, func() string { return idGen.Generate() }, logger.WithComponent(log, "voice"))
	vision := tools.NewMenuVisionClient(cfg.OpenAIAPIKey)
	orders := tools.NewOrderPlacer(pricing, idGen, logger.WithComponent(log, "orders"))
	dispatcher := tools.NewDoorDashClient(cfg.DoorDashDeveloperID, cfg.DoorDashKeyID, cfg.DoorDashSigningKey, nil, logger.WithComponent(log, "delivery"))
	runner := tools.NewRunner(search, voice, vision, orders)

	chargeUC := usecase.NewChargeUseCase(ledgerUC, pricing, runner, cfg.ToolTimeout, logger.WithComponent(log, "charge"), m)
	quoteUC := usecase.NewQuoteUseCase(quotes, ledgerUC, dispatcher, idGen, cfg.QuoteTTL, logger.WithComponent(log, "quote"), m)

	// Router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		LedgerHandler:    handler.NewLedgerHandler(ledgerUC, cfg.AgentWallet),
		ChargeHandler:    handler.NewChargeHandler(chargeUC, cfg.Currency, cfg.AgentWallet),
		DeliveryHandler:  handler.NewDeliveryHandler(quoteUC, dispatcher, cfg.Currency, cfg.AgentWallet),
		HealthHandler:    handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore: idemStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		Logger:           logger.WithComponent(log, "http"),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// seedBalance credits the agent wallet on first boot. Wallets that
// already hold funds are left alone so restarts do not mint money.
func seedBalance(ctx context.Context, log zerolog.Logger, ledgerUC *usecase.LedgerUseCase, cfg *config.Config) {
	if cfg.AgentWallet == "" {
		return
	}

	starting, err := decimal.NewFromString(cfg.StartingBalance)
	if err != nil {
		log.Fatal().Err(err).Str("starting_balance", cfg.StartingBalance).Msg("invalid starting balance")
	}
	if !starting.IsPositive() {
		return
	}

	current, err := ledgerUC.GetBalance(ctx, cfg.AgentWallet)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read agent wallet balance")
	}
	if !current.IsZero() {
		return
	}

	if err := ledgerUC.SetBalance(ctx, cfg.AgentWallet, starting); err != nil {
		log.Fatal().Err(err).Msg("failed to seed agent wallet")
	}
	log.Info().Str("wallet", cfg.AgentWallet).Str("balance", starting.String()).Msg("seeded agent wallet")
}
