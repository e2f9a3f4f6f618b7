package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/radarfiscal/radar/internal/catalog"
	"github.com/radarfiscal/radar/internal/config"
	"github.com/radarfiscal/radar/internal/database"
	"github.com/radarfiscal/radar/internal/dedupe"
	"github.com/radarfiscal/radar/internal/events"
	"github.com/radarfiscal/radar/internal/funnel"
	"github.com/radarfiscal/radar/internal/handler/health"
	"github.com/radarfiscal/radar/internal/migrations"
	"github.com/radarfiscal/radar/internal/payment"
	"github.com/radarfiscal/radar/internal/scoring"
	"github.com/radarfiscal/radar/internal/server"
)

const webhookRetention = 48 * time.Hour

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	if err := migrations.Run(db, logger); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	required := map[string]health.Checker{"sqlite": health.SQL(db)}
	optional := map[string]health.Checker{}

	// --- Master data ---
	cat, rules := catalog.LoadOrDefault(logger, cfg.CatalogPath, cfg.RulesPath)
	engine := scoring.New(cat, rules)

	// --- Redis (optional) ---
	var guard dedupe.Guard = dedupe.NewMemory(webhookRetention)
	if cfg.RedisURL != "" {
		rdb, err := openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		guard = dedupe.NewRedis(rdb, webhookRetention)
		optional["redis"] = health.Redis(rdb)
		logger.Info("connected to redis")
	}

	// --- Events ---
	broker := events.NewBroker()
	notifier := events.Fanout{broker}
	if cfg.AMQPURL != "" {
		pub, err := events.NewPublisher(cfg.AMQPURL, logger)
		if err != nil {
			return fmt.Errorf("connecting to rabbitmq: %w", err)
		}
		defer pub.Close()
		notifier = append(notifier, pub)
		optional["rabbitmq"] = pub
		logger.Info("connected to rabbitmq")
	}

	// --- Payments ---
	var gateway payment.Gateway = payment.Mock{}
	if cfg.MockPayments() {
		logger.Warn("MP_ACCESS_TOKEN not set, using mock payments")
	} else {
		gateway = payment.NewMercadoPago(payment.MercadoPagoConfig{
			AccessToken:     cfg.MPAccessToken,
			BaseURL:         cfg.MPBaseURL,
			NotificationURL: strings.TrimRight(cfg.AppBaseURL, "/") + "/api/webhooks/mercadopago",
		})
	}
	if cfg.MPWebhookSecret == "" {
		logger.Warn("MP_WEBHOOK_SECRET not set, webhook signatures are not checked")
	}

	svc := funnel.NewService(funnel.Deps{
		Store:      funnel.NewSQLiteStore(db),
		Gateway:    gateway,
		Engine:     engine,
		Guard:      guard,
		Notifier:   notifier,
		Logger:     logger,
		PriceCents: cfg.PriceCents,
		Currency:   cfg.Currency,
	})

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Funnel:        svc,
		Broker:        broker,
		Health:        health.NewHandler(logger, required, optional).Routes(),
		WebhookSecret: cfg.MPWebhookSecret,
		SPADir:        cfg.SPADir,
		CORSOrigins:   cfg.CORSOrigins,
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}
