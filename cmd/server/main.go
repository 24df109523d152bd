package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"vanity/internal/jwt_token"
	"vanity/internal/platform/config"
	"vanity/internal/platform/httpserver"
	"vanity/internal/platform/logger"
	"vanity/internal/platform/middleware"
	platformpostgres "vanity/internal/platform/postgres"
	platformredis "vanity/internal/platform/redis"
	registryhandler "vanity/internal/registry/handler"
	registrymetrics "vanity/internal/registry/metrics"
	"vanity/internal/registry/service"
	ownershipstore "vanity/internal/registry/store/ownership"
	reservationstore "vanity/internal/registry/store/reservation"
	"vanity/internal/settlement"
	id "vanity/pkg/domain"
	audit "vanity/pkg/platform/audit"
	auditkafka "vanity/pkg/platform/audit/kafka"
	"vanity/pkg/platform/audit/publisher"
	auditmemory "vanity/pkg/platform/audit/store/memory"
	auditpostgres "vanity/pkg/platform/audit/store/postgres"
)

// main wires the stores, the settlement ledger, the audit pipeline and the
// HTTP surface, then runs the server until a shutdown signal. Business logic
// lives in internal/registry.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Backing stores. Empty URLs select the in-memory implementations, which
	// is the single-node development mode.
	pool, err := platformpostgres.Connect(ctx, cfg.PostgresURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var reservations service.ReservationStore
	switch {
	case redisClient != nil:
		reservations = reservationstore.NewRedis(redisClient.Client)
	case pool != nil:
		store := reservationstore.NewPostgres(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			log.Error("reservations schema setup failed", "error", err)
			os.Exit(1)
		}
		reservations = store
	default:
		reservations = reservationstore.NewInMemory()
	}

	var ownerships service.OwnershipStore
	if pool != nil {
		store := ownershipstore.NewPostgres(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			log.Error("ownerships schema setup failed", "error", err)
			os.Exit(1)
		}
		ownerships = store
	} else {
		ownerships = ownershipstore.NewInMemory()
	}

	auditPublisher, err := buildAuditPublisher(ctx, cfg, log)
	if err != nil {
		log.Error("audit pipeline setup failed", "error", err)
		os.Exit(1)
	}
	defer auditPublisher.Close()

	ledger := settlement.NewInMemoryLedger()
	seedDevAccounts(ctx, ledger, log)

	svc := service.New(
		service.Config{
			BasePrice:     cfg.BasePrice,
			Advance:       cfg.Advance,
			LockingPeriod: cfg.LockingPeriod,
			RenewPeriod:   cfg.RenewPeriod,
		},
		reservations,
		ownerships,
		ledger,
		service.WithLogger(log),
		service.WithMetrics(registrymetrics.New()),
		service.WithAuditPublisher(auditPublisher),
	)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "vanity", "vanity-api")
	h := registryhandler.New(svc, log)

	router := chi.NewRouter()
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestTime)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if pool != nil {
			if err := pool.Ping(r.Context()); err != nil {
				http.Error(w, "postgres unreachable", http.StatusServiceUnavailable)
				return
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				http.Error(w, "redis unreachable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Group(h.RegisterPublic)
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(jwttoken.NewMiddlewareAdapter(jwtService), log))
		h.RegisterProtected(r)
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting vanity registry", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// buildAuditPublisher selects the audit store (postgres when configured,
// memory otherwise) and attaches the Kafka sink when brokers are set.
func buildAuditPublisher(ctx context.Context, cfg config.Server, log *slog.Logger) (*publisher.Publisher, error) {
	var store audit.Store
	if cfg.PostgresURL != "" {
		pgStore, err := auditpostgres.Open(cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		if err := pgStore.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		store = pgStore
	} else {
		store = auditmemory.NewInMemoryStore()
	}

	opts := []publisher.Option{publisher.WithAsyncBuffer(256)}
	if len(cfg.KafkaBrokers) > 0 {
		sink, err := auditkafka.New(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, err
		}
		opts = append(opts, publisher.WithSink(sink))
		log.Info("audit events forwarded to kafka", "topic", cfg.KafkaTopic)
	}
	return publisher.NewPublisher(store, opts...), nil
}

// seedDevAccounts funds ledger accounts from VANITY_DEV_ACCOUNTS, a
// comma-separated list of account=balance pairs. Development only; the
// registry never credits accounts itself.
func seedDevAccounts(ctx context.Context, ledger *settlement.InMemoryLedger, log *slog.Logger) {
	raw := os.Getenv("VANITY_DEV_ACCOUNTS")
	if raw == "" {
		return
	}
	for _, pair := range strings.Split(raw, ",") {
		account, balance, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			continue
		}
		parsedAccount, err := id.ParseAccountID(account)
		if err != nil {
			log.Warn("skipping invalid dev account", "account", account)
			continue
		}
		amount, err := id.ParseAmount(balance)
		if err != nil {
			log.Warn("skipping invalid dev balance", "account", account, "balance", balance)
			continue
		}
		ledger.Credit(ctx, parsedAccount, amount)
		log.Info("seeded dev account", "account", account, "balance", balance)
	}
}
