package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"restaurant-app/config"
	httpapi "restaurant-app/order-svc/internal/api/http"
	"restaurant-app/order-svc/internal/gateway"
	"restaurant-app/order-svc/internal/metrics"
	"restaurant-app/order-svc/internal/service"
	"restaurant-app/order-svc/internal/storage"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// dependencies are the external resources the service is wired onto.
type dependencies struct {
	DB         *sql.DB
	Redis      *redis.Client
	Writer     storage.MessageWriter
	HTTPClient gateway.HTTPClient
	Logger     *zap.Logger
}

// newHandler wires the service; background work stops with ctx.
func newHandler(ctx context.Context, cfg config.Config, deps dependencies) http.Handler {
	logger := deps.Logger
	m := metrics.New("order_svc")

	partner := gateway.NewClient(gateway.Config{
		BaseURL:       cfg.PartnerBaseURL,
		PartnerAPIKey: cfg.PartnerAPIKey,
	}, deps.HTTPClient, logger.Named("gateway"))

	catalog := service.NewCatalogService(partner, storage.NewRedisCache(deps.Redis, cfg.CatalogCacheTTL), logger.Named("catalog"))
	receipts := service.NewReceiptService(
		storage.NewPostgresRepository(deps.DB),
		service.DefaultQRGenerator{BaseURL: cfg.ReceiptBaseURL},
		logger.Named("receipts"),
	)
	publisher := storage.NewKafkaPublisher(deps.Writer)

	sessions := service.NewSessions(service.SessionsConfig{
		IdleTTL:     cfg.SessionIdleTTL,
		MaxSessions: cfg.MaxSessions,
	}, func(id string) *service.Session {
		cart := service.NewCartStore(logger.Named("cart").With(zap.String("session_id", id)))
		cart.Subscribe(m.CartUpdated)

		checkout := service.NewCheckout(service.CheckoutConfig{
			SessionID: id,
			Timeout:   cfg.SubmitTimeout,
		}, cart, partner, receipts, publisher, logger.Named("checkout"))
		checkout.Subscribe(m.CheckoutChanged)

		return &service.Session{ID: id, Cart: cart, Checkout: checkout}
	}, logger.Named("sessions"))
	go sessions.Run(ctx)

	handler := httpapi.NewHandler(catalog, sessions, receipts, logger.Named("http"))
	return httpapi.NewRouter(handler, m)
}

func main() {
	cfg := config.Load()

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.PartnerAPIKey == "" {
		logger.Warn("PARTNER_API_KEY is not set; partner requests will be rejected")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := config.MustInitPostgres(logger)
	defer db.Close()
	if err := storage.NewPostgresRepository(db).EnsureSchema(ctx); err != nil {
		logger.Fatal("failed to ensure schema", zap.Error(err))
	}

	rdb := config.MustInitRedis(logger)
	defer rdb.Close()

	writer := config.NewKafkaWriter(cfg.KafkaBrokers, cfg.OrderTopic)
	defer writer.Close()

	handler := newHandler(ctx, cfg, dependencies{
		DB:         db,
		Redis:      rdb,
		Writer:     writer,
		HTTPClient: &http.Client{Timeout: gateway.DefaultTimeout},
		Logger:     logger,
	})

	if err := httpapi.StartServer(ctx, cfg.HTTPAddr, handler, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
