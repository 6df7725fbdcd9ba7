package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/GonzanDev/sellos-pro/internal/cart"
	"github.com/GonzanDev/sellos-pro/internal/cart/persistence"
	"github.com/GonzanDev/sellos-pro/internal/catalog"
	catalogrepo "github.com/GonzanDev/sellos-pro/internal/catalog/repository"
	"github.com/GonzanDev/sellos-pro/internal/checkout"
	checkoutrepo "github.com/GonzanDev/sellos-pro/internal/checkout/repository"
	"github.com/GonzanDev/sellos-pro/internal/httpapi"
	"github.com/GonzanDev/sellos-pro/internal/notify"
	"github.com/GonzanDev/sellos-pro/internal/payment"
	"github.com/GonzanDev/sellos-pro/internal/poller"
	"github.com/GonzanDev/sellos-pro/internal/relay"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type Config struct {
	HTTPPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	CatalogDBPath         string
	CatalogMigrationsPath string

	CartStore  string // memory | redis | pebble | mongo
	RedisAddr  string
	RedisPass  string
	PebblePath string
	MongoURI   string
	MongoDB    string

	CheckoutDBHost           string
	CheckoutDBPort           string
	CheckoutDBUser           string
	CheckoutDBPass           string
	CheckoutDBName           string
	CheckoutMigrationsPath   string
	CheckoutDisablePostgres  bool
	PaymentBaseURL           string
	PaymentAccessToken       string
	MessagingBaseURL         string
	MessagingAPIKey          string
	MerchantPhone            string
	KafkaBrokers             string
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,

		CatalogDBPath:         getEnv("CATALOG_DB_PATH", "./sellos.db"),
		CatalogMigrationsPath: getEnv("CATALOG_MIGRATIONS_PATH", "./internal/catalog/repository/migrations"),

		CartStore:  getEnv("CART_STORE", "pebble"),
		RedisAddr:  getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:  getEnv("REDIS_PASSWORD", ""),
		PebblePath: getEnv("PEBBLE_PATH", "./carts.pebble"),
		MongoURI:   getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:    getEnv("MONGO_DB_NAME", "sellosdb"),

		CheckoutDBHost:          getEnv("CHECKOUT_DB_HOST", "localhost"),
		CheckoutDBPort:          getEnv("CHECKOUT_DB_PORT", "5432"),
		CheckoutDBUser:          getEnv("CHECKOUT_DB_USER", "postgres"),
		CheckoutDBPass:          getEnv("CHECKOUT_DB_PASSWORD", "postgres"),
		CheckoutDBName:          getEnv("CHECKOUT_DB_NAME", "sellos"),
		CheckoutMigrationsPath:  getEnv("CHECKOUT_MIGRATIONS_PATH", "./internal/checkout/repository/migrations"),
		CheckoutDisablePostgres: getEnv("CHECKOUT_DB_DISABLED", "") != "",

		PaymentBaseURL:     getEnv("PAYMENT_BASE_URL", "https://api.mercadopago.com"),
		PaymentAccessToken: getEnv("PAYMENT_ACCESS_TOKEN", ""),
		MessagingBaseURL:   getEnv("MESSAGING_BASE_URL", ""),
		MessagingAPIKey:    getEnv("MESSAGING_API_KEY", ""),
		MerchantPhone:      getEnv("MERCHANT_PHONE", ""),
		KafkaBrokers:       getEnv("KAFKA_BROKERS", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := loadConfig()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Catalog
	catalogRepo, err := catalogrepo.NewRepository(cfg.CatalogDBPath)
	if err != nil {
		logger.Fatal("failed to open catalog database", zap.Error(err))
	}
	defer catalogRepo.Close()
	if err := catalogRepo.RunMigrations(cfg.CatalogMigrationsPath); err != nil {
		logger.Fatal("failed to run catalog migrations", zap.Error(err))
	}
	catalogService := catalog.NewService(catalogRepo)
	logger.Info("catalog ready", zap.String("db", cfg.CatalogDBPath))

	// Cart persistence
	cartPersistence, cleanup, err := buildCartPersistence(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to set up cart store", zap.Error(err))
	}
	if cleanup != nil {
		defer cleanup()
	}
	cartStore := cart.NewStore(cartPersistence, logger)
	logger.Info("cart store ready", zap.String("backend", cfg.CartStore))

	// Checkout submissions
	var submissions checkout.SubmissionRepository
	if !cfg.CheckoutDisablePostgres {
		port, err := strconv.Atoi(cfg.CheckoutDBPort)
		if err != nil {
			logger.Fatal("invalid CHECKOUT_DB_PORT", zap.Error(err))
		}
		creds := &checkoutrepo.Credentials{
			Host:              cfg.CheckoutDBHost,
			Port:              port,
			User:              cfg.CheckoutDBUser,
			Password:          cfg.CheckoutDBPass,
			DBName:            cfg.CheckoutDBName,
			MigrationsDirPath: cfg.CheckoutMigrationsPath,
		}
		repo, err := checkoutrepo.NewRepository(creds)
		if err != nil {
			logger.Fatal("failed to connect to checkout database", zap.Error(err))
		}
		defer repo.Close()
		if err := repo.RunMigrations(creds); err != nil {
			logger.Fatal("failed to run checkout migrations", zap.Error(err))
		}
		submissions = repo
		logger.Info("checkout submissions ready")
	} else {
		logger.Info("checkout postgres disabled, submissions kept in memory only")
	}

	paymentClient := payment.NewClient(cfg.PaymentBaseURL, cfg.PaymentAccessToken, 10*time.Second)
	checkoutService := checkout.NewService(paymentClient, submissions, logger, 10*time.Second)

	// Webhook relay and cart-clearing poller
	notifier := notify.NewMessagingClient(cfg.MessagingBaseURL, cfg.MessagingAPIKey, 10*time.Second)
	var publisher relay.Publisher
	if cfg.KafkaBrokers != "" {
		brokers := strings.Split(cfg.KafkaBrokers, ",")
		kafkaPublisher := relay.NewKafkaPublisher(brokers...)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher

		p := poller.NewPoller(cartStore, logger, brokers...)
		defer p.Close()
		go p.Run(ctx)
		logger.Info("payment event stream ready", zap.String("brokers", cfg.KafkaBrokers))
	} else {
		logger.Info("KAFKA_BROKERS not set, payment events disabled")
	}
	webhookRelay := relay.NewRelay(notifier, publisher, cfg.MerchantPhone, logger)

	// HTTP server
	router := httpapi.NewRouter(
		httpapi.NewProductHandler(catalogService, cfg.RequestTimeout),
		httpapi.NewCartHandler(cartStore, catalogService, cfg.RequestTimeout),
		httpapi.NewCheckoutHandler(checkoutService, cartStore, cfg.RequestTimeout),
		httpapi.NewWebhookHandler(webhookRelay, cfg.RequestTimeout),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("storefront starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down storefront...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("storefront stopped")
}

func buildCartPersistence(ctx context.Context, cfg *Config, logger *zap.Logger) (persistence.Store, func(), error) {
	switch cfg.CartStore {
	case "memory":
		return persistence.NewMemoryStore(), nil, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       0,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, err
		}
		logger.Info("redis ping succeeded", zap.String("addr", cfg.RedisAddr))
		return persistence.NewRedisStore(client), func() { client.Close() }, nil

	case "pebble":
		store, err := persistence.NewPebbleStore(cfg.PebblePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil

	case "mongo":
		db, err := persistence.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		store := persistence.NewMongoStore(db)
		if err := store.CreateIndexes(ctx); err != nil {
			return nil, nil, err
		}
		return store, func() { db.Client().Disconnect(context.Background()) }, nil

	default:
		return nil, nil, errors.New("unknown CART_STORE: " + cfg.CartStore)
	}
}
