package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/go-storefront/storefront/internal/cart"
	"github.com/go-storefront/storefront/internal/catalog"
	"github.com/go-storefront/storefront/internal/checkout"
	"github.com/go-storefront/storefront/internal/orders"
	"github.com/go-storefront/storefront/internal/payment"
	"github.com/go-storefront/storefront/internal/pricing"
	"github.com/go-storefront/storefront/internal/publisher"
	"github.com/go-storefront/storefront/internal/stock"

	h "github.com/go-storefront/storefront/internal/http"
)

type Config struct {
	HTTPPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	CatalogDBPath         string
	CatalogMigrationsPath string

	MongoURI     string
	MongoDB      string
	RedisAddr    string
	RedisPass    string
	KafkaBrokers string

	OrdersDBHost         string
	OrdersDBPort         int
	OrdersDBUser         string
	OrdersDBPassword     string
	OrdersDBName         string
	OrdersMigrationsPath string
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,

		CatalogDBPath:         getEnv("CATALOG_DB_PATH", "./storefront.db"),
		CatalogMigrationsPath: getEnv("CATALOG_MIGRATIONS_PATH", "./internal/catalog/migrations"),

		MongoURI:     getEnv("MONGO_URI", ""),
		MongoDB:      getEnv("MONGO_DB", "storefront"),
		RedisAddr:    getEnv("REDIS_ADDR", ""),
		RedisPass:    getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers: getEnv("KAFKA_BROKERS", ""),

		OrdersDBHost:         getEnv("ORDERS_DB_HOST", ""),
		OrdersDBPort:         getEnvInt("ORDERS_DB_PORT", 5432),
		OrdersDBUser:         getEnv("ORDERS_DB_USER", "postgres"),
		OrdersDBPassword:     getEnv("ORDERS_DB_PASSWORD", "postgres"),
		OrdersDBName:         getEnv("ORDERS_DB_NAME", "storefront_orders"),
		OrdersMigrationsPath: getEnv("ORDERS_MIGRATIONS_PATH", "./internal/orders/migrations"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Catalog on SQLite.
	cat, err := catalog.NewSQLiteRepository(cfg.CatalogDBPath)
	if err != nil {
		log.Fatalf("failed to open catalog: %v", err)
	}
	defer cat.Close()
	if err := cat.RunMigrations(cfg.CatalogMigrationsPath); err != nil {
		log.Fatalf("failed to migrate catalog: %v", err)
	}

	// The ledger is seeded from catalog counts at boot and is authoritative
	// from then on.
	ledger := stock.NewMemoryLedger()
	products, err := cat.GetAllProducts(rootCtx)
	if err != nil {
		log.Fatalf("failed to load products: %v", err)
	}
	for _, p := range products {
		ledger.SetStock(p.ID, p.Stock)
	}
	log.Printf("stock ledger seeded with %d products", len(products))

	// Cart storage: MongoDB when configured, in-process otherwise.
	var cartRepo cart.Repository
	if cfg.MongoURI != "" {
		mongoCtx, mongoCancel := context.WithTimeout(rootCtx, 10*time.Second)
		db, errMongo := cart.ConnectMongoDB(mongoCtx, cfg.MongoURI, cfg.MongoDB)
		mongoCancel()
		if errMongo != nil {
			log.Fatalf("failed to connect to mongodb: %v", errMongo)
		}
		cartRepo = cart.NewMongoRepository(db)
		log.Println("cart repository: mongodb")
	} else {
		cartRepo = cart.NewMemoryRepository()
		log.Println("cart repository: in-memory")
	}

	var cartCache cart.Cache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
		})
		if errPing := client.Ping(rootCtx).Err(); errPing != nil {
			log.Fatalf("failed to connect to redis: %v", errPing)
		}
		defer client.Close()
		cartCache = cart.NewRedisCache(client)
		log.Println("cart cache: redis")
	}

	carts := cart.NewService(cartRepo, cartCache, ledger)

	// Order history: Postgres with the notification outbox when configured.
	var history orders.History
	var outbox orders.Outbox
	if cfg.OrdersDBHost != "" {
		cred := &orders.Credentials{
			Host:              cfg.OrdersDBHost,
			Port:              cfg.OrdersDBPort,
			User:              cfg.OrdersDBUser,
			Password:          cfg.OrdersDBPassword,
			DBName:            cfg.OrdersDBName,
			MigrationsDirPath: cfg.OrdersMigrationsPath,
		}
		pg, errPg := orders.NewPostgresHistory(cred)
		if errPg != nil {
			log.Fatalf("failed to connect to orders db: %v", errPg)
		}
		if errMig := pg.RunMigrations(cred); errMig != nil {
			log.Fatalf("failed to migrate orders db: %v", errMig)
		}
		history = pg
		outbox = pg
		log.Println("order history: postgres")
	} else {
		history = orders.NewMemoryHistory()
		log.Println("order history: in-memory")
	}
	defer history.Close()

	if outbox != nil && cfg.KafkaBrokers != "" {
		poller := publisher.NewOutboxPoller(outbox, strings.Split(cfg.KafkaBrokers, ",")...)
		go poller.Run(rootCtx)
		log.Printf("outbox poller publishing to %s", cfg.KafkaBrokers)
	}

	coupons := pricing.NewRegistry(
		pricing.Coupon{Code: "WELCOME10", DiscountPct: 10},
		pricing.Coupon{Code: "VIP25", DiscountPct: 25},
	)

	gateway := &payment.StubGateway{}
	orchestrator := checkout.NewOrchestrator(carts, cat, ledger, coupons, history, gateway)

	router := h.NewRouter(
		h.NewProductHandler(cat, ledger, cfg.RequestTimeout),
		h.NewCartHandler(carts, cat, coupons, cfg.RequestTimeout),
		h.NewCheckoutHandler(orchestrator, cfg.RequestTimeout),
		h.NewOrdersHandler(history, cfg.RequestTimeout),
		cfg.RequestTimeout,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("storefront starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	rootCancel()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
