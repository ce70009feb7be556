package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-storefront.git/internal/cart"
	"github.com/ariefcatur/go-storefront.git/internal/catalog"
	"github.com/ariefcatur/go-storefront.git/internal/checkout"
	"github.com/ariefcatur/go-storefront.git/internal/config"
	"github.com/ariefcatur/go-storefront.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-storefront.git/internal/kafka"
	"github.com/ariefcatur/go-storefront.git/internal/orders"
	"github.com/ariefcatur/go-storefront.git/internal/postgres"
	"github.com/ariefcatur/go-storefront.git/internal/redisx"
	"github.com/ariefcatur/go-storefront.git/internal/stock"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, one per topic
	pCreated := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024)
	pCreated.Start(ctx)
	pStatus := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicStatusChanged, 1024)
	pStatus.Start(ctx)

	// Stores & services
	catalogReader := &catalog.PGReader{DB: db}
	cartStore := &cart.PGStore{DB: db}
	orderRepo := &orders.PGRepo{DB: db}

	cartSvc := &cart.Service{Carts: cartStore, Catalog: catalogReader}
	checkoutSvc := &checkout.Service{
		Stock:       &stock.PGLedger{DB: db},
		Orders:      orderRepo,
		Carts:       cartStore,
		Catalog:     catalogReader,
		Producer:    pCreated,
		ServiceName: cfg.ServiceName,
	}

	// Router & handlers
	router := httpx.NewRouter(httpx.Identity)
	(&httpx.CatalogHandler{Catalog: catalogReader}).Register(router)
	(&httpx.CartHandler{Cart: cartSvc, Redis: rdb}).Register(router)
	(&httpx.OrdersHandler{
		Checkout: checkoutSvc,
		Orders:   orderRepo,
		Producer: pStatus,
		Redis:    rdb,
		Service:  cfg.ServiceName,
	}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pCreated.Close() // stop intake, flush, close writer
	pStatus.Close()
	cancel()
	pCreated.WaitClosed()
	pStatus.WaitClosed()
}
