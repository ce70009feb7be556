package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ariefcatur/go-storefront.git/internal/config"
	kafkax "github.com/ariefcatur/go-storefront.git/internal/kafka"
	"github.com/ariefcatur/go-storefront.git/internal/notify"
	"github.com/ariefcatur/go-storefront.git/internal/orders"
	"github.com/ariefcatur/go-storefront.git/internal/redisx"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &notify.Service{
		Redis:       rdb,
		Sender:      notify.LogSender{},
		ServiceName: cfg.ServiceName + "-notifier",
	}

	group := getenv("NOTIFIER_GROUP", "notifier-svc")
	workers := mustAtoi(os.Getenv("NOTIFIER_WORKERS"), "4")

	// one consumer per topic, same handler
	cCreated := kafkax.NewConsumer(cfg.KafkaBrokers, group, orders.TopicOrderCreated, workers)
	cStatus := kafkax.NewConsumer(cfg.KafkaBrokers, group, orders.TopicStatusChanged, workers)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("notifier consumer started: group=%s topic=%s workers=%d", group, orders.TopicOrderCreated, workers)
		return cCreated.Start(gctx, svc.HandleEvent)
	})
	g.Go(func() error {
		log.Printf("notifier consumer started: group=%s topic=%s workers=%d", group, orders.TopicStatusChanged, workers)
		return cStatus.Start(gctx, svc.HandleEvent)
	})

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down consumers...")
	cancel()

	done := make(chan struct{})
	go func() {
		if err := g.Wait(); err != nil {
			log.Printf("consumer exit: %v", err)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		log.Println("consumers did not stop in time")
	}
}
