package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/config"
	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/clock"
	httpDelivery "github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/delivery/http"
	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/delivery/kafka/consumer"
	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/delivery/kafka/producer"
	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/gateway"
	infraRedis "github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/infra/redis"
	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/phase"
	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/policy"
	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/reconcile"
	repo "github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/repository/redis"
	"github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/internal/service"
	pkgKafka "github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/pkg/kafka"
	pkgLog "github.com/ricardoFranciscoSP/infra-estacaoterapia-sub002/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	l := pkgLog.InitializeZapLogger(pkgLog.ZapConfig{
		Level:    cfg.Log.Level,
		Mode:     cfg.Log.Mode,
		Encoding: cfg.Log.Encoding,
	})

	redisCli, err := infraRedis.Connect(ctx, cfg.Redis)
	if err != nil {
		l.Fatalf(ctx, "Failed to connect to Redis: %v", err)
	}
	defer infraRedis.Disconnect(redisCli)

	ssRepo := repo.NewRedisSessionRepository(redisCli, cfg.Session.SnapshotTTL, l)

	// Initialize Kafka producer
	kafkaSyncProd, err := pkgKafka.NewProducer(pkgKafka.ProducerConfig{
		Brokers:      cfg.Kafka.Brokers,
		RetryMax:     cfg.Kafka.ProducerRetryMax,
		RequiredAcks: cfg.Kafka.ProducerRequiredAcks,
	})
	if err != nil {
		l.Fatalf(ctx, "Failed to initialize Kafka producer: %v", err)
	}

	// Initialize Kafka consumer
	kafkaConsGr, err := pkgKafka.NewConsumer(pkgKafka.ConsumerConfig{
		Brokers: cfg.Kafka.Brokers,
		GroupID: cfg.Kafka.ConsumerGroupID,
	})
	if err != nil {
		l.Fatalf(ctx, "Failed to initialize Kafka consumer: %v", err)
	}

	prod := producer.NewProducer(kafkaSyncProd, l)

	// Collaborator gateways
	backend := gateway.NewBookingClient(cfg.Booking, l)
	presence := gateway.NewPresenceClient(cfg.Booking, l)

	// Domain engines
	clk := clock.New(cfg.Session.TickInterval)
	phaseEng := phase.NewEngine(cfg.Session)
	policyEng := policy.NewEngine(cfg.Session)
	rec := reconcile.New(ssRepo, l)

	// Services
	ssSvc := service.NewSessionService(ssRepo, backend, cfg.JWT, l)
	lcSvc := service.NewLifecycleService(cfg.Session, clk, phaseEng, rec, policyEng, ssSvc, backend, presence, prod, l)
	defer lcSvc.Stop()

	// Push channel consumer
	cons := consumer.NewConsumer(kafkaConsGr, lcSvc, l)
	if err := cons.Start(ctx); err != nil {
		l.Fatalf(ctx, "Failed to start Kafka consumer: %v", err)
	}

	// HTTP server
	handler := httpDelivery.NewHTTPHandler(lcSvc, l)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      httpDelivery.NewRouter(handler),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		l.Infof(ctx, "HTTP server is listening on port: %d", cfg.Server.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			l.Infof(ctx, "Received signal %s, shutting down", sig)
		case <-gCtx.Done():
		}

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			l.Errorf(ctx, "HTTP server shutdown: %v", err)
		}

		if err := cons.Close(); err != nil {
			l.Errorf(ctx, "Kafka consumer close: %v", err)
		}
		if err := prod.Close(); err != nil {
			l.Errorf(ctx, "Kafka producer close: %v", err)
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		l.Fatalf(ctx, "Server error: %v", err)
	}

	l.Info(ctx, "Server exited")
}
