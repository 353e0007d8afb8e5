package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/pulsewatch/pulsewatch/internal/cache"
	"github.com/pulsewatch/pulsewatch/internal/config"
	"github.com/pulsewatch/pulsewatch/internal/domain/check"
	"github.com/pulsewatch/pulsewatch/internal/metrics"
	"github.com/pulsewatch/pulsewatch/internal/obs"
	kafkaRepo "github.com/pulsewatch/pulsewatch/internal/repository/kafka"
	pg "github.com/pulsewatch/pulsewatch/internal/repository/postgres"
	"github.com/pulsewatch/pulsewatch/internal/server"
	"github.com/pulsewatch/pulsewatch/internal/services/admin"
	"github.com/pulsewatch/pulsewatch/internal/services/monitor"
	"github.com/pulsewatch/pulsewatch/internal/services/notifier"
	"github.com/pulsewatch/pulsewatch/internal/services/pings"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := flag.String("config", "", "path to config yaml")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	l, err := obs.NewLogger(cfg.Log)
	if err != nil {
		log.Fatal(err)
	}
	l.Info("starting pulsewatch",
		zap.String("http_addr", cfg.HTTP.Addr),
		zap.String("metrics_addr", cfg.HTTP.MetricsAddr),
		zap.Duration("engine_tick", cfg.Engine.Tick),
	)

	otelCloser, err := obs.SetupOTel(ctx, cfg.OTEL)
	if err != nil {
		l.Fatal("otel init", zap.Error(err))
	}
	defer func() { _ = otelCloser.Shutdown(context.Background()) }()

	db, err := pg.New(ctx, cfg.DB)
	if err != nil {
		l.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	var events check.Events = kafkaRepo.NopEvents{}
	if cfg.Kafka.Enable {
		prod := kafkaRepo.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, l)
		defer func() { _ = prod.Close() }()
		events = kafkaRepo.NewCheckEvents(prod)
	}

	ms := obs.BootstrapMetricsServer(cfg.HTTP.MetricsAddr, func(ctx context.Context) error {
		hctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer cancel()
		return db.Pool.Ping(hctx)
	}, l)

	// wiring
	repo := pg.NewCheckRepo(db)
	sink := metrics.NewChecks(nil)
	snap := cache.NewSnapshot(repo, cfg.Cache.TTL)

	engineUC := monitor.NewUC(repo, sink, events, snap, l.Named("monitor"), nil)
	engine := monitor.NewRunner(l.Named("monitor"), engineUC, cfg.Engine)

	pingUC := pings.New(repo, sink, events, snap, l.Named("pings"), nil)
	adminUC := admin.New(repo, sink, events, snap, l.Named("admin"), nil)

	srv := server.New(repo, snap, pingUC, adminUC, l.Named("http"))
	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 3)
	go func() { errCh <- engine.Run(ctx) }()
	go func() {
		l.Info("http listening", zap.String("addr", cfg.HTTP.Addr))
		errCh <- httpSrv.ListenAndServe()
	}()

	if cfg.Notify.Enable {
		out := notifier.NewWebhook(cfg.Notify.WebhookURL, cfg.Notify.Timeout)
		nr, err := notifier.NewRunner(l.Named("notifier"), snap, out, cfg.Notify.AsRunnerConfig(), nil)
		if err != nil {
			l.Fatal("notifier init", zap.Error(err))
		}
		go func() { errCh <- nr.Run(ctx) }()
	}

	l.Info("pulsewatch started")

	select {
	case <-ctx.Done():
	case err = <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, http.ErrServerClosed) {
			l.Error("runner error", zap.Error(err))
		}
	}

	// graceful shutdown
	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shCtx)
	_ = ms.Shutdown(shCtx)
	l.Info("bye")
}
