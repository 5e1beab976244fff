// cmd/inventory-worker/main.go
//
// The worker runs the pieces of the inventory service that must not live in
// the request path: the upstream event consumer and the reservation expiry
// sweeper. It scales independently of the HTTP service.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	zlog "github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"warehouse/internal/pkg/config"
	"warehouse/internal/pkg/logger"
	"warehouse/internal/pkg/mq"
	"warehouse/internal/pkg/redis"
	"warehouse/internal/pkg/zookeeper"
	"warehouse/internal/service/inventory/application"
	"warehouse/internal/service/inventory/infrastructure"
	"warehouse/internal/service/inventory/infrastructure/adapter"
	"warehouse/internal/service/inventory/infrastructure/rule"
	"warehouse/internal/service/inventory/interfaces"
	"warehouse/internal/tracing"
)

const serviceName = "inventory-worker"

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(serviceName)

	tp, err := tracing.InitTracerProvider(serviceName, cfg.Jaeger.Endpoint)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to initialize tracer provider")
	}
	tracer := otel.Tracer(serviceName)

	db, err := infrastructure.NewDB(cfg.MySQL.DSN)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to connect to mysql")
	}
	uow := infrastructure.NewGormUnitOfWork(db)

	var cache application.StockCache
	if cfg.Redis.Addr != "" {
		rdb, err := redis.New(cfg.Redis.Addr)
		if err != nil {
			zlog.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rdb.Close()
		cache = adapter.NewStockRedisCache(rdb,
			time.Duration(cfg.Cache.StockCheckTTLSeconds)*time.Second,
			time.Duration(cfg.Cache.ItemTTLSeconds)*time.Second,
		)
	}

	writer := mq.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.EventTopic)
	defer writer.Close()
	publisher := adapter.NewEventKafkaAdapter(writer)

	rules, err := rule.NewCELRuleEngineAdapter()
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to build rule engine")
	}

	service := application.NewInventoryApplicationService(uow, tracer, publisher, nil, rules, cache, application.Options{
		DefaultTTL:     time.Duration(cfg.Reservation.DefaultTTLMinutes) * time.Minute,
		PurgeAfter:     time.Duration(cfg.Reservation.PurgeAfterHours) * time.Hour,
		LowStockRule:   cfg.Alerts.LowStockRule,
		OutOfStockRule: cfg.Alerts.OutOfStockRule,
	})

	// only one worker replica sweeps per tick when zookeeper is configured
	var locker application.SweepLocker
	if cfg.Zookeeper.Enabled {
		conn, err := zookeeper.Connect(cfg.Zookeeper.Addrs)
		if err != nil {
			zlog.Fatal().Err(err).Msg("failed to connect to zookeeper")
		}
		defer conn.Close()
		locker, err = zookeeper.NewLock(conn, "reservation-sweeper")
		if err != nil {
			zlog.Fatal().Err(err).Msg("failed to create sweep lock")
		}
	}
	sweeper := application.NewExpirySweeper(service, locker,
		time.Duration(cfg.Reservation.SweepIntervalSeconds)*time.Second)

	reader := mq.NewReader(cfg.Kafka.Brokers, cfg.Kafka.ConsumeTopic, cfg.Kafka.GroupID)
	consumer := interfaces.NewEventConsumer(reader, service, tracer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metricsServer := &http.Server{Addr: ":" + strconv.Itoa(cfg.Service.Port), Handler: metricsMux()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return consumer.Run(gctx) })
	g.Go(func() error { return sweeper.Run(gctx) })
	g.Go(func() error {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		consumer.Close()
		metricsServer.Shutdown(shutdownCtx)
		return tp.Shutdown(shutdownCtx)
	})

	zlog.Info().Int("port", cfg.Service.Port).Msg("inventory worker started")
	if err := g.Wait(); err != nil && err != context.Canceled {
		zlog.Fatal().Err(err).Msg("worker exited with error")
	}
	zlog.Info().Msg("inventory worker shut down")
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
