// cmd/inventory-service/main.go
package main

import (
	"context"
	"time"

	zlog "github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"

	"warehouse/internal/pkg/bootstrap"
	"warehouse/internal/pkg/httpclient"
	"warehouse/internal/pkg/mq"
	"warehouse/internal/pkg/redis"
	"warehouse/internal/service/inventory/application"
	"warehouse/internal/service/inventory/domain/port"
	"warehouse/internal/service/inventory/infrastructure"
	"warehouse/internal/service/inventory/infrastructure/adapter"
	"warehouse/internal/service/inventory/infrastructure/rule"
	"warehouse/internal/service/inventory/interfaces"
)

const serviceName = "inventory-service"

func main() {
	hubCtx, hubCancel := context.WithCancel(context.Background())
	var closers []func()

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			cfg := appCtx.Config
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
				closers = append(closers, func() { rdb.Close() })
				cache = adapter.NewStockRedisCache(rdb,
					time.Duration(cfg.Cache.StockCheckTTLSeconds)*time.Second,
					time.Duration(cfg.Cache.ItemTTLSeconds)*time.Second,
				)
			}

			writer := mq.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.EventTopic)
			closers = append(closers, func() { writer.Close() })

			hub := interfaces.NewStockEventHub()
			go hub.Run(hubCtx)

			publisher := adapter.NewMultiPublisher(adapter.NewEventKafkaAdapter(writer), hub)

			var products port.ProductClient
			if url := cfg.ProductService.BaseURL; url != "" {
				products = adapter.NewProductHTTPAdapter(httpclient.NewClient(tracer), url)
			}

			rules, err := rule.NewCELRuleEngineAdapter()
			if err != nil {
				zlog.Fatal().Err(err).Msg("failed to build rule engine")
			}

			service := application.NewInventoryApplicationService(uow, tracer, publisher, products, rules, cache, application.Options{
				DefaultTTL:     time.Duration(cfg.Reservation.DefaultTTLMinutes) * time.Minute,
				PurgeAfter:     time.Duration(cfg.Reservation.PurgeAfterHours) * time.Hour,
				LowStockRule:   cfg.Alerts.LowStockRule,
				OutOfStockRule: cfg.Alerts.OutOfStockRule,
			})

			interfaces.NewInventoryHandler(service).RegisterRoutes(appCtx.Mux)
			appCtx.Mux.HandleFunc("/ws/stock", hub.ServeWS)
		},
		OnShutdown: func(ctx context.Context) {
			hubCancel()
			for _, close := range closers {
				close()
			}
		},
	})
}
