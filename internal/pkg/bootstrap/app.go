package bootstrap

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	zlog "github.com/rs/zerolog/log"

	"warehouse/internal/pkg/config"
	"warehouse/internal/pkg/logger"
	"warehouse/internal/pkg/nacos"
	"warehouse/internal/pkg/utils"
	"warehouse/internal/tracing"
)

// AppCtx hands each service what it needs to register its routes.
type AppCtx struct {
	Mux    *http.ServeMux
	Config *config.Config
}

// AppInfo carries the service-specific pieces of the startup sequence.
type AppInfo struct {
	ServiceName      string
	Port             int
	RegisterHandlers func(appCtx AppCtx)
	// OnShutdown runs during graceful shutdown, before the tracer flushes.
	OnShutdown func(ctx context.Context)
}

// StartService runs the common lifecycle shared by every binary: config,
// logging, tracing, optional Nacos registration, HTTP server, graceful stop.
// Blocks until SIGINT/SIGTERM.
func StartService(info AppInfo) {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(info.ServiceName)

	tp, err := tracing.InitTracerProvider(info.ServiceName, cfg.Jaeger.Endpoint)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to initialize tracer provider")
	}

	port := info.Port
	if port == 0 {
		port = cfg.Service.Port
	}

	var registry *nacos.Client
	var ip string
	if cfg.Nacos.Enabled {
		registry, err = nacos.NewClient(cfg.Nacos.ServerAddrs, cfg.Nacos.Namespace, cfg.Nacos.Group)
		if err != nil {
			zlog.Fatal().Err(err).Msg("failed to initialize nacos client")
		}
		ip, err = utils.GetOutboundIP()
		if err != nil {
			zlog.Fatal().Err(err).Msg("failed to get outbound IP address")
		}
		if err := registry.Register(info.ServiceName, ip, port); err != nil {
			zlog.Fatal().Err(err).Msg("failed to register service with nacos")
		}
	}

	mux := http.NewServeMux()
	if info.RegisterHandlers != nil {
		info.RegisterHandlers(AppCtx{Mux: mux, Config: cfg})
	}
	server := &http.Server{Addr: ":" + strconv.Itoa(port), Handler: mux}
	go func() {
		zlog.Info().Int("port", port).Msgf("%s listening", info.ServiceName)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal().Err(err).Msg("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info().Msgf("shutting down %s", info.ServiceName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if registry != nil {
		if err := registry.Deregister(info.ServiceName, ip, port); err != nil {
			zlog.Error().Err(err).Msg("error deregistering from nacos")
		}
	}
	if info.OnShutdown != nil {
		info.OnShutdown(ctx)
	}
	if err := tp.Shutdown(ctx); err != nil {
		zlog.Error().Err(err).Msg("error shutting down tracer provider")
	}
	if err := server.Shutdown(ctx); err != nil {
		zlog.Error().Err(err).Msg("error shutting down http server")
	}
	zlog.Info().Msgf("%s gracefully shut down", info.ServiceName)
}
