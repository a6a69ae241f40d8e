// internal/pkg/bootstrap/app.go
package bootstrap

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"pulsequeue/internal/pkg/logger"
	"pulsequeue/internal/pkg/nacos"
	"pulsequeue/internal/pkg/tracing"
)

// AppCtx is handed to the service's route registration callback.
type AppCtx struct {
	Mux   *http.ServeMux
	Nacos *nacos.Client
}

// AppInfo carries everything needed to start one service process.
type AppInfo struct {
	ServiceName      string
	Port             int
	RegisterHandlers func(appCtx AppCtx)
	// OnShutdown runs during graceful shutdown, before the tracer and HTTP
	// server are torn down. Used to stop consumers and close producers.
	OnShutdown func(ctx context.Context)
}

// StartService wires up tracing, service registration and the HTTP server,
// then blocks until SIGINT/SIGTERM and shuts everything down in reverse order.
func StartService(info AppInfo) {
	cfg := GetCurrentConfig()

	tp, err := tracing.InitTracerProvider(info.ServiceName, cfg.Infra.Jaeger.Endpoint)
	if err != nil {
		logger.Ctx(nil).Fatal().Err(err).Msg("failed to initialize tracer provider")
	}

	namingClient, err := nacos.NewClient(cfg.Infra.Nacos.ServerAddrs, cfg.Infra.Nacos.Namespace, cfg.Infra.Nacos.Group)
	if err != nil {
		logger.Ctx(nil).Fatal().Err(err).Msg("failed to initialize nacos client")
	}

	ip, err := getOutboundIP()
	if err != nil {
		logger.Ctx(nil).Fatal().Err(err).Msg("failed to get outbound IP address")
	}

	if err := namingClient.RegisterServiceInstance(info.ServiceName, ip, info.Port); err != nil {
		logger.Ctx(nil).Fatal().Err(err).Msg("failed to register service with nacos")
	}

	mux := http.NewServeMux()
	if info.RegisterHandlers != nil {
		info.RegisterHandlers(AppCtx{Mux: mux, Nacos: namingClient})
	}
	server := &http.Server{Addr: ":" + strconv.Itoa(info.Port), Handler: mux}
	go func() {
		logger.Ctx(nil).Info().Msgf("%s listening on :%d", info.ServiceName, info.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Ctx(nil).Fatal().Err(err).Msgf("could not listen on %s", server.Addr)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Ctx(nil).Info().Msgf("Shutting down service %s...", info.ServiceName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Teardown order: deregister first so no new traffic arrives, then stop
	// the service's own workers, then flush traces, then close the server.
	if err := namingClient.DeregisterServiceInstance(info.ServiceName, ip, info.Port); err != nil {
		logger.Ctx(nil).Error().Err(err).Msg("error deregistering from nacos")
	}

	if info.OnShutdown != nil {
		info.OnShutdown(ctx)
	}

	if err := tp.Shutdown(ctx); err != nil {
		logger.Ctx(nil).Error().Err(err).Msg("error shutting down tracer provider")
	}

	if err := server.Shutdown(ctx); err != nil {
		logger.Ctx(nil).Error().Err(err).Msg("error shutting down http server")
	}

	logger.Ctx(nil).Info().Msgf("Service %s gracefully shut down.", info.ServiceName)
}

// getOutboundIP finds the preferred local address for service registration.
func getOutboundIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", err
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String(), nil
}
