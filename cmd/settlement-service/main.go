// cmd/settlement-service/main.go
package main

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"pulsequeue/internal/pkg/bootstrap"
	"pulsequeue/internal/pkg/logger"
	"pulsequeue/internal/pkg/mq"
	"pulsequeue/internal/pkg/redis"
	"pulsequeue/internal/service/purchase/application"
	"pulsequeue/internal/service/purchase/infrastructure"
	"pulsequeue/internal/service/purchase/interfaces"
)

const serviceName = "settlement-service"

func main() {
	logger.Init(serviceName)
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	redisClient, err := redis.NewClient(cfg.Infra.Redis.Addr)
	if err != nil {
		logger.Ctx(nil).Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()

	inventory, err := infrastructure.NewInventoryRedisAdapter(redisClient)
	if err != nil {
		logger.Ctx(nil).Fatal().Err(err).Msg("failed to build inventory adapter")
	}

	db, err := infrastructure.NewMysqlDB(cfg.Infra.Mysql.DSN)
	if err != nil {
		logger.Ctx(nil).Fatal().Err(err).Msg("failed to connect to mysql")
	}
	orderRepo, err := infrastructure.NewGormOrderRepository(db)
	if err != nil {
		logger.Ctx(nil).Fatal().Err(err).Msg("failed to build order repository")
	}

	authorizer := infrastructure.NewRandomAuthorizer()
	service := application.NewSettlementService(
		inventory, authorizer, orderRepo,
		otel.Tracer(serviceName),
		cfg.App.AllowForcedOutcome,
	)

	reader := mq.NewKafkaReader(cfg.Infra.Kafka.Brokers, cfg.Infra.Kafka.SettlementGroupID, cfg.Infra.Kafka.SettlementTopic)
	dltWriter := mq.NewKafkaWriter(cfg.Infra.Kafka.Brokers, cfg.Infra.Kafka.SettlementDltTopic)
	failureHandler := mq.NewFailureHandler(dltWriter)
	consumer := interfaces.NewSettlementConsumerAdapter(reader, service, failureHandler)

	consumeCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	consumer.Start(consumeCtx)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8082,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			appCtx.Mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
			appCtx.Mux.Handle("/metrics", promhttp.Handler())
		},
		OnShutdown: func(ctx context.Context) {
			consumer.Stop(ctx)
			cancel()
			if err := failureHandler.Close(); err != nil {
				logger.Ctx(ctx).Error().Err(err).Msg("error closing DLT writer")
			}
		},
	})
}
