// cmd/reservation-service/main.go
package main

import (
	"context"

	"go.opentelemetry.io/otel"

	"pulsequeue/internal/pkg/bootstrap"
	"pulsequeue/internal/pkg/logger"
	"pulsequeue/internal/pkg/mq"
	"pulsequeue/internal/pkg/redis"
	"pulsequeue/internal/service/purchase/application"
	"pulsequeue/internal/service/purchase/infrastructure"
	"pulsequeue/internal/service/purchase/interfaces"
)

const serviceName = "reservation-service"

// main is the composition root: build every dependency, then start.
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

	writer := mq.NewKafkaWriter(cfg.Infra.Kafka.Brokers, cfg.Infra.Kafka.SettlementTopic)
	publisher := infrastructure.NewSettlementKafkaPublisher(writer)

	service := application.NewReservationService(inventory, publisher, orderRepo, otel.Tracer(serviceName))
	handler := interfaces.NewPurchaseHandler(service)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8081,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: func(ctx context.Context) {
			if err := publisher.Close(); err != nil {
				logger.Ctx(ctx).Error().Err(err).Msg("error closing settlement publisher")
			}
		},
	})
}
