// cmd/seed-inventory/main.go
//
// Seeds the inventory store out-of-band. The saga never creates inventory
// records itself.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"golang.org/x/sync/errgroup"

	"pulsequeue/internal/pkg/bootstrap"
	"pulsequeue/internal/pkg/logger"
	"pulsequeue/internal/pkg/redis"
	"pulsequeue/internal/service/purchase/infrastructure"
)

func main() {
	logger.Init("seed-inventory")
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	seedFile := flag.String("file", "configs/inventory-seed.json", "path to the JSON list of SKUs to seed")
	stock := flag.Int("stock", 100, "stock level to seed for every SKU")
	flag.Parse()

	data, err := os.ReadFile(*seedFile)
	if err != nil {
		logger.Ctx(nil).Fatal().Err(err).Str("file", *seedFile).Msg("failed to read seed file")
	}
	var skus []string
	if err := json.Unmarshal(data, &skus); err != nil {
		logger.Ctx(nil).Fatal().Err(err).Str("file", *seedFile).Msg("seed file is not a JSON array of SKUs")
	}

	redisClient, err := redis.NewClient(cfg.Infra.Redis.Addr)
	if err != nil {
		logger.Ctx(nil).Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()

	inventory, err := infrastructure.NewInventoryRedisAdapter(redisClient)
	if err != nil {
		logger.Ctx(nil).Fatal().Err(err).Msg("failed to build inventory adapter")
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(8)
	for _, sku := range skus {
		g.Go(func() error {
			if err := inventory.Seed(ctx, sku, *stock); err != nil {
				return err
			}
			logger.Ctx(ctx).Info().Str("sku", sku).Int("stock", *stock).Msg("seeded")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Ctx(nil).Fatal().Err(err).Msg("failed to seed inventory")
	}
	logger.Ctx(nil).Info().Int("skus", len(skus)).Msg("inventory seed complete")
}
