// internal/service/purchase/infrastructure/inventory_redis.go
package infrastructure

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"pulsequeue/internal/pkg/redis"
	"pulsequeue/internal/service/purchase/domain"
)

const (
	reserveScriptName = "reserve_stock"
	settleScriptName  = "settle_stock"
)

// InventoryRedisAdapter implements port.InventoryStore on one Redis hash per
// SKU. Both conditional updates run as Lua scripts, so the guard and the
// mutation are a single atomic step; concurrent reservations against the
// same SKU serialize inside Redis, not in application code.
type InventoryRedisAdapter struct {
	redisClient *redis.Client
}

// NewInventoryRedisAdapter loads the reserve and settle scripts.
func NewInventoryRedisAdapter(redisClient *redis.Client) (*InventoryRedisAdapter, error) {
	if err := redisClient.LoadScriptFromContent(reserveScriptName, reserveScript); err != nil {
		return nil, fmt.Errorf("failed to load reserve script: %w", err)
	}
	if err := redisClient.LoadScriptFromContent(settleScriptName, settleScript); err != nil {
		return nil, fmt.Errorf("failed to load settle script: %w", err)
	}
	return &InventoryRedisAdapter{redisClient: redisClient}, nil
}

// Hash tags keep the inventory hash and the settlement markers of one SKU in
// the same cluster slot, so the settle script can touch both.
func inventoryKey(sku string) string {
	return fmt.Sprintf("inventory:{%s}", sku)
}

func settledKey(sku, orderID string) string {
	return fmt.Sprintf("settled:{%s}:%s", sku, orderID)
}

func (a *InventoryRedisAdapter) Reserve(ctx context.Context, sku string, qty int) error {
	result, err := a.redisClient.RunScript(ctx, reserveScriptName, []string{inventoryKey(sku)}, qty)
	if err != nil {
		return errors.Wrapf(err, "reserve script failed for sku %s", sku)
	}

	code, ok := result.(int64)
	if !ok {
		return errors.Errorf("unexpected result type from reserve script: %T", result)
	}
	switch code {
	case 1:
		return nil
	case 0:
		return &domain.InsufficientStockError{SKU: sku}
	default:
		return errors.Errorf("unknown result code from reserve script: %d", code)
	}
}

func (a *InventoryRedisAdapter) Settle(ctx context.Context, orderID, sku string, qty int, consumeStock bool) (bool, error) {
	consume := "0"
	if consumeStock {
		consume = "1"
	}

	keys := []string{inventoryKey(sku), settledKey(sku, orderID)}
	result, err := a.redisClient.RunScript(ctx, settleScriptName, keys, qty, consume)
	if err != nil {
		return false, errors.Wrapf(err, "settle script failed for order %s sku %s", orderID, sku)
	}

	code, ok := result.(int64)
	if !ok {
		return false, errors.Errorf("unexpected result type from settle script: %T", result)
	}
	switch code {
	case 1:
		return true, nil
	case 0:
		return false, nil
	default:
		return false, errors.Errorf("unknown result code from settle script: %d", code)
	}
}

// Seed writes a SKU with the given stock and a cleared reservation counter.
// Provisioning helper, not part of the saga surface.
func (a *InventoryRedisAdapter) Seed(ctx context.Context, sku string, stock int) error {
	pipe := a.redisClient.GetClient().Pipeline()
	pipe.HSet(ctx, inventoryKey(sku), "stock", stock, "reserved", 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrapf(err, "failed to seed inventory for sku %s", sku)
	}
	return nil
}

// Snapshot reads the current counters for one SKU. Missing fields read as 0.
func (a *InventoryRedisAdapter) Snapshot(ctx context.Context, sku string) (stock, reserved int, err error) {
	values, err := a.redisClient.GetClient().HMGet(ctx, inventoryKey(sku), "stock", "reserved").Result()
	if err != nil {
		return 0, 0, errors.Wrapf(err, "failed to read inventory for sku %s", sku)
	}
	parse := func(v interface{}) int {
		s, ok := v.(string)
		if !ok {
			return 0
		}
		var n int
		fmt.Sscanf(s, "%d", &n)
		return n
	}
	return parse(values[0]), parse(values[1]), nil
}

var reserveScript = `
-- KEYS[1]: inventory hash for the SKU (fields: stock, reserved)
-- ARGV[1]: quantity to reserve
--
-- Guard: stock >= quantity, or the record does not exist yet (an unseeded
-- SKU reserves unconstrained).
local stock = redis.call('HGET', KEYS[1], 'stock')
if stock == false then
    redis.call('HINCRBY', KEYS[1], 'reserved', ARGV[1])
    return 1
end
if tonumber(stock) >= tonumber(ARGV[1]) then
    redis.call('HINCRBY', KEYS[1], 'reserved', ARGV[1])
    return 1
end
return 0
`

var settleScript = `
-- KEYS[1]: inventory hash for the SKU
-- KEYS[2]: settlement marker for this (order, sku) pair
-- ARGV[1]: quantity
-- ARGV[2]: '1' to also consume stock (payment success)
--
-- The marker makes the compensating update idempotent: a redelivered
-- settlement event finds it set and changes nothing.
if redis.call('EXISTS', KEYS[2]) == 1 then
    return 0
end
redis.call('HINCRBY', KEYS[1], 'reserved', -tonumber(ARGV[1]))
if ARGV[2] == '1' then
    redis.call('HINCRBY', KEYS[1], 'stock', -tonumber(ARGV[1]))
    redis.call('SET', KEYS[2], 'SUCCESS')
else
    redis.call('SET', KEYS[2], 'FAILURE')
end
return 1
`
