// internal/pkg/bootstrap/config_test.go
package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	Init()
	cfg := GetCurrentConfig()

	assert.False(t, cfg.App.AllowForcedOutcome)
	assert.Equal(t, 10*time.Second, cfg.App.ProcessingTimeout)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Infra.Kafka.Brokers)
	assert.Equal(t, "settlement-requests", cfg.Infra.Kafka.SettlementTopic)
	assert.Equal(t, "settlement-requests-dlt", cfg.Infra.Kafka.SettlementDltTopic)
	assert.Equal(t, "localhost:6379", cfg.Infra.Redis.Addr)
}

func TestInit_FileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  allow_forced_outcome: true
infra:
  kafka:
    settlement_topic: "settlement-staging"
  redis:
    addr: "redis-staging:6379"
`), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("KAFKA_BROKERS", "broker-1:9092,broker-2:9092")
	t.Setenv("REDIS_ADDR", "redis-env:6379")

	Init()
	cfg := GetCurrentConfig()

	assert.True(t, cfg.App.AllowForcedOutcome)
	assert.Equal(t, "settlement-staging", cfg.Infra.Kafka.SettlementTopic)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Infra.Kafka.Brokers)
	assert.Equal(t, "redis-env:6379", cfg.Infra.Redis.Addr, "environment wins over the file")
}

func TestInit_ForcedOutcomeEnvFlag(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("ALLOW_FORCED_OUTCOME", "1")

	Init()
	assert.True(t, GetCurrentConfig().App.AllowForcedOutcome)
}
