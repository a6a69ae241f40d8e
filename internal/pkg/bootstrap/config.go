// internal/pkg/bootstrap/config.go
package bootstrap

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"pulsequeue/internal/pkg/logger"
)

// Config is the explicit configuration for a service process. It is built
// once in Init and passed down by parameter; business logic never reads the
// environment or any other ambient source.
type Config struct {
	App   AppConfig   `yaml:"app"`
	Infra InfraConfig `yaml:"infra"`
}

type AppConfig struct {
	// AllowForcedOutcome enables honoring the _testForceOutcome field on
	// settlement requests. Must stay off outside verification environments.
	AllowForcedOutcome bool          `yaml:"allow_forced_outcome"`
	ProcessingTimeout  time.Duration `yaml:"processing_timeout"`
}

type InfraConfig struct {
	Kafka  KafkaConfig  `yaml:"kafka"`
	Redis  RedisConfig  `yaml:"redis"`
	Mysql  MysqlConfig  `yaml:"mysql"`
	Jaeger JaegerConfig `yaml:"jaeger"`
	Nacos  NacosConfig  `yaml:"nacos"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	SettlementTopic    string   `yaml:"settlement_topic"`
	SettlementDltTopic string   `yaml:"settlement_dlt_topic"`
	SettlementGroupID  string   `yaml:"settlement_group_id"`
}

type RedisConfig struct {
	Addr string `yaml:"addr"`
}

type MysqlConfig struct {
	DSN string `yaml:"dsn"`
}

type JaegerConfig struct {
	Endpoint string `yaml:"endpoint"`
}

type NacosConfig struct {
	ServerAddrs string `yaml:"server_addrs"`
	Namespace   string `yaml:"namespace"`
	Group       string `yaml:"group"`
}

var currentConfig *Config

// Init loads the configuration: defaults, then the YAML file pointed to by
// CONFIG_PATH (default configs/config.yaml), then environment overrides.
func Init() {
	cfg := defaultConfig()

	path := getEnv("CONFIG_PATH", "configs/config.yaml")
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			logger.Ctx(nil).Fatal().Err(err).Str("path", path).Msg("failed to parse config file")
		}
	} else {
		logger.Ctx(nil).Warn().Str("path", path).Msg("config file not found, using defaults and environment")
	}

	applyEnvOverrides(cfg)
	currentConfig = cfg
}

// GetCurrentConfig returns the process configuration. Init must run first.
func GetCurrentConfig() *Config {
	if currentConfig == nil {
		Init()
	}
	return currentConfig
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			AllowForcedOutcome: false,
			ProcessingTimeout:  10 * time.Second,
		},
		Infra: InfraConfig{
			Kafka: KafkaConfig{
				Brokers:            []string{"localhost:9092"},
				SettlementTopic:    "settlement-requests",
				SettlementDltTopic: "settlement-requests-dlt",
				SettlementGroupID:  "settlement-service",
			},
			Redis:  RedisConfig{Addr: "localhost:6379"},
			Mysql:  MysqlConfig{DSN: "root:root@tcp(localhost:3306)/pulsequeue?charset=utf8mb4&parseTime=True&loc=Local"},
			Jaeger: JaegerConfig{Endpoint: "http://localhost:14268/api/traces"},
			Nacos: NacosConfig{
				ServerAddrs: "localhost:8848",
				Namespace:   "",
				Group:       "DEFAULT_GROUP",
			},
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv("KAFKA_BROKERS"); ok {
		cfg.Infra.Kafka.Brokers = strings.Split(v, ",")
	}
	if v, ok := os.LookupEnv("REDIS_ADDR"); ok {
		cfg.Infra.Redis.Addr = v
	}
	if v, ok := os.LookupEnv("MYSQL_DSN"); ok {
		cfg.Infra.Mysql.DSN = v
	}
	if v, ok := os.LookupEnv("JAEGER_ENDPOINT"); ok {
		cfg.Infra.Jaeger.Endpoint = v
	}
	if v, ok := os.LookupEnv("NACOS_SERVER_ADDRS"); ok {
		cfg.Infra.Nacos.ServerAddrs = v
	}
	if v, ok := os.LookupEnv("NACOS_NAMESPACE"); ok {
		cfg.Infra.Nacos.Namespace = v
	}
	if v, ok := os.LookupEnv("NACOS_GROUP"); ok {
		cfg.Infra.Nacos.Group = v
	}
	if v, ok := os.LookupEnv("ALLOW_FORCED_OUTCOME"); ok {
		cfg.App.AllowForcedOutcome = v == "true" || v == "1"
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
