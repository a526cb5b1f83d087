package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "beerorder-service", cfg.Service.Name)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "validate-order-request", cfg.Kafka.Topics.ValidateOrderRequest)
	assert.Equal(t, "allocation-failure", cfg.Kafka.Topics.AllocationFailure)
	assert.Equal(t, 10, cfg.Saga.AwaitAttempts)
	assert.Equal(t, Duration(100*time.Millisecond), cfg.Saga.AwaitInterval)
}

func TestLoadConfig_FromYamlFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
service:
  name: beerorder-east
  port: 9090
kafka:
  brokers: ["kafka-1:9092", "kafka-2:9092"]
  topics:
    validateOrderRequest: brewery.validate.request
saga:
  awaitAttempts: 5
  awaitInterval: 50ms
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "beerorder-east", cfg.Service.Name)
	assert.Equal(t, 9090, cfg.Service.Port)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "brewery.validate.request", cfg.Kafka.Topics.ValidateOrderRequest)
	assert.Equal(t, 5, cfg.Saga.AwaitAttempts)
	assert.Equal(t, Duration(50*time.Millisecond), cfg.Saga.AwaitInterval)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("KAFKA_BROKERS", "broker-a:9092,broker-b:9092")
	t.Setenv("MYSQL_DSN", "user:pass@tcp(db:3306)/brewery")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"broker-a:9092", "broker-b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "user:pass@tcp(db:3306)/brewery", cfg.Mysql.DSN)
}
