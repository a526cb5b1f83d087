// internal/pkg/bootstrap/config.go
package bootstrap

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Duration 让 time.Duration 支持 "100ms" 这样的 YAML 字面量。
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return errors.Wrapf(err, "parse duration %q", raw)
	}
	*d = Duration(parsed)
	return nil
}

// Config 是服务的全量配置。
// 队列主题名和轮询参数都通过这里显式传入各组件的构造函数，
// 不依赖进程级常量。
type Config struct {
	Service struct {
		Name string `yaml:"name"`
		Port int    `yaml:"port"`
	} `yaml:"service"`

	Mysql struct {
		DSN string `yaml:"dsn"`
	} `yaml:"mysql"`

	Kafka struct {
		Brokers []string `yaml:"brokers"`
		GroupID string   `yaml:"groupId"`
		Topics  Topics   `yaml:"topics"`
	} `yaml:"kafka"`

	Redis struct {
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		DedupTTL Duration      `yaml:"dedupTtl"`
	} `yaml:"redis"`

	Jaeger struct {
		Endpoint string `yaml:"endpoint"`
	} `yaml:"jaeger"`

	Nacos struct {
		Addrs     string `yaml:"addrs"` // "ip1:port1,ip2:port2"；为空时跳过注册
		Namespace string `yaml:"namespace"`
		Group     string `yaml:"group"`
	} `yaml:"nacos"`

	Saga struct {
		AwaitAttempts int           `yaml:"awaitAttempts"`
		AwaitInterval Duration `yaml:"awaitInterval"`
	} `yaml:"saga"`
}

// Topics 汇总了本服务用到的全部消息主题。
type Topics struct {
	ValidateOrderRequest string `yaml:"validateOrderRequest"`
	ValidationResult     string `yaml:"validationResult"`
	AllocateOrderRequest string `yaml:"allocateOrderRequest"`
	AllocationResult     string `yaml:"allocationResult"`
	AllocationFailure    string `yaml:"allocationFailure"`
}

// LoadConfig 从 CONFIG_PATH 指向的 YAML 文件加载配置，
// 文件缺失时退回到环境变量加默认值（本地开发友好）。
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config file %s", path)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config file %s", path)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.Service.Name = "beerorder-service"
	cfg.Service.Port = 8080
	cfg.Mysql.DSN = "root:root@tcp(localhost:3306)/brewery?charset=utf8mb4&parseTime=True&loc=Local"
	cfg.Kafka.Brokers = []string{"localhost:9092"}
	cfg.Kafka.GroupID = "beerorder-service"
	cfg.Kafka.Topics = Topics{
		ValidateOrderRequest: "validate-order-request",
		ValidationResult:     "validate-order-result",
		AllocateOrderRequest: "allocate-order-request",
		AllocationResult:     "allocate-order-result",
		AllocationFailure:    "allocation-failure",
	}
	cfg.Redis.Addr = "localhost:6379"
	cfg.Redis.DedupTTL = Duration(24 * time.Hour)
	cfg.Jaeger.Endpoint = "http://localhost:14268/api/traces"
	cfg.Nacos.Group = "DEFAULT_GROUP"
	cfg.Saga.AwaitAttempts = 10
	cfg.Saga.AwaitInterval = Duration(100 * time.Millisecond)
	return cfg
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MYSQL_DSN"); v != "" {
		cfg.Mysql.DSN = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("JAEGER_ENDPOINT"); v != "" {
		cfg.Jaeger.Endpoint = v
	}
	if v := os.Getenv("NACOS_SERVER_ADDRS"); v != "" {
		cfg.Nacos.Addrs = v
	}
	if v := os.Getenv("NACOS_NAMESPACE"); v != "" {
		cfg.Nacos.Namespace = v
	}
	if v := os.Getenv("NACOS_GROUP"); v != "" {
		cfg.Nacos.Group = v
	}
}
