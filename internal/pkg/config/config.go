package config

import (
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration, loaded once at startup from a
// YAML file with environment-variable overrides for deployment knobs.
type Config struct {
	Service struct {
		Name string `yaml:"name"`
		Port int    `yaml:"port"`
	} `yaml:"service"`

	MySQL struct {
		DSN string `yaml:"dsn"`
	} `yaml:"mysql"`

	Redis struct {
		Addr string `yaml:"addr"`
	} `yaml:"redis"`

	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		EventTopic   string   `yaml:"event_topic"`
		ConsumeTopic string   `yaml:"consume_topic"`
		GroupID      string   `yaml:"group_id"`
	} `yaml:"kafka"`

	Zookeeper struct {
		Enabled bool     `yaml:"enabled"`
		Addrs   []string `yaml:"addrs"`
	} `yaml:"zookeeper"`

	Nacos struct {
		Enabled     bool   `yaml:"enabled"`
		ServerAddrs string `yaml:"server_addrs"`
		Namespace   string `yaml:"namespace"`
		Group       string `yaml:"group"`
	} `yaml:"nacos"`

	Jaeger struct {
		Endpoint string `yaml:"endpoint"`
	} `yaml:"jaeger"`

	ProductService struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"product_service"`

	Reservation struct {
		DefaultTTLMinutes    int `yaml:"default_ttl_minutes"`
		SweepIntervalSeconds int `yaml:"sweep_interval_seconds"`
		PurgeAfterHours      int `yaml:"purge_after_hours"`
	} `yaml:"reservation"`

	Cache struct {
		StockCheckTTLSeconds int `yaml:"stock_check_ttl_seconds"`
		ItemTTLSeconds       int `yaml:"item_ttl_seconds"`
	} `yaml:"cache"`

	Alerts struct {
		LowStockRule   string `yaml:"low_stock_rule"`
		OutOfStockRule string `yaml:"out_of_stock_rule"`
	} `yaml:"alerts"`
}

var (
	current *Config
	mu      sync.RWMutex
)

// Load reads path, applies env overrides and defaults, and installs the
// result as the current config.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}
	applyEnv(cfg)
	applyDefaults(cfg)

	mu.Lock()
	current = cfg
	mu.Unlock()
	return cfg, nil
}

// Current returns the last loaded config. Panics if Load was never called;
// that is a wiring bug, not a runtime condition.
func Current() *Config {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		panic("config.Current called before config.Load")
	}
	return current
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("MYSQL_DSN"); v != "" {
		cfg.MySQL.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("ZOOKEEPER_ADDRS"); v != "" {
		cfg.Zookeeper.Addrs = strings.Split(v, ",")
		cfg.Zookeeper.Enabled = true
	}
	if v := os.Getenv("NACOS_SERVER_ADDRS"); v != "" {
		cfg.Nacos.ServerAddrs = v
		cfg.Nacos.Enabled = true
	}
	if v := os.Getenv("NACOS_NAMESPACE"); v != "" {
		cfg.Nacos.Namespace = v
	}
	if v := os.Getenv("NACOS_GROUP"); v != "" {
		cfg.Nacos.Group = v
	}
	if v := os.Getenv("JAEGER_ENDPOINT"); v != "" {
		cfg.Jaeger.Endpoint = v
	}
	if v := os.Getenv("PRODUCT_SERVICE_URL"); v != "" {
		cfg.ProductService.BaseURL = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Service.Name == "" {
		cfg.Service.Name = "inventory-service"
	}
	if cfg.Service.Port == 0 {
		cfg.Service.Port = 8085
	}
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{"localhost:9092"}
	}
	if cfg.Kafka.EventTopic == "" {
		cfg.Kafka.EventTopic = "inventory-events"
	}
	if cfg.Kafka.ConsumeTopic == "" {
		cfg.Kafka.ConsumeTopic = "order-events"
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = "inventory-worker"
	}
	if cfg.Nacos.Group == "" {
		cfg.Nacos.Group = "DEFAULT_GROUP"
	}
	if cfg.Jaeger.Endpoint == "" {
		cfg.Jaeger.Endpoint = "http://localhost:14268/api/traces"
	}
	if cfg.Reservation.DefaultTTLMinutes == 0 {
		cfg.Reservation.DefaultTTLMinutes = 30
	}
	if cfg.Reservation.SweepIntervalSeconds == 0 {
		cfg.Reservation.SweepIntervalSeconds = 60
	}
	if cfg.Reservation.PurgeAfterHours == 0 {
		cfg.Reservation.PurgeAfterHours = 24
	}
	if cfg.Cache.StockCheckTTLSeconds == 0 {
		cfg.Cache.StockCheckTTLSeconds = 300
	}
	if cfg.Cache.ItemTTLSeconds == 0 {
		cfg.Cache.ItemTTLSeconds = 600
	}
	if cfg.Alerts.LowStockRule == "" {
		cfg.Alerts.LowStockRule = "available <= reorder_level && available > 0"
	}
	if cfg.Alerts.OutOfStockRule == "" {
		cfg.Alerts.OutOfStockRule = "available == 0"
	}
}
