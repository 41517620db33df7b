package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v4"
)

type Config struct {
	Database    DatabaseConfig    `yaml:"database"`
	Kafka       KafkaConfig       `yaml:"kafka"`
	Redis       RedisConfig       `yaml:"redis"`
	DispatchBox DispatchBoxConfig `yaml:"dispatchbox"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

type KafkaConfig struct {
	Host                     string `yaml:"host"`
	Port                     int    `yaml:"port"`
	OrderDispatchedTopicName string `yaml:"order_dispatched_topic_name"`
	ShippingEventsTopicName  string `yaml:"shipping_events_topic_name"`
}

type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DispatchBoxConfig struct {
	HTTPAddr             string `yaml:"http_addr"`
	KafkaConsumerGroup   string `yaml:"kafka_consumer_group"`
	OrderCacheTTLSeconds int    `yaml:"order_cache_ttl_seconds"`

	// Worker settings. The scan interval is once a day in production;
	// demo and test configs shrink it.
	WorkerScanIntervalSeconds int    `yaml:"worker_scan_interval_seconds"`
	WorkerHTTPAddr            string `yaml:"worker_http_addr"`

	WorkerRateLimitPerMinute          int `yaml:"worker_rate_limit_per_minute"`
	WorkerRateLimitDHLPerMinute       int `yaml:"worker_rate_limit_dhl_per_minute"`
	WorkerRateLimitRoyalMailPerMinute int `yaml:"worker_rate_limit_royal_mail_per_minute"`

	DHLBaseURL   string `yaml:"dhl_base_url"`
	DHLAuthToken string `yaml:"dhl_auth_token"`

	RoyalMailBaseURL  string `yaml:"royal_mail_base_url"`
	RoyalMailLogin    string `yaml:"royal_mail_login"`
	RoyalMailPassword string `yaml:"royal_mail_password"`
}

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return &config, nil
}
