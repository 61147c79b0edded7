package config

import (
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"automarket/internal/model"
)

// Config is the full service configuration, loaded from one yaml file.
type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	MySQL          MySQLConfig          `mapstructure:"mysql"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Kafka          KafkaConfig          `mapstructure:"kafka"`
	Auth           AuthConfig           `mapstructure:"auth"`
	Gateways       GatewaysConfig       `mapstructure:"gateways"`
	Business       BusinessConfig       `mapstructure:"business"`
	DefaultPricing DefaultPricingConfig `mapstructure:"default_pricing"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type MySQLConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Brokers []string         `mapstructure:"brokers"`
	Topic   KafkaTopicConfig `mapstructure:"topic"`
}

type KafkaTopicConfig struct {
	PromotionPurchased string `mapstructure:"promotion_purchased"`
	BalanceDeposited   string `mapstructure:"balance_deposited"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// GatewaysConfig carries the checkout redirect bases for the external payment
// providers. The providers themselves are external collaborators; the engine
// only builds checkout URLs and consumes their callbacks.
type GatewaysConfig struct {
	Flitt GatewayConfig `mapstructure:"flitt"`
	BOG   GatewayConfig `mapstructure:"bog"`
}

type GatewayConfig struct {
	CheckoutBaseURL string `mapstructure:"checkout_base_url"`
}

type BusinessConfig struct {
	MaxRetryCount      int    `mapstructure:"max_retry_count"`
	MinDepositAmount   string `mapstructure:"min_deposit_amount"`
	MaintenanceCron    string `mapstructure:"maintenance_cron"`
	PricingCacheTTLSec int    `mapstructure:"pricing_cache_ttl_sec"`
}

// DefaultPricingConfig is the versioned fallback price table used when no
// pricing row exists for a requested (service, role, category) triple. It is
// category-independent and must always produce a number.
type DefaultPricingConfig struct {
	Version string                        `mapstructure:"version"`
	PerDay  map[string]map[string]float64 `mapstructure:"per_day"`
}

// Resolve returns the fallback price per day, zero for unknown combinations.
func (d DefaultPricingConfig) Resolve(service model.ServiceType, role model.UserRole) decimal.Decimal {
	roles, ok := d.PerDay[string(service)]
	if !ok {
		return decimal.Zero
	}
	price, ok := roles[string(role)]
	if !ok {
		return decimal.Zero
	}
	return decimal.NewFromFloat(price)
}

// MinDeposit parses the configured deposit floor, zero when unset or invalid.
func (b BusinessConfig) MinDeposit() decimal.Decimal {
	if b.MinDepositAmount == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(b.MinDepositAmount)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// LoadConfig reads and parses the yaml config file.
func LoadConfig(configPath string) *Config {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	setPricingDefaults()
	viper.SetDefault("business.max_retry_count", 5)
	viper.SetDefault("business.maintenance_cron", "0 3 * * *")
	viper.SetDefault("business.pricing_cache_ttl_sec", 300)
	viper.SetDefault("kafka.topic.promotion_purchased", "promotion.purchased")
	viper.SetDefault("kafka.topic.balance_deposited", "balance.deposited")

	if err := viper.ReadInConfig(); err != nil {
		logrus.Fatalf("failed to read config file: %v", err)
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		logrus.Fatalf("failed to parse config file: %v", err)
	}

	return config
}

// setPricingDefaults installs pricing table v1 so the service keeps charging
// correct amounts even with an empty pricing_entries table and no
// default_pricing block in the config file.
func setPricingDefaults() {
	viper.SetDefault("default_pricing.version", "v1")
	viper.SetDefault("default_pricing.per_day", map[string]map[string]float64{
		"free":               {"user": 0, "dealer": 0, "autosalon": 0},
		"vip":                {"user": 1.0, "dealer": 1.5, "autosalon": 2.0},
		"vip_plus":           {"user": 2.0, "dealer": 2.5, "autosalon": 3.0},
		"super_vip":          {"user": 3.0, "dealer": 4.0, "autosalon": 5.0},
		"color_highlighting": {"user": 0.5, "dealer": 0.5, "autosalon": 0.5},
		"auto_renewal":       {"user": 0.5, "dealer": 0.5, "autosalon": 0.5},
	})
}
