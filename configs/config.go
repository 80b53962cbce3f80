package configs

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopuz/payments-service/pkg/utils"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	Port          string `mapstructure:"PORT" validate:"required"`
	PrimaryDbAddr string `mapstructure:"PRIMARY_DB_ADDR" validate:"required"`
	ReplicaDbAddr string `mapstructure:"REPLICA_DB_ADDR"`
	MaxDbCons     int32  `mapstructure:"MAX_DB_CONNECTIONS" validate:"min=1"`
	MinDbCons     int32  `mapstructure:"MIN_DB_CONNECTIONS" validate:"min=1"`

	RedisAddr     string `mapstructure:"REDIS_ADDR" validate:"required"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	KafkaBrokers           string `mapstructure:"KAFKA_BROKERS" validate:"required"`
	NotificationTopic      string `mapstructure:"NOTIFICATION_TOPIC" validate:"required"`
	NotificationPartitions int    `mapstructure:"NOTIFICATION_PARTITIONS" validate:"min=1"`

	StripeSecretKey string `mapstructure:"STRIPE_SECRET_KEY" validate:"required"`
	// StripeWebhookSecret may be empty in local development, in which case
	// inbound events are accepted without signature verification.
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`

	// ClientURL is the storefront origin used for checkout redirect URLs.
	ClientURL string `mapstructure:"CLIENT_URL" validate:"required,url"`

	// ExchangeRate converts local minor units to USD (local units per dollar).
	ExchangeRate int64 `mapstructure:"EXCHANGE_RATE" validate:"min=1"`

	CheckoutRatePerSec int `mapstructure:"CHECKOUT_RATE_PER_SEC" validate:"min=1"`
	CheckoutRateBurst  int `mapstructure:"CHECKOUT_RATE_BURST" validate:"min=1"`
}

func Load(logger *zap.Logger) (*Config, error) {
	viper.SetEnvPrefix("app")
	viper.AutomaticEnv()

	// Default values
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("MAX_DB_CONNECTIONS", "10")
	viper.SetDefault("MIN_DB_CONNECTIONS", "2")
	viper.SetDefault("NOTIFICATION_TOPIC", "shop.notifications")
	viper.SetDefault("NOTIFICATION_PARTITIONS", "4")
	viper.SetDefault("CLIENT_URL", "http://localhost:3000")
	viper.SetDefault("EXCHANGE_RATE", "12500")
	viper.SetDefault("CHECKOUT_RATE_PER_SEC", "20")
	viper.SetDefault("CHECKOUT_RATE_BURST", "40")

	// Optional: Read from config.yaml if exists
	if gin.ReleaseMode == gin.Mode() {
		viper.SetConfigName("config.prod")
	} else if gin.TestMode == gin.Mode() {
		logger.Warn("running in test mode")
		viper.SetConfigName("config.test")
	} else {
		logger.Warn("running in development mode")
		viper.SetConfigName("config.dev")
	}
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	_ = viper.ReadInConfig() // Ignore if no file

	var cfg Config
	if err := utils.ParseStructEnv(&cfg); err != nil {
		return nil, err
	}
	// Validate after unmarshal
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, utils.FormatConfigErrors(logger, err, cfg)
	}
	return &cfg, nil
}
