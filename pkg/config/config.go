package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Port                string        `mapstructure:"PORT"`
	GRPCPort            string        `mapstructure:"GRPC_PORT"`
	ServiceName         string        `mapstructure:"SERVICE_NAME"`
	LogLevel            string        `mapstructure:"LOG_LEVEL"`
	AppEnv              string        `mapstructure:"APP_ENV"`
	PostgresUsername    string        `mapstructure:"POSTGRES_USERNAME"`
	PostgresPassword    string        `mapstructure:"POSTGRES_PASSWORD"`
	PostgresDatabase    string        `mapstructure:"POSTGRES_DATABASE"`
	PostgresSSLMode     string        `mapstructure:"POSTGRES_SSLMODE"`
	PostgresHost        string        `mapstructure:"POSTGRES_HOST"`
	PostgresPort        string        `mapstructure:"POSTGRES_PORT"`
	MigrateOnStart      bool          `mapstructure:"MIGRATE_ON_START"`
	RedisURL            string        `mapstructure:"REDIS_URL"`
	ItemCacheTTL        time.Duration `mapstructure:"ITEM_CACHE_TTL"`
	RabbitMQURL         string        `mapstructure:"RABBITMQ_URL"`
	AWSEndpoint         string        `mapstructure:"AWS_ENDPOINT"`
	AWSBucket           string        `mapstructure:"AWS_BUCKET"`
	AWSDefaultRegion    string        `mapstructure:"AWS_DEFAULT_REGION"`
	AWSAccessKey        string        `mapstructure:"AWS_ACCESS_KEY"`
	AWSSecretKey        string        `mapstructure:"AWS_SECRET_KEY"`
	AWSRequestTimeout   time.Duration `mapstructure:"AWS_REQUEST_TIMEOUT"`
	AWSMaxAttempts      int           `mapstructure:"AWS_MAX_ATTEMPTS"`
	ImageMaxBytes       int64         `mapstructure:"IMAGE_MAX_BYTES"`
	ImageReclaimEnabled bool          `mapstructure:"IMAGE_RECLAIM_ENABLED"`
}

func (c AppConfig) Development() bool {
	return c.AppEnv == "" || c.AppEnv == "development" || c.AppEnv == "local"
}

// PostgresDSN returns a lib/pq keyword connection string.
func (c AppConfig) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUsername, c.PostgresPassword, c.PostgresDatabase, c.PostgresSSLMode,
	)
}

func Read() *AppConfig {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()

	bindEnvVariables()
	setDefaults()

	var appConfig AppConfig
	err := viper.Unmarshal(&appConfig)
	if err != nil {
		panic(fmt.Errorf("fatal error unmarshalling config: %w", err))
	}

	return &appConfig
}

func bindEnvVariables() {
	for _, key := range []string{
		"PORT", "GRPC_PORT", "SERVICE_NAME", "LOG_LEVEL", "APP_ENV",
		"POSTGRES_USERNAME", "POSTGRES_PASSWORD", "POSTGRES_DATABASE",
		"POSTGRES_SSLMODE", "POSTGRES_HOST", "POSTGRES_PORT", "MIGRATE_ON_START",
		"REDIS_URL", "ITEM_CACHE_TTL", "RABBITMQ_URL",
		"AWS_ENDPOINT", "AWS_BUCKET", "AWS_DEFAULT_REGION", "AWS_ACCESS_KEY", "AWS_SECRET_KEY",
		"AWS_REQUEST_TIMEOUT", "AWS_MAX_ATTEMPTS",
		"IMAGE_MAX_BYTES", "IMAGE_RECLAIM_ENABLED",
	} {
		_ = viper.BindEnv(key)
	}
}

func setDefaults() {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("GRPC_PORT", "9090")
	viper.SetDefault("SERVICE_NAME", "catalog")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")
	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", "5432")
	viper.SetDefault("MIGRATE_ON_START", true)
	viper.SetDefault("ITEM_CACHE_TTL", "5m")
	viper.SetDefault("AWS_DEFAULT_REGION", "us-east-1")
	viper.SetDefault("AWS_REQUEST_TIMEOUT", "10s")
	viper.SetDefault("AWS_MAX_ATTEMPTS", 3)
	viper.SetDefault("IMAGE_MAX_BYTES", 5<<20)
	viper.SetDefault("IMAGE_RECLAIM_ENABLED", false)
}
