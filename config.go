package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"cakeshop/database"
	aws_pkg "cakeshop/pkg/aws"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"

	appSecretName    = "cakeshop/APP_SECRETS"
	devJWTSecret     = "dev-secret-change-me"
	productionAppEnv = "production"
)

// Config holds every setting the server reads from the environment.
type Config struct {
	Port           string
	AppEnv         string
	JWTSecret      string
	StoreDriver    string
	Postgres       database.PostgresConfig
	RedisURL       string
	AllowedOrigins []string

	StripeAPIKey        string
	StripeWebhookSecret string
	PaymentCurrency     string
	PaymentMockFallback bool

	OrderTopicArn string
	AuthTopicArn  string

	ImagesBucket    string
	ImagesPublicURL string

	CloudWatchEnabled   bool
	CloudWatchNamespace string
	CloudWatchLogGroup  string

	UseSecrets bool
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == productionAppEnv
}

// LoadConfig reads the environment into a Config. When AWS_USE_SECRETS=true
// the credentials in the cakeshop/APP_SECRETS secret take precedence; a
// Secrets Manager failure falls back to the environment values.
func LoadConfig() (*Config, error) {
	return loadConfig(context.Background(), nil)
}

// loadConfig is LoadConfig with an injectable secret source. A nil source
// means Secrets Manager.
func loadConfig(ctx context.Context, secrets aws_pkg.SecretGetter) (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		AppEnv:      getEnv("APP_ENV", "development"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", StoreMemory)),
		Postgres: database.PostgresConfig{
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			DBName:   os.Getenv("POSTGRES_DB"),
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
			TimeZone: getEnv("POSTGRES_TIMEZONE", "UTC"),
		},
		RedisURL:       os.Getenv("REDIS_URL"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		StripeAPIKey:        os.Getenv("STRIPE_API_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		PaymentCurrency:     strings.ToLower(getEnv("PAYMENT_CURRENCY", "usd")),
		PaymentMockFallback: getBool("PAYMENT_MOCK_FALLBACK", true),

		OrderTopicArn: os.Getenv("ORDER_SNS_TOPIC_ARN"),
		AuthTopicArn:  os.Getenv("AUTH_SNS_TOPIC_ARN"),

		ImagesBucket:    os.Getenv("PRODUCT_IMAGES_BUCKET"),
		ImagesPublicURL: os.Getenv("PRODUCT_IMAGES_PUBLIC_URL"),

		CloudWatchEnabled:   getBool("CLOUDWATCH_ENABLED", false),
		CloudWatchNamespace: getEnv("CLOUDWATCH_NAMESPACE", "CakeShop"),
		CloudWatchLogGroup:  getEnv("CLOUDWATCH_LOG_GROUP", "/cakeshop/api"),

		UseSecrets: getBool("AWS_USE_SECRETS", false),
	}

	if cfg.UseSecrets {
		if secrets == nil {
			if awsCfg, err := aws_pkg.LoadAWSConfig(ctx); err == nil {
				secrets = aws_pkg.NewSecretsClient(awsCfg)
			}
		}
		if secrets != nil {
			if m, err := aws_pkg.GetSecretMap(ctx, secrets, appSecretName); err == nil {
				cfg.applySecrets(m)
			}
		}
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = devJWTSecret
	}

	switch cfg.StoreDriver {
	case StoreMemory:
	case StorePostgres:
		p := cfg.Postgres
		if p.User == "" || p.Password == "" || p.DBName == "" || p.Host == "" {
			return nil, fmt.Errorf("database config incomplete")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	return cfg, nil
}

func (c *Config) applySecrets(m map[string]string) {
	set := func(dst *string, key string) {
		if v, ok := m[key]; ok && v != "" {
			*dst = v
		}
	}
	set(&c.JWTSecret, "JWT_SECRET")
	set(&c.StripeAPIKey, "STRIPE_API_KEY")
	set(&c.StripeWebhookSecret, "STRIPE_WEBHOOK_SECRET")
	set(&c.Postgres.User, "POSTGRES_USER")
	set(&c.Postgres.Password, "POSTGRES_PASSWORD")
	set(&c.Postgres.DBName, "POSTGRES_DB")
	set(&c.Postgres.Host, "POSTGRES_HOST")
	set(&c.Postgres.Port, "POSTGRES_PORT")
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
