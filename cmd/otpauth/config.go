package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	env "github.com/caarlos0/env/v7"
	"github.com/joho/godotenv"

	"github.com/MrEthical07/otpauth"
)

const (
	storeRedis  = "redis"
	storeMemory = "memory"

	mailSMTP  = "smtp"
	mailKafka = "kafka"
	mailLog   = "log"
)

type serverConfig struct {
	HTTPAddr  string `env:"HTTP_ADDR" envDefault:":6001"`
	AppEnv    string `env:"APP_ENV" envDefault:"production"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	StoreBackend string `env:"STORE_BACKEND" envDefault:"redis"`
	RedisURL     string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	PostgresDSN      string `env:"POSTGRES_DSN"`
	PostgresMaxConns int32  `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	AutoMigrate      bool   `env:"AUTO_MIGRATE" envDefault:"true"`

	AccessTokenSecret  string        `env:"ACCESS_TOKEN_SECRET,required"`
	RefreshTokenSecret string        `env:"REFRESH_TOKEN_SECRET,required"`
	AccessTokenTTL     time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL    time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`

	CookieSameSite string `env:"COOKIE_SAMESITE" envDefault:"none"`
	CookieDomain   string `env:"COOKIE_DOMAIN"`
	CookieInsecure bool   `env:"COOKIE_INSECURE" envDefault:"false"`

	MailTransport string `env:"MAIL_TRANSPORT" envDefault:"smtp"`
	SMTP          smtpConfig
	KafkaBrokers  []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic    string   `env:"KAFKA_TOPIC" envDefault:"auth.notifications"`

	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

type smtpConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	User     string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM"`
	FromName string `env:"SMTP_FROM_NAME" envDefault:"otpauth"`
}

// loadConfig reads envPath if it exists, then the process environment.
func loadConfig(envPath string) (serverConfig, error) {
	var c serverConfig

	if envPath != "" {
		err := godotenv.Load(envPath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return serverConfig{}, err
		}
	}

	if err := env.Parse(&c); err != nil {
		return serverConfig{}, err
	}

	c.StoreBackend = strings.ToLower(c.StoreBackend)
	c.MailTransport = strings.ToLower(c.MailTransport)
	c.CookieSameSite = strings.ToLower(c.CookieSameSite)

	if err := c.validate(); err != nil {
		return serverConfig{}, err
	}
	return c, nil
}

func (c serverConfig) validate() error {
	switch c.StoreBackend {
	case storeRedis, storeMemory:
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", storeRedis, storeMemory, c.StoreBackend)
	}

	switch c.MailTransport {
	case mailSMTP:
		if c.SMTP.Host == "" || c.SMTP.From == "" {
			return errors.New("MAIL_TRANSPORT=smtp requires SMTP_HOST and SMTP_FROM")
		}
	case mailKafka:
		if len(c.KafkaBrokers) == 0 {
			return errors.New("MAIL_TRANSPORT=kafka requires KAFKA_BROKERS")
		}
	case mailLog:
	default:
		return fmt.Errorf("MAIL_TRANSPORT must be smtp, kafka or log, got %q", c.MailTransport)
	}

	switch c.CookieSameSite {
	case "none", "lax", "strict":
	default:
		return fmt.Errorf("COOKIE_SAMESITE must be none, lax or strict, got %q", c.CookieSameSite)
	}

	return nil
}

func (c serverConfig) development() bool {
	return c.AppEnv == "development"
}

// engineConfig maps the environment onto the library configuration.
func (c serverConfig) engineConfig() otpauth.Config {
	cfg := otpauth.DefaultConfig()
	cfg.JWT.AccessSecret = []byte(c.AccessTokenSecret)
	cfg.JWT.RefreshSecret = []byte(c.RefreshTokenSecret)
	cfg.JWT.AccessTTL = c.AccessTokenTTL
	cfg.JWT.RefreshTTL = c.RefreshTokenTTL
	cfg.Metrics.Enabled = c.MetricsEnabled
	cfg.Metrics.EnableLatencyHistograms = c.MetricsEnabled
	cfg.Development = c.development()
	return cfg
}
