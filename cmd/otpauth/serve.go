package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/MrEthical07/otpauth"
	"github.com/MrEthical07/otpauth/credentials/memory"
	"github.com/MrEthical07/otpauth/credentials/postgres"
	"github.com/MrEthical07/otpauth/httpapi"
	"github.com/MrEthical07/otpauth/internal/errutil"
	"github.com/MrEthical07/otpauth/internal/logging"
	"github.com/MrEthical07/otpauth/mail"
	promexport "github.com/MrEthical07/otpauth/metrics/export/prometheus"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	logger := logging.Setup("otpauth", version, cfg.LogFormat, cfg.LogLevel, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				logger.Warn("close failed", "error", err)
			}
		}
	}()

	builder := otpauth.New().WithConfig(cfg.engineConfig()).WithLogger(logger)

	switch cfg.StoreBackend {
	case storeMemory:
		logger.Warn("using in-memory ephemeral store; state is lost on restart")
		builder = builder.WithStore(otpauth.NewMemoryStore())
	default:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return oops.Code("CONFIG_INVALID").With("setting", "REDIS_URL").Wrap(err)
		}
		rdb := redis.NewClient(opts)
		closers = append(closers, rdb)
		builder = builder.WithRedis(rdb)
	}

	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set; users are kept in memory")
		builder = builder.WithCredentialStore(memory.New())
	} else {
		pool, err := postgres.Connect(ctx, postgres.ConnectConfig{
			DSN:      cfg.PostgresDSN,
			MaxConns: cfg.PostgresMaxConns,
		}, logger)
		if err != nil {
			return err
		}
		defer pool.Close()

		if cfg.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				return err
			}
		}
		builder = builder.WithCredentialStore(postgres.New(pool))
	}

	sender, closer, err := newMailer(cfg, logger)
	if err != nil {
		return err
	}
	if closer != nil {
		closers = append(closers, closer)
	}
	builder = builder.WithMailer(sender)

	engine, err := builder.Build()
	if err != nil {
		return oops.Code("ENGINE_BUILD_FAILED").Wrap(err)
	}

	report := engine.SecurityReport()
	logger.Info("security posture",
		"production", report.ProductionMode,
		"signing_alg", report.SigningAlgorithm,
		"secrets_distinct", report.SecretsDistinct,
		"otp_lockout", report.OTPLockoutActive,
		"otp_spam_lock", report.OTPSpamLockActive,
		"login_lockout", report.LoginLockoutActive,
	)
	if !report.ProductionMode {
		logger.Warn("development mode exposes internal error detail in responses")
	}

	api := httpapi.New(engine, httpapi.Options{
		Logger:         logger,
		Development:    cfg.development(),
		CookieSameSite: httpapi.ParseSameSite(cfg.CookieSameSite),
		CookieInsecure: cfg.CookieInsecure,
		CookieDomain:   cfg.CookieDomain,
	})

	mux := http.NewServeMux()
	mux.Handle("/", api.Routes())
	if cfg.MetricsEnabled {
		mux.Handle("GET /metrics", promexport.NewPrometheusExporter(engine).Handler())
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server started", "addr", cfg.HTTPAddr, "store", cfg.StoreBackend, "mail", cfg.MailTransport)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return oops.Code("HTTP_SERVE_FAILED").Wrap(err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		errutil.LogError(shutdownCtx, logger, "http shutdown failed", err)
		return err
	}
	return nil
}

// newMailer returns the configured transport and, when it holds resources,
// its closer.
func newMailer(cfg serverConfig, logger *slog.Logger) (mail.Sender, io.Closer, error) {
	if cfg.MailTransport == mailLog {
		logger.Warn("MAIL_TRANSPORT=log prints OTPs to the log; do not use in production")
		return mail.NewLogSender(logger), nil, nil
	}

	renderer, err := mail.NewRenderer()
	if err != nil {
		return nil, nil, oops.Code("MAIL_TEMPLATES_INVALID").Wrap(err)
	}

	switch cfg.MailTransport {
	case mailKafka:
		sender, err := mail.NewKafkaSender(logger, cfg.KafkaBrokers, cfg.KafkaTopic, renderer)
		if err != nil {
			return nil, nil, oops.Code("CONFIG_INVALID").With("setting", "KAFKA_BROKERS").Wrap(err)
		}
		return sender, sender, nil
	default:
		sender, err := mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			FromName: cfg.SMTP.FromName,
		}, renderer)
		if err != nil {
			return nil, nil, oops.Code("CONFIG_INVALID").With("setting", "SMTP_HOST").Wrap(err)
		}
		return sender, nil, nil
	}
}
