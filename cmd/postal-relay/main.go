// Package main is the entry point for the postal-relay SMTP server.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/synergitech/postal-relay/internal/config"
	"github.com/synergitech/postal-relay/internal/database"
	"github.com/synergitech/postal-relay/internal/postal"
	"github.com/synergitech/postal-relay/internal/provider"
	"github.com/synergitech/postal-relay/internal/provider/ses"
	"github.com/synergitech/postal-relay/internal/provider/stdout"
	"github.com/synergitech/postal-relay/internal/record"
	"github.com/synergitech/postal-relay/internal/smtp"
	relaytls "github.com/synergitech/postal-relay/internal/tls"
	"github.com/synergitech/postal-relay/internal/transport"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file (optional)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Logging.Level)

	tlsConfig, err := relaytls.LoadOrGenerateTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile, cfg.SMTP.Hostname)
	if err != nil {
		slog.Error("failed to setup TLS", "error", err)
		os.Exit(1)
	}

	tlsMode := "self-signed"
	if cfg.TLS.CertFile != "" && cfg.TLS.KeyFile != "" {
		tlsMode = "file"
	}

	backend := selectBackend(cfg)

	server := smtp.New(smtp.ServerConfig{
		ListenAddr:     cfg.SMTP.Listen,
		Hostname:       cfg.SMTP.Hostname,
		Backend:        backend,
		MaxMessageSize: cfg.SMTP.MaxMessageSize,
		TLSConfig:      tlsConfig,
		AuthUsername:   cfg.SMTP.Username,
		AuthPassword:   cfg.SMTP.Password,
	})

	slog.Info("starting postal-relay",
		"listen", cfg.SMTP.Listen,
		"backend", backend.Name(),
		"auth_enabled", cfg.AuthEnabled(),
		"tls_mode", tlsMode,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		sig := <-sigCh
		slog.Info("received signal, initiating shutdown", "signal", sig)
		cancel()
	}()

	if err := server.ListenAndServe(ctx); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("postal-relay stopped")
}

// loadConfig loads configuration from the specified path (YAML + env override)
// or from environment variables only if no path is given.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// setupLogger configures the global slog logger with JSON output and the
// specified log level.
func setupLogger(level string) {
	var logLevel slog.Level

	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// selectBackend chooses the delivery backend based on configuration. An
// explicit provider setting takes precedence; otherwise Postal is used when
// configured, falling back to stdout.
func selectBackend(cfg *config.Config) provider.Provider {
	switch cfg.Provider {
	case "postal":
		if !cfg.PostalConfigured() {
			slog.Error("postal backend selected but POSTAL_BASE_URL and POSTAL_API_KEY are required")
			os.Exit(1)
		}
		return newPostalBackend(cfg)

	case "ses":
		if !cfg.SESConfigured() {
			slog.Error("SES backend selected but SES_REGION and SES_SENDER are required")
			os.Exit(1)
		}
		slog.Info("using AWS SES backend",
			"region", cfg.SES.Region,
			"sender", cfg.SES.Sender,
		)
		p, err := ses.New(context.Background(), ses.ProviderConfig{
			Region:          cfg.SES.Region,
			AccessKeyID:     cfg.SES.AccessKeyID,
			SecretAccessKey: cfg.SES.SecretAccessKey,
			Sender:          cfg.SES.Sender,
		})
		if err != nil {
			slog.Error("failed to create SES backend", "error", err)
			os.Exit(1)
		}
		return p

	case "stdout":
		slog.Info("using stdout backend")
		return stdout.New()

	case "":
		if cfg.PostalConfigured() {
			return newPostalBackend(cfg)
		}
		if cfg.SESConfigured() {
			slog.Info("using AWS SES backend (auto-detected)",
				"region", cfg.SES.Region,
				"sender", cfg.SES.Sender,
			)
			p, err := ses.New(context.Background(), ses.ProviderConfig{
				Region:          cfg.SES.Region,
				AccessKeyID:     cfg.SES.AccessKeyID,
				SecretAccessKey: cfg.SES.SecretAccessKey,
				Sender:          cfg.SES.Sender,
			})
			if err != nil {
				slog.Error("failed to create SES backend", "error", err)
				os.Exit(1)
			}
			return p
		}
		slog.Info("no backend configured, using stdout backend")
		return stdout.New()

	default:
		slog.Error("unknown provider", "provider", cfg.Provider)
		os.Exit(1)
		return nil
	}
}

// newPostalBackend builds the Postal transport, attaching the delivery-log
// recorder when delivery logging is enabled.
func newPostalBackend(cfg *config.Config) provider.Provider {
	client := postal.NewClient(cfg.Postal.BaseURL, cfg.Postal.APIKey)

	var recorder transport.Recorder
	if cfg.Postal.LogDeliveries {
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			slog.Error("failed to connect to delivery log database", "error", err)
			os.Exit(1)
		}

		store, err := record.NewPostgresStore(db, cfg.Postal.LogTable)
		if err != nil {
			slog.Error("failed to configure delivery log store", "error", err)
			os.Exit(1)
		}

		recorder = record.NewRecorder(store)
	}

	slog.Info("using Postal backend",
		"base_url", cfg.Postal.BaseURL,
		"delivery_log", cfg.Postal.LogDeliveries,
	)

	return transport.New(client, recorder)
}
