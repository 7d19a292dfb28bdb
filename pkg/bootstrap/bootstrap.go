// Package bootstrap creates the process-wide dependencies: logger and event publisher.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/abgdnv/productcatalog/pkg/config"
	"github.com/abgdnv/productcatalog/pkg/logger"
	"github.com/abgdnv/productcatalog/pkg/messaging"
	natsclient "github.com/abgdnv/productcatalog/pkg/nats"
)

// NewLogger creates a JSON slog.Logger writing to w with the specified log level.
// Records carry request and trace identifiers found in the context.
func NewLogger(w io.Writer, level string) *slog.Logger {
	logLevel := toLevel(level)
	loggerOpts := &slog.HandlerOptions{
		AddSource: logLevel == slog.LevelDebug,
		Level:     logLevel,
	}
	logHandler := logger.NewContextHandler(slog.NewJSONHandler(w, loggerOpts))
	return slog.New(logHandler)
}

// NewPublisher returns a JetStream publisher when events are enabled, and a no-op publisher otherwise.
// The returned close function releases the NATS connection and is always safe to call.
func NewPublisher(ctx context.Context, clientName string, cfg config.EventsConfig, log *slog.Logger) (messaging.Publisher, func(), error) {
	if !cfg.Enabled {
		log.Info("Product events are disabled")
		return messaging.NopPublisher{}, func() {}, nil
	}

	nc, err := natsclient.NewClient(cfg.NATS.Url, clientName, cfg.NATS.Timeout, log)
	if err != nil {
		return nil, nil, err
	}
	js, err := natsclient.NewJetStreamContext(nc)
	if err != nil {
		nc.Close()
		return nil, nil, err
	}

	streamCtx, cancel := context.WithTimeout(ctx, cfg.NATS.Timeout)
	defer cancel()
	if err := natsclient.EnsureStream(streamCtx, js, cfg.Stream, messaging.ProductsWildcardSubject); err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("failed to prepare events stream: %w", err)
	}
	log.Info("Publishing product events", "url", nc.ConnectedUrl(), "stream", cfg.Stream)

	closeFn := func() {
		if err := nc.Drain(); err != nil {
			log.Warn("Failed to drain NATS connection", "error", err)
		}
	}
	return natsclient.NewNatsPublisher(js), closeFn, nil
}

// toLevel converts a string representation of a log level to slog.Level.
func toLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
