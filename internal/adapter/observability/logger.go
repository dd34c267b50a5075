package observability

import (
	"log/slog"
	"os"

	"github.com/firstroundai/interviewd/internal/config"
)

// SetupLogger builds the process-wide slog logger. Production emits JSON at
// info level; dev switches to a human-readable text handler at debug level
// with source locations.
func SetupLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var h slog.Handler
	if cfg.IsDev() {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(h).With(
		slog.String("service", cfg.OTELServiceName),
		slog.String("env", cfg.AppEnv),
	)
}
