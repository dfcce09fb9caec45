package internal

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ParseLogLevel maps a level name to a slog.Level. Names are
// case-insensitive; "warn" is accepted for "warning".
func ParseLogLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warning", "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q (use debug, info, warning or error)", name)
}

// SetupLogger installs a text handler writing to w as the default logger.
// Engine failures are logged at debug level by every accessor.
func SetupLogger(w io.Writer, level slog.Level) {
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}
