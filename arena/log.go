package arena

import (
	"io"
	"log/slog"
	"os"
)

// Runtime debug flag for allocation logging - controlled by ARENAKIT_LOG_ALLOC env var.
var logAlloc = os.Getenv("ARENAKIT_LOG_ALLOC") != ""

// defaultLogger discards everything unless ARENAKIT_LOG_ALLOC is set, in which
// case placement decisions are written to stderr at debug level.
func defaultLogger() *slog.Logger {
	if logAlloc {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
