package platform

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/nats-io/nats-server/v2/server"
)

// InitLogger installs the process-wide slog logger: JSON on stdout with
// source locations. HELLORUN_LOG_LEVEL (debug|info|warn|error) adjusts the
// threshold; the default is info.
func InitLogger() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevelFromEnv(),
	})
	slog.SetDefault(slog.New(handler))
}

func logLevelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("HELLORUN_LOG_LEVEL")) {
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

// natsSlog bridges the nats-server Logger interface onto slog so the embedded
// server's output lands in the same JSON stream as the app's.
type natsSlog struct {
	l *slog.Logger
}

// NewNATSServerLogger wraps logger for server.SetLogger. Nil falls back to
// slog.Default.
func NewNATSServerLogger(logger *slog.Logger) server.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &natsSlog{l: logger}
}

// Noticef drops startup notices; they are noise next to the app's own logs.
func (n *natsSlog) Noticef(string, ...any) {}

func (n *natsSlog) Warnf(format string, v ...any)  { n.l.Warn(fmt.Sprintf(format, v...)) }
func (n *natsSlog) Errorf(format string, v ...any) { n.l.Error(fmt.Sprintf(format, v...)) }
func (n *natsSlog) Debugf(format string, v ...any) { n.l.Debug(fmt.Sprintf(format, v...)) }

func (n *natsSlog) Fatalf(format string, v ...any) {
	n.l.Error("nats fatal: " + fmt.Sprintf(format, v...))
}

func (n *natsSlog) Tracef(format string, v ...any) {
	n.l.Debug("nats trace: " + fmt.Sprintf(format, v...))
}
