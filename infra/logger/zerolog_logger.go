package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ZerologLogger adapts rs/zerolog to the pipeline's Logger interface. Logs go
// to stderr so command output (result tables, per-run costs) stays alone on
// stdout.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger returns a logger tagged with the given component. APP_ENV=dev
// selects human-readable console output; anything else emits JSON lines.
func NewZerologLogger(component string) Logger {
	z := zerolog.New(logWriter()).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

func logWriter() zerolog.LevelWriter {
	if strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		return zerolog.MultiLevelWriter(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	return zerolog.MultiLevelWriter(os.Stderr)
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

// Debugw attaches structured fields, used where a printf line would be
// unreadable (simulator argument vectors and the like).
func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	l.log.Debug().Fields(fields).Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
