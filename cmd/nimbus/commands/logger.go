package commands

import (
	"io"
	"os"

	"github.com/kaigouthro/nimbus/pkg/openstack"
	"github.com/rs/zerolog"
)

// zerologLogger adapts zerolog to openstack.Logger.
type zerologLogger struct {
	logger zerolog.Logger
}

// newLogger writes human-readable lines to w. Debug lines only appear when
// verbose is set.
func newLogger(w io.Writer, verbose bool) *zerologLogger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: !isTerminal(os.Stderr)}).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &zerologLogger{logger: logger}
}

func (l *zerologLogger) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug().Fields(fields).Msg(msg)
}

func (l *zerologLogger) Info(msg string, fields map[string]interface{}) {
	l.logger.Info().Fields(fields).Msg(msg)
}

func (l *zerologLogger) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn().Fields(fields).Msg(msg)
}

func (l *zerologLogger) Error(msg string, fields map[string]interface{}) {
	l.logger.Error().Fields(fields).Msg(msg)
}

var _ openstack.Logger = (*zerologLogger)(nil)
