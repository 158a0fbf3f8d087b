package commands

import (
	"io"
	"os"
	"time"

	"github.com/fivetwenty-io/tevo/pkg/tevo"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// zerologLogger adapts zerolog to tevo.Logger.
type zerologLogger struct {
	logger zerolog.Logger
}

// NewLogger returns a console logger writing to w. Debug messages are dropped
// unless verbose is set.
func NewLogger(w io.Writer, verbose bool) tevo.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: !isTTY(w)}).
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

func isTTY(w io.Writer) bool {
	file, ok := w.(*os.File)

	return ok && term.IsTerminal(int(file.Fd()))
}
