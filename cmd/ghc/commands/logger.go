package commands

import (
	"io"
	"os"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/fivetwenty-io/ghclient/pkg/gh"
	"github.com/spf13/viper"
)

// CLILogger adapts a charmbracelet logger to gh.Logger.
type CLILogger struct {
	logger *log.Logger
}

// NewCLILogger creates a logger writing to w at the given level name
// ("debug", "info", "warn", "error"). Unknown names fall back to warn.
func NewCLILogger(w io.Writer, level string) *CLILogger {
	parsed, err := log.ParseLevel(level)
	if err != nil {
		parsed = log.WarnLevel
	}

	return &CLILogger{
		logger: log.NewWithOptions(w, log.Options{
			Prefix: "ghc",
			Level:  parsed,
		}),
	}
}

func (l *CLILogger) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug(msg, keyvals(fields)...)
}

func (l *CLILogger) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, keyvals(fields)...)
}

func (l *CLILogger) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, keyvals(fields)...)
}

func (l *CLILogger) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, keyvals(fields)...)
}

// keyvals flattens fields in key order so log lines are stable.
func keyvals(fields map[string]interface{}) []interface{} {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	out := make([]interface{}, 0, len(fields)*2)
	for _, key := range keys {
		out = append(out, key, fields[key])
	}

	return out
}

// newLogger builds the CLI logger from --verbose and log_level.
func newLogger() gh.Logger {
	level := viper.GetString("log_level")
	if viper.GetBool("verbose") {
		level = "debug"
	}

	return NewCLILogger(os.Stderr, level)
}
