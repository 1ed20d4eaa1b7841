package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Config controls the output of a Logger.
type Config struct {
	// Level is the minimum level logged: debug, info, warn or error.
	// Default: "info".
	Level string
	// Format selects "json" or "console" output. Default: "console".
	Format string
	// Output selects "stdout" or "stderr". Default: "stderr".
	Output string
	// NoColor disables colorized console output.
	NoColor bool
	// Timestamp adds a timestamp field to every entry. Default behavior is
	// set by ApplyDefaults.
	Timestamp bool
}

// ApplyDefaults fills zero fields with the defaults above and enables
// timestamps.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "console"
	}
	if c.Output == "" {
		c.Output = "stderr"
	}
	c.Timestamp = true
}

// Logger adapts zerolog to the genstage.Logger interface. Arguments follow
// the slog convention of alternating keys and values.
type Logger struct {
	zl zerolog.Logger
}

// New creates a Logger from cfg, tagged with a component field.
func New(cfg Config, component string) *Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	out := outputWriter(cfg.Output)
	if strings.ToLower(cfg.Format) == "console" {
		out = zerolog.ConsoleWriter{Out: out, NoColor: cfg.NoColor}
	}

	zl := zerolog.New(out).Level(level)
	zc := zl.With()
	if cfg.Timestamp {
		zc = zc.Timestamp()
	}
	if component != "" {
		zc = zc.Str("component", component)
	}
	return &Logger{zl: zc.Logger()}
}

// NewDefault creates a console Logger at info level writing to stderr.
func NewDefault(component string) *Logger {
	var cfg Config
	cfg.ApplyDefaults()
	return New(cfg, component)
}

// WithComponent returns a copy of the logger tagged with a component field.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{zl: l.zl.With().Str("component", name).Logger()}
}

// Debug logs a message at debug level.
func (l *Logger) Debug(msg string, args ...any) {
	l.log(l.zl.Debug(), msg, args)
}

// Info logs a message at info level.
func (l *Logger) Info(msg string, args ...any) {
	l.log(l.zl.Info(), msg, args)
}

// Warn logs a message at warning level.
func (l *Logger) Warn(msg string, args ...any) {
	l.log(l.zl.Warn(), msg, args)
}

// Error logs a message at error level.
func (l *Logger) Error(msg string, args ...any) {
	l.log(l.zl.Error(), msg, args)
}

func (l *Logger) log(e *zerolog.Event, msg string, args []any) {
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", args[i])
		}
		e = e.Interface(key, args[i+1])
	}
	if len(args)%2 != 0 {
		e = e.Interface("arg", args[len(args)-1])
	}
	e.Msg(msg)
}

func outputWriter(output string) io.Writer {
	switch strings.ToLower(output) {
	case "stdout":
		return os.Stdout
	default:
		return os.Stderr
	}
}
