package log

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"moul.io/zapfilter"
)

// thin wrapper around zap so the rest of the code does not import zap directly

type (
	Level = zapcore.Level
	Field = zap.Field
	// Option configures the logger construction.
	Option func(*builderConfig)
)

const (
	DebugLevel = zapcore.DebugLevel
	InfoLevel  = zapcore.InfoLevel
	WarnLevel  = zapcore.WarnLevel
	ErrorLevel = zapcore.ErrorLevel
	FatalLevel = zapcore.FatalLevel
)

var (
	String     = zap.String
	Int        = zap.Int
	Int32      = zap.Int32
	Uint32     = zap.Uint32
	Bool       = zap.Bool
	Time       = zap.Time
	Duration   = zap.Duration
	Any        = zap.Any
	ErrorField = zap.Error
)

func ParseLevel(text string) (Level, error) {
	return zapcore.ParseLevel(text)
}

type Logger struct {
	l     *zap.Logger
	level Level
}

func (l *Logger) Debug(msg string, fields ...Field) { l.l.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...Field)  { l.l.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.l.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...Field) { l.l.Error(msg, fields...) }
func (l *Logger) Fatal(msg string, fields ...Field) { l.l.Fatal(msg, fields...) }

func (l *Logger) Named(name string) *Logger {
	return &Logger{l: l.l.Named(name), level: l.level}
}

func (l *Logger) Level() Level { return l.level }

func (l *Logger) Sugar() *zap.SugaredLogger { return l.l.Sugar() }

func (l *Logger) Sync() error { return l.l.Sync() }

type builderConfig struct {
	filterRules string
	zapOpts     []zap.Option
}

func WithCaller(enabled bool) Option {
	return func(c *builderConfig) {
		c.zapOpts = append(c.zapOpts, zap.WithCaller(enabled))
	}
}

func AddCallerSkip(skip int) Option {
	return func(c *builderConfig) {
		c.zapOpts = append(c.zapOpts, zap.AddCallerSkip(skip))
	}
}

// WithFilters restricts output to namespaces matching the zapfilter
// rules, e.g. "debug:movement.* info:*".
func WithFilters(rules string) Option {
	return func(c *builderConfig) {
		c.filterRules = rules
	}
}

func build(enc zapcore.Encoder, writer io.Writer, level Level, opts []Option) *Logger {
	cfg := &builderConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(writer), level)
	if cfg.filterRules != "" {
		core = zapfilter.NewFilteringCore(core, zapfilter.MustParseRules(cfg.filterRules))
	}
	return &Logger{l: zap.New(core, cfg.zapOpts...), level: level}
}

// New creates a JSON logger writing to writer.
func New(writer io.Writer, level Level, opts ...Option) *Logger {
	if writer == nil {
		writer = os.Stderr
	}
	return build(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		writer, level, opts)
}

// DevLogger creates a console logger for local development.
func DevLogger(writer io.Writer, level Level, opts ...Option) *Logger {
	if writer == nil {
		writer = os.Stderr
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return build(zapcore.NewConsoleEncoder(encCfg), writer, level, opts)
}

var (
	std   = New(os.Stderr, InfoLevel)
	mu    sync.Mutex
	Debug = std.Debug
	Info  = std.Info
	Warn  = std.Warn
	Error = std.Error
	Fatal = std.Fatal
)

func Default() *Logger { return std }

// ResetDefault replaces the package level logger and the
// package level convenience functions.
func ResetDefault(l *Logger) {
	mu.Lock()
	defer mu.Unlock()
	std = l
	Debug = std.Debug
	Info = std.Info
	Warn = std.Warn
	Error = std.Error
	Fatal = std.Fatal
}
