// Package logger is the client's structured logger: a small field-based API
// on top of zap so callers never import zap directly.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is a log severity, ordered from Debug to Fatal.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levels = [...]struct {
	name string
	zap  zapcore.Level
}{
	LevelDebug: {"DEBUG", zapcore.DebugLevel},
	LevelInfo:  {"INFO", zapcore.InfoLevel},
	LevelWarn:  {"WARN", zapcore.WarnLevel},
	LevelError: {"ERROR", zapcore.ErrorLevel},
	LevelFatal: {"FATAL", zapcore.FatalLevel},
}

func (l Level) valid() bool { return l >= LevelDebug && l <= LevelFatal }

func (l Level) String() string {
	if !l.valid() {
		return "UNKNOWN"
	}
	return levels[l].name
}

func (l Level) zapLevel() zapcore.Level {
	if !l.valid() {
		return zapcore.InfoLevel
	}
	return levels[l].zap
}

// ParseLevel maps a level name (any case, WARNING allowed) to a Level.
// Unknown names give LevelInfo.
func ParseLevel(s string) Level {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "WARNING" {
		return LevelWarn
	}
	for l, lv := range levels {
		if lv.name == name {
			return Level(l)
		}
	}
	return LevelInfo
}

// Field is one key/value pair attached to a log line.
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field  { return Field{Key: key, Value: value} }
func Int(key string, value int) Field { return Field{Key: key, Value: value} }
func Any(key string, value any) Field { return Field{Key: key, Value: value} }

// Err records err under "error"; a nil err logs null.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error"}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

// Format selects the encoder used for log lines.
type Format string

const (
	FormatJSON    Format = "json"
	FormatConsole Format = "console"
)

// Logger writes structured lines through zap. The zero value is not usable;
// build one with New or Nop.
type Logger struct {
	z     *zap.Logger
	level Level
}

type Options struct {
	Output    io.Writer
	Level     Level
	Format    Format
	AddCaller bool
}

// DefaultOptions logs JSON at info level to stderr, leaving stdout to
// command output.
func DefaultOptions() Options {
	return Options{
		Output:    os.Stderr,
		Level:     LevelInfo,
		Format:    FormatJSON,
		AddCaller: true,
	}
}

// New builds a Logger. A nil Output means stderr.
func New(opts Options) *Logger {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.MessageKey = "message"
	encCfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var enc zapcore.Encoder
	if opts.Format == FormatConsole {
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(opts.Output), opts.Level.zapLevel())

	zopts := []zap.Option{}
	if opts.AddCaller {
		zopts = append(zopts, zap.AddCaller(), zap.AddCallerSkip(1))
	}

	return &Logger{z: zap.New(core, zopts...), level: opts.Level}
}

// Nop returns a logger that discards everything. Used in tests.
func Nop() *Logger {
	return &Logger{z: zap.NewNop(), level: LevelFatal}
}

// With returns a child logger that adds fields to every line.
func (l *Logger) With(fields ...Field) *Logger {
	return &Logger{z: l.z.With(toZap(fields)...), level: l.level}
}

// Level returns the minimum level of the logger.
func (l *Logger) Level() Level {
	return l.level
}

func toZap(fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}

func (l *Logger) Debug(msg string, fields ...Field) {
	l.z.Debug(msg, toZap(fields)...)
}

func (l *Logger) Info(msg string, fields ...Field) {
	l.z.Info(msg, toZap(fields)...)
}

func (l *Logger) Warn(msg string, fields ...Field) {
	l.z.Warn(msg, toZap(fields)...)
}

func (l *Logger) Error(msg string, fields ...Field) {
	l.z.Error(msg, toZap(fields)...)
}

// Sync flushes buffered log entries.
func (l *Logger) Sync() error {
	return l.z.Sync()
}

// RequestIDKey carries the X-Request-ID sent with a backend call.
const RequestIDKey = "request_id"

// WithRequestID tags every line with the backend request ID.
func (l *Logger) WithRequestID(requestID string) *Logger {
	return l.With(String(RequestIDKey, requestID))
}

// Field helpers for the names used across the client.
func UserID(id string) Field         { return String("user_id", id) }
func Role(role string) Field         { return String("user_role", role) }
func ClassID(id string) Field        { return String("class_id", id) }
func Endpoint(path string) Field     { return String("endpoint", path) }
func Status(code int) Field          { return Int("status", code) }
func Component(name string) Field    { return String("component", name) }
func Latency(d time.Duration) Field  { return Duration("latency", d) }
func Attempt(n int) Field            { return Int("attempt", n) }
func PointsAwarded(points int) Field { return Int("points_awarded", points) }
