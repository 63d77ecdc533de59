package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"merchant-notification-service/pkg/config"
)

type ctxKey struct{}

// RequestIDKey is the context key under which middleware stores the request id.
var RequestIDKey = ctxKey{}

// Logger wraps a logrus logger together with any rotating file it owns.
type Logger struct {
	*logrus.Logger
	file *lumberjack.Logger
}

var (
	mu     sync.RWMutex
	global = &Logger{Logger: logrus.StandardLogger()}
)

// NewLogger builds a Logger from the log section of cfg.
func NewLogger(cfg *config.Config) *Logger {
	l := logrus.New()
	lc := cfg.Log

	level, err := logrus.ParseLevel(lc.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if strings.EqualFold(lc.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	out := &Logger{Logger: l}
	var writers []io.Writer
	switch strings.ToLower(lc.Output) {
	case "file", "both":
		if lc.Filename != "" {
			out.file = &lumberjack.Logger{
				Filename:   lc.Filename,
				MaxSize:    lc.MaxSize,
				MaxAge:     lc.MaxAge,
				MaxBackups: lc.MaxBackups,
				Compress:   lc.Compress,
			}
			writers = append(writers, out.file)
		}
		if strings.EqualFold(lc.Output, "both") || out.file == nil {
			writers = append(writers, os.Stdout)
		}
	default:
		writers = append(writers, os.Stdout)
	}
	l.SetOutput(io.MultiWriter(writers...))
	return out
}

// Close flushes and closes the rotating file, if any.
func (l *Logger) Close() {
	if l == nil || l.file == nil {
		return
	}
	_ = l.file.Close()
}

// SetGlobalLogger replaces the process-wide logger.
func SetGlobalLogger(l *Logger) {
	if l == nil {
		return
	}
	mu.Lock()
	global = l
	mu.Unlock()
}

func current() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// WithContext returns an entry tagged with the request id carried by ctx.
func WithContext(ctx context.Context) *logrus.Entry {
	entry := logrus.NewEntry(current().Logger)
	if ctx == nil {
		return entry
	}
	if rid, ok := ctx.Value(RequestIDKey).(string); ok && rid != "" {
		entry = entry.WithField("request_id", rid)
	}
	return entry
}

func Debugf(format string, args ...interface{}) { current().Debugf(format, args...) }
func Infof(format string, args ...interface{})  { current().Infof(format, args...) }
func Warnf(format string, args ...interface{})  { current().Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { current().Errorf(format, args...) }

// Fatal logs msg and exits the process.
func Fatal(msg string) { current().Fatal(msg) }
