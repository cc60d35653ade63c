package logger

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger implements Logger on top of zap's sugared logger.
type ZapLogger struct {
	sugar  *zap.SugaredLogger
	fields map[string]interface{}
	sinks  *sinkSet
}

type sinkSet struct {
	mu    sync.RWMutex
	sinks []Sink
}

func (s *sinkSet) fire(msg string, level zapcore.Level, fields map[string]interface{}) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sink := range s.sinks {
		sink.Write(SinkEntry{Level: level.String(), Message: msg, Fields: fields, Time: time.Now()})
	}
}

// NewZapLogger builds a zap-backed Logger. format is "json" or "text".
func NewZapLogger(level, format string) Logger {
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			lvl = zapcore.InfoLevel
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.MessageKey = "message"
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(timestampFormat)

	var encoder zapcore.Encoder
	if format == logFormatJSON {
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), zap.NewAtomicLevelAt(lvl))
	return &ZapLogger{
		sugar:  zap.New(core).Sugar(),
		fields: map[string]interface{}{},
		sinks:  &sinkSet{},
	}
}

func (l *ZapLogger) Debug(args ...interface{}) { l.sugar.Debug(args...) }
func (l *ZapLogger) Info(args ...interface{})  { l.sugar.Info(args...) }
func (l *ZapLogger) Warn(args ...interface{})  { l.sugar.Warn(args...) }

func (l *ZapLogger) Error(args ...interface{}) {
	l.sugar.Error(args...)
	l.sinks.fire(fmt.Sprint(args...), zapcore.ErrorLevel, l.fields)
}

func (l *ZapLogger) Fatal(args ...interface{}) {
	l.sinks.fire(fmt.Sprint(args...), zapcore.FatalLevel, l.fields)
	l.sugar.Fatal(args...)
}

func (l *ZapLogger) Debugf(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *ZapLogger) Infof(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *ZapLogger) Warnf(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }

func (l *ZapLogger) Errorf(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
	l.sinks.fire(fmt.Sprintf(format, args...), zapcore.ErrorLevel, l.fields)
}

func (l *ZapLogger) Fatalf(format string, args ...interface{}) {
	l.sinks.fire(fmt.Sprintf(format, args...), zapcore.FatalLevel, l.fields)
	l.sugar.Fatalf(format, args...)
}

// WithFields adds structured fields to the logger
func (l *ZapLogger) WithFields(fields map[string]interface{}) Logger {
	if len(fields) == 0 {
		return l
	}
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	kv := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		merged[k] = v
		kv = append(kv, k, v)
	}
	return &ZapLogger{sugar: l.sugar.With(kv...), fields: merged, sinks: l.sinks}
}

// WithContext adds request-scoped values to the logger
func (l *ZapLogger) WithContext(ctx context.Context) Logger {
	return l.WithFields(contextFields(ctx))
}

// WithComponent adds component name to the logger
func (l *ZapLogger) WithComponent(component string) Logger {
	return l.WithFields(map[string]interface{}{"component": component})
}

// AttachSink forwards error-level entries to sink.
func (l *ZapLogger) AttachSink(sink Sink) {
	l.sinks.mu.Lock()
	l.sinks.sinks = append(l.sinks.sinks, sink)
	l.sinks.mu.Unlock()
}
