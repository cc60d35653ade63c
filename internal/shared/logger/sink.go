package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// SinkEntry is an error-level log line forwarded to a Sink.
type SinkEntry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
	Time    time.Time
}

// Sink receives error-level entries. Implementations must not block.
type Sink interface {
	Write(entry SinkEntry)
}

// sinkHook adapts a Sink to logrus.Hook.
type sinkHook struct {
	sink Sink
}

func (h *sinkHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel}
}

func (h *sinkHook) Fire(e *logrus.Entry) error {
	fields := make(map[string]interface{}, len(e.Data))
	for k, v := range e.Data {
		if err, ok := v.(error); ok {
			fields[k] = err.Error()
			continue
		}
		fields[k] = v
	}
	h.sink.Write(SinkEntry{
		Level:   e.Level.String(),
		Message: e.Message,
		Fields:  fields,
		Time:    e.Time,
	})
	return nil
}
