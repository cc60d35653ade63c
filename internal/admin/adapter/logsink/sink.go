// Package logsink persists error-level log entries as system logs.
package logsink

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"edwin/internal/admin/domain/model"
	"edwin/internal/admin/domain/repository"
	"edwin/internal/shared/logger"
)

const (
	defaultBuffer   = 1024
	defaultBatch    = 50
	defaultInterval = 2 * time.Second
	writeTimeout    = 5 * time.Second
)

// Sink implements logger.Sink. Write never blocks: entries are queued and
// dropped when the queue is full. Run drains the queue in batches.
type Sink struct {
	repo     repository.LogRepository
	queue    chan *model.SystemLog
	batch    int
	interval time.Duration
	dropped  atomic.Int64
	done     chan struct{}
}

// New creates a sink with a queue of buffer entries. Zero selects defaults.
func New(repo repository.LogRepository, buffer int) *Sink {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Sink{
		repo:     repo,
		queue:    make(chan *model.SystemLog, buffer),
		batch:    defaultBatch,
		interval: defaultInterval,
		done:     make(chan struct{}),
	}
}

// Write queues an entry. The component field becomes the source.
func (s *Sink) Write(e logger.SinkEntry) {
	entry := &model.SystemLog{
		Level:     e.Level,
		Message:   e.Message,
		Fields:    sanitize(e.Fields),
		CreatedAt: e.Time.UTC(),
	}
	if src, ok := e.Fields["component"].(string); ok {
		entry.Source = src
		delete(entry.Fields, "component")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	select {
	case s.queue <- entry:
	default:
		s.dropped.Add(1)
	}
}

// Dropped is the number of entries lost to a full queue.
func (s *Sink) Dropped() int64 { return s.dropped.Load() }

// Run writes queued entries until ctx is done, then flushes what is left.
func (s *Sink) Run(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	pending := make([]*model.SystemLog, 0, s.batch)
	for {
		select {
		case e := <-s.queue:
			pending = append(pending, e)
			if len(pending) >= s.batch {
				pending = s.flush(pending)
			}
		case <-ticker.C:
			pending = s.flush(pending)
		case <-ctx.Done():
			for {
				select {
				case e := <-s.queue:
					pending = append(pending, e)
				default:
					s.flush(pending)
					return
				}
			}
		}
	}
}

// Wait blocks until Run has flushed and returned.
func (s *Sink) Wait() {
	<-s.done
}

// flush writes with its own context so shutdown still persists the tail.
// Failures are not logged through the logger to avoid feeding the sink.
func (s *Sink) flush(pending []*model.SystemLog) []*model.SystemLog {
	if len(pending) == 0 {
		return pending
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := s.repo.InsertMany(ctx, pending); err != nil {
		s.dropped.Add(int64(len(pending)))
	}
	return pending[:0]
}

// sanitize copies fields, stringifying values BSON may not encode.
func sanitize(fields map[string]interface{}) map[string]interface{} {
	if len(fields) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		switch val := v.(type) {
		case string, bool, int, int32, int64, float64, time.Time, nil:
			out[k] = val
		case error:
			out[k] = val.Error()
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}
