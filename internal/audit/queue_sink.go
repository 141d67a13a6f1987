package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// QueueAudit is the Redis list the worker pool drains into audit_events.
const QueueAudit = "jobs:audit"

// Event is the wire form of an audit notification on the queue.
type Event struct {
	Action   string `json:"action"`
	Details  string `json:"details"`
	Severity string `json:"severity"`
	At       string `json:"at"` // ISO 8601, UTC
}

// QueueSink enqueues events into Redis for asynchronous persistence.
// Enqueue failures are logged through the fallback sink and otherwise
// ignored — auditing never fails the operation that produced the event.
type QueueSink struct {
	rdb      *redis.Client
	fallback Sink
}

func NewQueueSink(rdb *redis.Client, fallback Sink) *QueueSink {
	if fallback == nil {
		fallback = NewZerologSink()
	}
	return &QueueSink{rdb: rdb, fallback: fallback}
}

func (s *QueueSink) Log(ctx context.Context, action, details string, severity Severity) {
	s.fallback.Log(ctx, action, details, severity)

	ev := Event{
		Action:   action,
		Details:  details,
		Severity: string(severity),
		At:       time.Now().UTC().Format(time.RFC3339Nano),
	}
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("action", action).Msg("audit: failed to marshal event")
		return
	}
	if err := s.rdb.LPush(ctx, QueueAudit, data).Err(); err != nil {
		log.Error().Err(err).Str("action", action).Msg("audit: failed to enqueue event")
	}
}
