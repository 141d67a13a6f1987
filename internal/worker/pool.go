package worker

import (
	"context"
	"encoding/json"
	"time"

	"pdvcore/internal/audit"
	"pdvcore/internal/model"
	"pdvcore/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const maxPersistAttempts = 3

// AuditPersister drains the audit queue into the audit_events table.
// Events that cannot be persisted after maxPersistAttempts go to the DLQ.
type AuditPersister struct {
	rdb  *redis.Client
	repo repository.AuditRepository
}

func NewAuditPersister(rdb *redis.Client, repo repository.AuditRepository) *AuditPersister {
	return &AuditPersister{rdb: rdb, repo: repo}
}

// Start launches numWorkers goroutines consuming the audit queue.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func (p *AuditPersister) Start(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go p.run(ctx, i)
	}
	log.Info().Msgf("audit worker pool started with %d workers", numWorkers)
}

func (p *AuditPersister) run(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("audit worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, audit.QueueAudit).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			p.process(ctx, result[1])
		}
	}
}

func (p *AuditPersister) process(ctx context.Context, raw string) {
	var ev audit.Event
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		log.Error().Err(err).Msg("audit worker: failed to unmarshal event")
		SendToDLQ(ctx, p.rdb, audit.QueueAudit, json.RawMessage(raw), "unmarshal: "+err.Error(), 1)
		return
	}

	createdAt, err := time.Parse(time.RFC3339Nano, ev.At)
	if err != nil {
		createdAt = time.Now().UTC()
	}
	record := &model.AuditEvent{
		Action:    ev.Action,
		Details:   ev.Details,
		Severity:  ev.Severity,
		CreatedAt: createdAt,
	}

	for attempt := 1; attempt <= maxPersistAttempts; attempt++ {
		if err = p.repo.Create(ctx, record); err == nil {
			return
		}
		time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
	}
	log.Error().Err(err).Str("action", ev.Action).Msg("audit worker: giving up on event")
	SendToDLQ(ctx, p.rdb, audit.QueueAudit, json.RawMessage(raw), err.Error(), maxPersistAttempts)
}
