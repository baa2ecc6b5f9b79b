package outbox

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/localdrop-backend/pkg/db/models"
	"github.com/angelmondragon/localdrop-backend/pkg/logger"
	"github.com/angelmondragon/localdrop-backend/pkg/metrics"
)

// Relay outcomes, also used as metric labels.
const (
	OutcomePublished = "published"
	OutcomeRetried   = "retried"
	OutcomeParked    = "parked"
)

// Sink delivers one encoded event to a topic.
type Sink interface {
	Publish(ctx context.Context, topic string, data []byte, attrs map[string]string) (string, error)
}

// TxRunner opens the transaction a batch is claimed and settled in.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// RelayConfig tunes the polling loop. Zero values take defaults.
type RelayConfig struct {
	Topic        string
	BatchSize    int
	MaxAttempts  int
	PollInterval time.Duration
	MaxBackoff   time.Duration
}

func (c RelayConfig) withDefaults() RelayConfig {
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 10
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 500 * time.Millisecond
	}
	if c.MaxBackoff < c.PollInterval {
		c.MaxBackoff = 20 * c.PollInterval
	}
	return c
}

// BatchStats summarises one pass over the outbox.
type BatchStats struct {
	Claimed   int
	Published int
	Retried   int
	Parked    int
}

// Relay moves committed outbox rows onto the message bus. Delivery is at
// least once: a crash between publish and commit republishes the batch, so
// consumers dedupe on the event_id attribute.
type Relay struct {
	cfg     RelayConfig
	repo    *Repository
	tx      TxRunner
	sink    Sink
	logg    *logger.Logger
	metrics *metrics.OutboxMetrics
	now     func() time.Time
}

func NewRelay(cfg RelayConfig, repo *Repository, tx TxRunner, sink Sink, logg *logger.Logger, m *metrics.OutboxMetrics) (*Relay, error) {
	switch {
	case cfg.Topic == "":
		return nil, errors.New("outbox relay: topic is required")
	case repo == nil || tx == nil:
		return nil, errors.New("outbox relay: repository and transaction runner are required")
	case sink == nil:
		return nil, errors.New("outbox relay: sink is required")
	case logg == nil:
		return nil, errors.New("outbox relay: logger is required")
	}
	return &Relay{cfg: cfg.withDefaults(), repo: repo, tx: tx, sink: sink, logg: logg, metrics: m, now: time.Now}, nil
}

// Run drains batches until ctx ends. Full batches are followed immediately by
// the next one; empty ones wait a poll interval; failures back off.
func (r *Relay) Run(ctx context.Context) error {
	wait := r.cfg.PollInterval
	for {
		stats, err := r.Drain(ctx)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.logg.Error(ctx, "outbox.batch_failed", err)
			wait = min(2*wait, r.cfg.MaxBackoff)
		case stats.Claimed == r.cfg.BatchSize:
			wait = r.cfg.PollInterval
			continue
		default:
			wait = r.cfg.PollInterval
		}

		timer := time.NewTimer(wait + jitter(wait))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Drain claims one batch and settles every row in it.
func (r *Relay) Drain(ctx context.Context) (BatchStats, error) {
	var stats BatchStats
	err := r.tx.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := r.repo.Claim(tx, r.cfg.BatchSize, r.cfg.MaxAttempts)
		if err != nil {
			return fmt.Errorf("claim: %w", err)
		}
		stats = BatchStats{Claimed: len(rows)}
		for i := range rows {
			outcome, err := r.settle(ctx, tx, &rows[i])
			if err != nil {
				return err
			}
			switch outcome {
			case OutcomePublished:
				stats.Published++
			case OutcomeRetried:
				stats.Retried++
			case OutcomeParked:
				stats.Parked++
			}
			r.metrics.Inc(outcome)
		}
		return nil
	})
	return stats, err
}

func (r *Relay) settle(ctx context.Context, tx *gorm.DB, row *models.OutboxEvent) (string, error) {
	ctx = r.logg.WithFields(ctx, map[string]any{
		"outbox_id":    row.ID.String(),
		"event_type":   string(row.EventType),
		"aggregate_id": row.AggregateID.String(),
		"attempt":      row.AttemptCount + 1,
	})

	env, err := DecodeEnvelope(row.Payload)
	if err != nil {
		return OutcomeParked, r.park(ctx, tx, row, err)
	}

	_, pubErr := r.sink.Publish(ctx, r.cfg.Topic, row.Payload, attributesFor(row, env))
	if pubErr == nil {
		now := r.now()
		if err := r.repo.MarkPublished(tx, row.ID, now); err != nil {
			return "", fmt.Errorf("mark %s published: %w", row.ID, err)
		}
		r.metrics.ObserveLag(now.Sub(row.CreatedAt))
		r.logg.Debug(ctx, "outbox.published")
		return OutcomePublished, nil
	}

	if row.AttemptCount+1 >= r.cfg.MaxAttempts {
		return OutcomeParked, r.park(ctx, tx, row, fmt.Errorf("gave up after %d attempts: %w", r.cfg.MaxAttempts, pubErr))
	}
	r.logg.Warn(r.logg.WithField(ctx, "error", pubErr.Error()), "outbox.publish_retry")
	if err := r.repo.MarkFailed(tx, row.ID, pubErr); err != nil {
		return "", fmt.Errorf("mark %s failed: %w", row.ID, err)
	}
	return OutcomeRetried, nil
}

func (r *Relay) park(ctx context.Context, tx *gorm.DB, row *models.OutboxEvent, cause error) error {
	r.logg.Warn(r.logg.WithField(ctx, "error", cause.Error()), "outbox.parked")
	if err := r.repo.Park(tx, row.ID, cause, r.cfg.MaxAttempts); err != nil {
		return fmt.Errorf("park %s: %w", row.ID, err)
	}
	return nil
}

func attributesFor(row *models.OutboxEvent, env PayloadEnvelope) map[string]string {
	return map[string]string{
		"event_id":       env.EventID,
		"event_type":     string(row.EventType),
		"aggregate_type": string(row.AggregateType),
		"aggregate_id":   row.AggregateID.String(),
		"occurred_at":    env.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
}

// jitter spreads up to a quarter of d so idle relays do not poll in lockstep.
func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return rand.N(d/4 + 1)
}
