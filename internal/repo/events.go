package repo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yichen-lab/congee-pos/internal/events"
)

// EventsRepo implements events.Store on Postgres.
type EventsRepo struct {
	Pool *pgxpool.Pool
}

// InsertEvent appends a domain event and returns it with the assigned id
// and timestamp.
func (r EventsRepo) InsertEvent(ctx context.Context, topic, aggregateID string, payload []byte) (events.Event, error) {
	var (
		id         int64
		occurredAt time.Time
	)
	err := r.Pool.QueryRow(ctx, `
		INSERT INTO domain_events (topic, aggregate_id, payload)
		VALUES ($1, $2, $3)
		RETURNING id, occurred_at`,
		topic, aggregateID, payload).Scan(&id, &occurredAt)
	if err != nil {
		return events.Event{}, fmt.Errorf("insert domain event: %w", err)
	}
	return events.Event{
		ID:          strconv.FormatInt(id, 10),
		Topic:       topic,
		AggregateID: aggregateID,
		Payload:     payload,
		OccurredAt:  occurredAt,
	}, nil
}
