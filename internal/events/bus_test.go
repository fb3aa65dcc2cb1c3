package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memStore struct {
	events []Event
	fail   bool
}

func (m *memStore) InsertEvent(ctx context.Context, topic, aggregateID string, payload []byte) (Event, error) {
	if m.fail {
		return Event{}, errors.New("insert failed")
	}
	ev := Event{
		ID:          "ev-1",
		Topic:       topic,
		AggregateID: aggregateID,
		Payload:     payload,
		OccurredAt:  time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	m.events = append(m.events, ev)
	return ev, nil
}

type recordingNotifier struct {
	seen []Event
	err  error
}

func (n *recordingNotifier) Notify(ctx context.Context, event Event) error {
	n.seen = append(n.seen, event)
	return n.err
}

func TestEmitPersistsAndNotifies(t *testing.T) {
	store := &memStore{}
	notifier := &recordingNotifier{}
	bus := &Bus{Store: store, Notifiers: []Notifier{notifier}}

	ev, err := bus.Emit(context.Background(), TopicOrderCreated, "order-1", map[string]any{"total": 130})
	require.NoError(t, err)
	require.Equal(t, TopicOrderCreated, ev.Topic)
	require.Len(t, store.events, 1)
	require.Len(t, notifier.seen, 1)
	require.JSONEq(t, `{"total":130}`, string(notifier.seen[0].Payload))
}

func TestEmitValidation(t *testing.T) {
	bus := &Bus{Store: &memStore{}}
	ctx := context.Background()

	_, err := bus.Emit(ctx, "  ", "order-1", nil)
	require.Error(t, err)

	_, err = bus.Emit(ctx, TopicOrderCreated, "", nil)
	require.Error(t, err)

	_, err = bus.Emit(ctx, TopicOrderCreated, "order-1", json.RawMessage(`{broken`))
	require.Error(t, err)
}

func TestEmitNotifierFailureKeepsEvent(t *testing.T) {
	store := &memStore{}
	notifier := &recordingNotifier{err: errors.New("kitchen display offline")}
	bus := &Bus{Store: store, Notifiers: []Notifier{notifier}}

	ev, err := bus.Emit(context.Background(), TopicExpenseRecorded, "exp-1", nil)
	require.Error(t, err)
	require.Equal(t, "exp-1", ev.AggregateID)
	require.Len(t, store.events, 1)
}

func TestEmitNilPayloadDefaultsToEmptyObject(t *testing.T) {
	store := &memStore{}
	bus := &Bus{Store: store}

	ev, err := bus.Emit(context.Background(), TopicMenuUpdated, "menu", nil)
	require.NoError(t, err)
	require.Equal(t, "{}", string(ev.Payload))
}
