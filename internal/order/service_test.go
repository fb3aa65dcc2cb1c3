package order

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yichen-lab/congee-pos/internal/events"
)

type memStore struct {
	byID map[string]Order
}

func (m *memStore) CreateOrder(ctx context.Context, o Order) error {
	m.byID[o.ID] = o
	return nil
}

func (m *memStore) GetOrder(ctx context.Context, id string) (Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return o, nil
}

func (m *memStore) ListOrders(ctx context.Context, params ListParams) ([]Order, int64, error) {
	var out []Order
	for _, o := range m.byID {
		out = append(out, o)
	}
	return out, int64(len(out)), nil
}

func (m *memStore) VoidOrder(ctx context.Context, id string) error {
	o, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = StatusVoided
	m.byID[id] = o
	return nil
}

type memEvents struct{ topics []string }

func (m *memEvents) InsertEvent(ctx context.Context, topic, aggregateID string, payload []byte) (events.Event, error) {
	m.topics = append(m.topics, topic)
	return events.Event{Topic: topic, AggregateID: aggregateID, Payload: payload}, nil
}

func TestVoidMarksOrderAndEmits(t *testing.T) {
	store := &memStore{byID: map[string]Order{
		"o1": {ID: "o1", Total: 130, Status: StatusCompleted, CreatedAt: time.Now()},
	}}
	evStore := &memEvents{}
	svc := &Service{Store: store, Events: &events.Bus{Store: evStore}}
	ctx := context.Background()

	require.NoError(t, svc.Void(ctx, "o1"))
	require.Equal(t, StatusVoided, store.byID["o1"].Status)
	require.Equal(t, []string{events.TopicOrderVoided}, evStore.topics)

	// Voiding again is a no-op and emits nothing new.
	require.NoError(t, svc.Void(ctx, "o1"))
	require.Len(t, evStore.topics, 1)

	require.ErrorIs(t, svc.Void(ctx, "missing"), ErrNotFound)
}

func TestListClampsPagination(t *testing.T) {
	store := &memStore{byID: map[string]Order{}}
	svc := &Service{Store: store}
	ctx := context.Background()

	_, _, err := svc.List(ctx, ListParams{Limit: -1, Offset: -5})
	require.NoError(t, err)

	from := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	to := from.Add(-time.Hour)
	_, _, err = svc.List(ctx, ListParams{From: &from, To: &to})
	require.Error(t, err)
}

func TestValidPaymentMethod(t *testing.T) {
	require.True(t, ValidPaymentMethod(PaymentCash))
	require.True(t, ValidPaymentMethod(PaymentEWallet))
	require.False(t, ValidPaymentMethod("credit"))
	require.False(t, ValidPaymentMethod(""))
}
