package expense

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yichen-lab/congee-pos/internal/events"
	"github.com/yichen-lab/congee-pos/internal/report"
)

type memStore struct {
	byID map[string]Expense
}

func newMemStore() *memStore {
	return &memStore{byID: map[string]Expense{}}
}

func (m *memStore) CreateExpense(ctx context.Context, e Expense) error {
	m.byID[e.ID] = e
	return nil
}

func (m *memStore) GetExpense(ctx context.Context, id string) (Expense, error) {
	e, ok := m.byID[id]
	if !ok {
		return Expense{}, ErrNotFound
	}
	return e, nil
}

func (m *memStore) UpdateExpense(ctx context.Context, e Expense) error {
	if _, ok := m.byID[e.ID]; !ok {
		return ErrNotFound
	}
	m.byID[e.ID] = e
	return nil
}

func (m *memStore) DeleteExpense(ctx context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memStore) ListExpenses(ctx context.Context, params ListParams) ([]Expense, int64, error) {
	var rows []Expense
	for _, e := range m.byID {
		rows = append(rows, e)
	}
	return rows, int64(len(rows)), nil
}

type memEvents struct{ topics []string }

func (m *memEvents) InsertEvent(ctx context.Context, topic, aggregateID string, payload []byte) (events.Event, error) {
	m.topics = append(m.topics, topic)
	return events.Event{ID: "ev", Topic: topic, AggregateID: aggregateID, Payload: payload}, nil
}

func newTestService() (*Service, *memStore, *memEvents) {
	store := newMemStore()
	evStore := &memEvents{}
	svc := &Service{
		Store:  store,
		Events: &events.Bus{Store: evStore},
		Now:    func() time.Time { return time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC) },
	}
	return svc, store, evStore
}

func TestCreateDefaultsTimestampAndEmits(t *testing.T) {
	svc, store, evStore := newTestService()

	created, err := svc.Create(context.Background(), Expense{Kind: report.ExpenseCOGS, Name: "米", Amount: 600})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC), created.RecordedAt)
	require.Contains(t, store.byID, created.ID)
	require.Equal(t, []string{events.TopicExpenseRecorded}, evStore.topics)
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	cases := []Expense{
		{Kind: "misc", Name: "x", Amount: 10},
		{Kind: report.ExpenseOpEx, Amount: 10},
		{Kind: report.ExpenseOpEx, Name: "房租", Amount: 0},
		{Kind: report.ExpenseCOGS, Name: "米", Amount: -5},
	}
	for _, c := range cases {
		_, err := svc.Create(ctx, c)
		require.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestUpdateKeepsTimestampWhenOmitted(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, Expense{Kind: report.ExpenseOpEx, Name: "房租", Amount: 20000})
	require.NoError(t, err)

	err = svc.Update(ctx, Expense{ID: created.ID, Kind: report.ExpenseOpEx, Name: "房租", Amount: 21000})
	require.NoError(t, err)
	require.Equal(t, created.RecordedAt, store.byID[created.ID].RecordedAt)
	require.Equal(t, int64(21000), store.byID[created.ID].Amount)
}

func TestDeleteEmitsEvent(t *testing.T) {
	svc, _, evStore := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, Expense{Kind: report.ExpenseCOGS, Name: "蛋", Amount: 120})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	require.Equal(t, []string{events.TopicExpenseRecorded, events.TopicExpenseDeleted}, evStore.topics)

	require.ErrorIs(t, svc.Delete(ctx, created.ID), ErrNotFound)
}

func TestListRejectsUnknownKind(t *testing.T) {
	svc, _, _ := newTestService()
	_, _, err := svc.List(context.Background(), ListParams{Kind: "capex"})
	require.ErrorIs(t, err, ErrInvalidInput)
}
