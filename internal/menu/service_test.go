package menu

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/yichen-lab/congee-pos/internal/pricing"
)

type fakeStore struct {
	categories []Category
	products   []Product
	modifiers  []pricing.Modifier

	listCategoryCalls int
	reorderedIDs      []string
}

func (f *fakeStore) ListCategories(ctx context.Context) ([]Category, error) {
	f.listCategoryCalls++
	return f.categories, nil
}

func (f *fakeStore) CreateCategory(ctx context.Context, c Category) error {
	f.categories = append(f.categories, c)
	return nil
}

func (f *fakeStore) UpdateCategory(ctx context.Context, c Category) error { return nil }
func (f *fakeStore) DeleteCategory(ctx context.Context, id string) error  { return nil }

func (f *fakeStore) ReorderCategories(ctx context.Context, ids []string) error {
	f.reorderedIDs = ids
	return nil
}

func (f *fakeStore) ListProducts(ctx context.Context) ([]Product, error) { return f.products, nil }

func (f *fakeStore) GetProduct(ctx context.Context, id string) (Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (f *fakeStore) CreateProduct(ctx context.Context, p Product) error {
	f.products = append(f.products, p)
	return nil
}

func (f *fakeStore) UpdateProduct(ctx context.Context, p Product) error { return nil }
func (f *fakeStore) DeleteProduct(ctx context.Context, id string) error { return nil }

func (f *fakeStore) ListModifiers(ctx context.Context) ([]pricing.Modifier, error) {
	return f.modifiers, nil
}

func (f *fakeStore) CreateModifier(ctx context.Context, m pricing.Modifier) error {
	f.modifiers = append(f.modifiers, m)
	return nil
}

func (f *fakeStore) UpdateModifier(ctx context.Context, m pricing.Modifier) error { return nil }
func (f *fakeStore) DeleteModifier(ctx context.Context, id string) error          { return nil }

func newTestService(t *testing.T, store Store) (*Service, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	svc, err := NewService(ServiceConfig{Store: store, Cache: NewCache(client, time.Minute)})
	require.NoError(t, err)
	return svc, client
}

func TestMenuServedFromCache(t *testing.T) {
	store := &fakeStore{
		categories: []Category{{ID: "congee", Name: "粥品", SortOrder: 1}},
		products:   []Product{{ID: "p1", CategoryID: "congee", Name: "皮蛋瘦肉粥", Price: 90}},
		modifiers:  []pricing.Modifier{{ID: "m1", Name: "加蛋", Price: 15, Category: pricing.CategoryAddon}},
	}
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	first, err := svc.Menu(ctx)
	require.NoError(t, err)
	require.Len(t, first.Products, 1)

	second, err := svc.Menu(ctx)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, store.listCategoryCalls)
}

func TestMutationInvalidatesCache(t *testing.T) {
	store := &fakeStore{categories: []Category{{ID: "congee", Name: "粥品"}}}
	svc, client := newTestService(t, store)
	ctx := context.Background()

	_, err := svc.Menu(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), client.Exists(ctx, menuCacheKey).Val())

	_, err = svc.CreateCategory(ctx, Category{Name: "飲料", SortOrder: 2})
	require.NoError(t, err)
	require.Equal(t, int64(0), client.Exists(ctx, menuCacheKey).Val())

	payload, err := svc.Menu(ctx)
	require.NoError(t, err)
	require.Len(t, payload.Categories, 2)
}

func TestCreateProductAssignsID(t *testing.T) {
	svc, _ := newTestService(t, &fakeStore{})
	created, err := svc.CreateProduct(context.Background(), Product{CategoryID: "congee", Name: "海鮮粥", Price: 120})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
}

func TestCreateProductValidation(t *testing.T) {
	svc, _ := newTestService(t, &fakeStore{})
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, Product{CategoryID: "congee", Price: 90})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateProduct(ctx, Product{Name: "海鮮粥", Price: 90})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateProduct(ctx, Product{CategoryID: "congee", Name: "海鮮粥", Price: -1})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateModifierValidation(t *testing.T) {
	svc, _ := newTestService(t, &fakeStore{})
	_, err := svc.CreateModifier(context.Background(), pricing.Modifier{Name: "加蛋", Price: 15, Category: "topping"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestReorderCategories(t *testing.T) {
	store := &fakeStore{}
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	require.NoError(t, svc.ReorderCategories(ctx, []string{"b", "a", "c"}))
	require.Equal(t, []string{"b", "a", "c"}, store.reorderedIDs)

	require.ErrorIs(t, svc.ReorderCategories(ctx, nil), ErrInvalidInput)
	require.ErrorIs(t, svc.ReorderCategories(ctx, []string{"a", "a"}), ErrInvalidInput)
}

func TestModifierCatalog(t *testing.T) {
	store := &fakeStore{modifiers: []pricing.Modifier{
		{ID: "egg", Name: "加蛋", Price: 15, Category: pricing.CategoryAddon},
	}}
	svc, _ := newTestService(t, store)

	cat, err := svc.ModifierCatalog(context.Background())
	require.NoError(t, err)
	require.Equal(t, pricing.Money(15), cat["egg"].Price)
}

func TestHandlerValidationErrors(t *testing.T) {
	svc, _ := newTestService(t, &fakeStore{})
	h := NewHandler(HandlerConfig{Service: svc})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/menu/products", strings.NewReader(`{"price":90}`))
	rec := httptest.NewRecorder()
	h.CreateProduct(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/menu/products", strings.NewReader(`not-json`))
	rec = httptest.NewRecorder()
	h.CreateProduct(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
