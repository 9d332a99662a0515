package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/AadiSharma49/Street-Food-Solution/pkg/db/models"
	"github.com/AadiSharma49/Street-Food-Solution/pkg/enums"
	pkgerrors "github.com/AadiSharma49/Street-Food-Solution/pkg/errors"
	redisclient "github.com/AadiSharma49/Street-Food-Solution/pkg/redis"
)

type stubProducts struct {
	rows map[uuid.UUID]*models.Product
}

func (s *stubProducts) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := s.rows[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newStubProduct(price string, stock int, status enums.ProductStatus) *models.Product {
	return &models.Product{
		ID:            uuid.New(),
		SupplierID:    uuid.New(),
		Name:          "Green chillies",
		Unit:          "kg",
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		Status:        status,
	}
}

func newTestService(t *testing.T, products ...*models.Product) (Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	raw := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })

	store, err := NewRedisStore(redisclient.NewFromRaw(raw), time.Hour)
	require.NoError(t, err)

	stub := &stubProducts{rows: map[uuid.UUID]*models.Product{}}
	for _, p := range products {
		stub.rows[p.ID] = p
	}
	svc, err := NewService(store, stub, 2)
	require.NoError(t, err)
	return svc, mr
}

func TestServiceAddItemPersistsCart(t *testing.T) {
	p := newStubProduct("60", 10, enums.ProductStatusActive)
	svc, mr := newTestService(t, p)
	ctx := context.Background()
	account := uuid.New()

	_, err := svc.AddItem(ctx, account, p.ID, 2)
	require.NoError(t, err)
	view, err := svc.AddItem(ctx, account, p.ID, 1)
	require.NoError(t, err)

	require.Len(t, view.Lines, 1)
	require.Equal(t, 3, view.ItemCount)
	require.True(t, view.Total.Equal(decimal.NewFromInt(180)))
	require.True(t, view.Lines[0].LineTotal.Equal(decimal.NewFromInt(180)))

	key := "sf:cart:" + account.String()
	require.True(t, mr.Exists(key))
	require.Equal(t, time.Hour, mr.TTL(key))

	loaded, err := svc.Get(ctx, account)
	require.NoError(t, err)
	require.Equal(t, 3, loaded.ItemCount)
}

func TestServiceAddItemRejectsUnavailableProduct(t *testing.T) {
	inactive := newStubProduct("10", 5, enums.ProductStatusInactive)
	empty := newStubProduct("10", 0, enums.ProductStatusActive)
	svc, _ := newTestService(t, inactive, empty)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, uuid.New(), inactive.ID, 1)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	_, err = svc.AddItem(ctx, uuid.New(), empty.ID, 1)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	_, err = svc.AddItem(ctx, uuid.New(), uuid.New(), 1)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestServiceAddItemInvalidQuantity(t *testing.T) {
	p := newStubProduct("10", 5, enums.ProductStatusActive)
	svc, _ := newTestService(t, p)

	_, err := svc.AddItem(context.Background(), uuid.New(), p.ID, 0)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestServiceEnforcesMaxLines(t *testing.T) {
	a := newStubProduct("1", 5, enums.ProductStatusActive)
	b := newStubProduct("1", 5, enums.ProductStatusActive)
	c := newStubProduct("1", 5, enums.ProductStatusActive)
	svc, _ := newTestService(t, a, b, c)
	ctx := context.Background()
	account := uuid.New()

	_, err := svc.AddItem(ctx, account, a.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, account, b.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, account, c.ID, 1)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	// merging into an existing line is still allowed at the limit
	_, err = svc.AddItem(ctx, account, a.ID, 1)
	require.NoError(t, err)
}

func TestServiceSetQuantityAndClear(t *testing.T) {
	p := newStubProduct("15", 5, enums.ProductStatusActive)
	svc, mr := newTestService(t, p)
	ctx := context.Background()
	account := uuid.New()

	_, err := svc.AddItem(ctx, account, p.ID, 1)
	require.NoError(t, err)

	view, err := svc.SetQuantity(ctx, account, p.ID, 4)
	require.NoError(t, err)
	require.Equal(t, 4, view.ItemCount)

	view, err = svc.SetQuantity(ctx, account, p.ID, 0)
	require.NoError(t, err)
	require.Empty(t, view.Lines)
	require.False(t, mr.Exists("sf:cart:"+account.String()))

	_, err = svc.AddItem(ctx, account, p.ID, 1)
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, account))
	view, err = svc.Get(ctx, account)
	require.NoError(t, err)
	require.Zero(t, view.ItemCount)
}

func TestServiceConcurrentAddsAreNotLost(t *testing.T) {
	p := newStubProduct("12", 100, enums.ProductStatusActive)
	svc, _ := newTestService(t, p)
	ctx := context.Background()
	account := uuid.New()

	const writers = 50
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddItem(ctx, account, p.ID, 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	view, err := svc.Get(ctx, account)
	require.NoError(t, err)
	require.Equal(t, writers, view.ItemCount)
	require.True(t, view.Total.Equal(decimal.NewFromInt(12*writers)))
}

func TestServiceConcurrentAddsRespectMaxLines(t *testing.T) {
	products := []*models.Product{
		newStubProduct("1", 5, enums.ProductStatusActive),
		newStubProduct("1", 5, enums.ProductStatusActive),
		newStubProduct("1", 5, enums.ProductStatusActive),
		newStubProduct("1", 5, enums.ProductStatusActive),
	}
	svc, _ := newTestService(t, products...)
	ctx := context.Background()
	account := uuid.New()

	var wg sync.WaitGroup
	for _, p := range products {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, _ = svc.AddItem(ctx, account, id, 1)
		}(p.ID)
	}
	wg.Wait()

	view, err := svc.Get(ctx, account)
	require.NoError(t, err)
	require.Len(t, view.Lines, 2)
}

func TestServiceSetQuantityOnAbsentLine(t *testing.T) {
	p := newStubProduct("15", 5, enums.ProductStatusActive)
	svc, mr := newTestService(t, p)
	ctx := context.Background()
	account := uuid.New()

	_, err := svc.SetQuantity(ctx, account, p.ID, 3)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	require.False(t, mr.Exists("sf:cart:"+account.String()))

	view, err := svc.SetQuantity(ctx, account, p.ID, 0)
	require.NoError(t, err)
	require.Empty(t, view.Lines)
}

func TestGroupBySupplier(t *testing.T) {
	s1, s2 := uuid.New(), uuid.New()
	c := Cart{Lines: []Line{
		{ProductID: uuid.New(), SupplierID: s1, UnitPrice: decimal.NewFromInt(10), Quantity: 2},
		{ProductID: uuid.New(), SupplierID: s2, UnitPrice: decimal.NewFromInt(5), Quantity: 1},
		{ProductID: uuid.New(), SupplierID: s1, UnitPrice: decimal.NewFromInt(1), Quantity: 3},
	}}

	groups, err := GroupBySupplier(c)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	require.Equal(t, s1, groups[0].SupplierID)
	require.Len(t, groups[0].Lines, 2)
	require.True(t, groups[0].Subtotal.Equal(decimal.NewFromInt(23)))
	require.True(t, groups[1].Subtotal.Equal(decimal.NewFromInt(5)))
}
