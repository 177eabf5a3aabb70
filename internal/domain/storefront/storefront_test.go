package storefront_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/brosmart/internal/domain/content"
	"github.com/xenking/brosmart/internal/domain/coupon"
	"github.com/xenking/brosmart/internal/domain/order"
	"github.com/xenking/brosmart/internal/domain/pricing"
	"github.com/xenking/brosmart/internal/domain/product"
	"github.com/xenking/brosmart/internal/domain/storefront"
	"github.com/xenking/brosmart/internal/storage/memory"
)

type fixture struct {
	products *memory.ProductRepository
	orders   *memory.OrderRepository
	coupons  *memory.CouponRepository
	content  *memory.ContentRepository
	svc      *storefront.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		products: memory.NewProductRepository(
			product.Product{ID: "P1", Title: "Classic White Shirt", Price: 1999, Stock: 12},
			product.Product{ID: "P2", Title: "Slim Denim Jeans", Price: 2999, Stock: 8},
		),
		orders: memory.NewOrderRepository(),
		coupons: memory.NewCouponRepository(
			coupon.Coupon{ID: "C1", Code: "WELCOME10", Type: pricing.KindPercent, Value: 10},
		),
		content: memory.NewContentRepository(),
	}
	require.NoError(t, f.content.CreateSlide(ctx, content.Slide{ID: "S1", Title: "Autumn Collection"}))
	require.NoError(t, f.content.CreateFeature(ctx, content.Feature{ID: "F1", Title: "Free Shipping"}))
	require.NoError(t, f.content.UpsertSiteContent(ctx, content.SiteContent{Copyright: "© 2025 BrosMart. All rights reserved."}))

	f.svc = storefront.NewService(f.products, f.orders, f.coupons, f.content)
	return f
}

func (f *fixture) addOrder(t *testing.T, i int, status order.Status, total int64) {
	t.Helper()
	require.NoError(t, f.orders.Create(context.Background(), &order.Order{
		ID:        fmt.Sprintf("o%d", i),
		Tracking:  fmt.Sprintf("BROS-20251016-%04d", i),
		Total:     total,
		Status:    status,
		CreatedAt: time.Date(2025, 10, 16, 9, i, 0, 0, time.UTC),
	}))
}

func TestSnapshot(t *testing.T) {
	f := newFixture(t)
	f.addOrder(t, 1, order.StatusPending, 3998)
	f.addOrder(t, 2, order.StatusShipped, 1000)

	snap, err := f.svc.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Len(t, snap.Products, 2)
	require.Len(t, snap.Orders, 2)
	assert.Equal(t, "o2", snap.Orders[0].ID)
	assert.Len(t, snap.Coupons, 1)
	assert.Len(t, snap.Slides, 1)
	assert.Len(t, snap.Features, 1)
	assert.Equal(t, "© 2025 BrosMart. All rights reserved.", snap.Content.Copyright)
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	for i := 1; i <= 7; i++ {
		status := order.StatusPending
		if i%3 == 0 {
			status = order.StatusShipped
		}
		f.addOrder(t, i, status, 1000)
	}

	st, err := f.svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, st.Products)
	assert.Equal(t, 1, st.Coupons)
	assert.Equal(t, 7, st.Orders)
	assert.Equal(t, 5, st.Pending)
	assert.Equal(t, int64(7000), st.Revenue)
	require.Len(t, st.Recent, storefront.RecentOrders)
	assert.Equal(t, "o7", st.Recent[0].ID)
}

type failingContent struct {
	*memory.ContentRepository
}

func (failingContent) ListSlides(context.Context) ([]content.Slide, error) {
	return nil, errors.New("connection reset")
}

func TestSnapshot_Error(t *testing.T) {
	f := newFixture(t)
	svc := storefront.NewService(f.products, f.orders, f.coupons, failingContent{f.content})

	_, err := svc.Snapshot(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list slides")
}
