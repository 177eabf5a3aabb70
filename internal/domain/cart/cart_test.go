package cart

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/brosmart/internal/domain/product"
)

func shirt(stock int) *product.Product {
	return &product.Product{ID: "P1", Title: "Classic White Shirt", Price: 1999, Stock: stock}
}

func TestAdd(t *testing.T) {
	tests := []struct {
		name       string
		existing   int
		stock      int
		add        int
		wantQty    int
		wantNotice Notice
	}{
		{name: "adds one", stock: 12, add: 1, wantQty: 1, wantNotice: NoticeAdded},
		{name: "non-positive defaults to one", stock: 12, add: 0, wantQty: 1, wantNotice: NoticeAdded},
		{name: "accumulates", existing: 3, stock: 12, add: 2, wantQty: 5, wantNotice: NoticeAdded},
		{name: "caps at stock", existing: 10, stock: 12, add: 5, wantQty: 12, wantNotice: NoticeAdded},
		{name: "max stock reached", existing: 12, stock: 12, add: 1, wantQty: 12, wantNotice: NoticeMaxStock},
		{name: "out of stock", stock: 0, add: 1, wantQty: 0, wantNotice: NoticeOutOfStock},
		{name: "huge quantity caps at stock", existing: 1, stock: 12, add: math.MaxInt, wantQty: 12, wantNotice: NoticeAdded},
		{name: "huge quantity at max stock", existing: 12, stock: 12, add: math.MaxInt, wantQty: 12, wantNotice: NoticeMaxStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			if tt.existing > 0 {
				c.set("P1", tt.existing)
			}

			notice := c.Add(shirt(tt.stock), tt.add)

			assert.Equal(t, tt.wantNotice, notice)
			assert.Equal(t, tt.wantQty, c.Quantity("P1"))
		})
	}
}

func TestAdd_UnknownProduct(t *testing.T) {
	c := New()
	assert.Equal(t, NoticeOutOfStock, c.Add(nil, 1))
	assert.Zero(t, c.Len())
}

func TestSetQuantity(t *testing.T) {
	c := New()
	require.Equal(t, NoticeAdded, c.Add(shirt(12), 2))

	assert.Equal(t, NoticeNone, c.SetQuantity(shirt(12), 5))
	assert.Equal(t, 5, c.Quantity("P1"))

	assert.Equal(t, NoticeCapped(12), c.SetQuantity(shirt(12), 40))
	assert.Equal(t, 12, c.Quantity("P1"))

	c.SetQuantity(shirt(12), 0)
	assert.Zero(t, c.Len())
	assert.Empty(t, c.Entries(), "zero quantity entries must be removed")
}

func TestSetQuantity_CappedToZeroRemoves(t *testing.T) {
	c := FromEntries([]Entry{{ProductID: "P1", Quantity: 3}})

	c.SetQuantity(shirt(0), 3)

	assert.Zero(t, c.Len())
}

func TestEntriesKeepInsertionOrder(t *testing.T) {
	c := FromEntries([]Entry{
		{ProductID: "P3", Quantity: 1},
		{ProductID: "P1", Quantity: 2},
		{ProductID: "P3", Quantity: 1},
		{ProductID: "P2", Quantity: 0},
	})

	assert.Equal(t, []Entry{
		{ProductID: "P3", Quantity: 2},
		{ProductID: "P1", Quantity: 2},
	}, c.Entries())
	assert.Equal(t, 4, c.Count())

	c.Remove("P3")
	assert.Equal(t, []string{"P1"}, c.ProductIDs())
}

func TestClone(t *testing.T) {
	c := FromEntries([]Entry{{ProductID: "P1", Quantity: 2}})
	cp := c.Clone()
	cp.SetQuantity(shirt(12), 7)

	assert.Equal(t, 2, c.Quantity("P1"))
	assert.Equal(t, 7, cp.Quantity("P1"))
}

func TestClear(t *testing.T) {
	c := FromEntries([]Entry{{ProductID: "P1", Quantity: 2}, {ProductID: "P2", Quantity: 1}})
	c.Clear()

	assert.Zero(t, c.Len())
	assert.Zero(t, c.Count())
	assert.Empty(t, c.Entries())

	c.Add(shirt(12), 1)
	assert.Equal(t, []Entry{{ProductID: "P1", Quantity: 1}}, c.Entries())
}

func TestFromEntries_MergeSaturates(t *testing.T) {
	c := FromEntries([]Entry{
		{ProductID: "P1", Quantity: math.MaxInt},
		{ProductID: "P1", Quantity: math.MaxInt},
		{ProductID: "P2", Quantity: 2},
		{ProductID: "P2", Quantity: 3},
	})

	assert.Equal(t, math.MaxInt, c.Quantity("P1"))
	assert.Equal(t, 5, c.Quantity("P2"))
	for _, e := range c.Entries() {
		assert.Positive(t, e.Quantity)
	}
}
