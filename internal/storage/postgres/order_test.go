package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/brosmart/internal/domain/order"
)

func TestDecodeItems(t *testing.T) {
	items, err := decodeItems([]byte(`[
		{"productId":"P1","title":"Classic White Shirt","qty":2,"price":1999,"legacy":true},
		{"productId":"P2","title":"Slim Denim Jeans","qty":1,"price":2999}
	]`))
	require.NoError(t, err)
	assert.Equal(t, []order.LineItem{
		{ProductID: "P1", Title: "Classic White Shirt", Quantity: 2, Price: 1999},
		{ProductID: "P2", Title: "Slim Denim Jeans", Quantity: 1, Price: 2999},
	}, items)

	_, err = decodeItems([]byte(`{"productId":"P1"}`))
	require.Error(t, err)
}

func TestEncodeItems(t *testing.T) {
	got := encodeItems([]order.LineItem{{ProductID: "P1", Title: `Shirt "XL"`, Quantity: 1, Price: 1999}})
	assert.JSONEq(t, `[{"productId":"P1","title":"Shirt \"XL\"","qty":1,"price":1999}]`, string(got))

	assert.Equal(t, "[]", string(encodeItems(nil)))
}
