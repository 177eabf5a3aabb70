package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/brosmart/internal/domain/content"
	"github.com/xenking/brosmart/internal/domain/coupon"
	"github.com/xenking/brosmart/internal/domain/order"
	"github.com/xenking/brosmart/internal/domain/product"
	"github.com/xenking/brosmart/pkg/httpmiddleware"
)

// MsgOutOfStock is shown to shoppers when reservation fails.
const MsgOutOfStock = "One or more items are out of stock."

// requestError is a malformed or invalid request.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(msg string) error {
	return &requestError{msg: msg}
}

// statusOf maps an error to the HTTP status and client message.
func statusOf(err error) (int, string) {
	var (
		reqErr     *requestError
		validErr   *order.ValidationError
		persistErr *order.PersistenceError
	)
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, reqErr.msg
	case errors.As(err, &validErr):
		return http.StatusBadRequest, validErr.Error()
	case errors.Is(err, order.ErrEmptyCart):
		return http.StatusBadRequest, "Cart is empty"
	case errors.Is(err, order.ErrOutOfStock):
		return http.StatusBadRequest, MsgOutOfStock
	case errors.As(err, &persistErr):
		return http.StatusInternalServerError, "Failed to place order"
	case errors.Is(err, coupon.ErrInvalidCoupon):
		return http.StatusBadRequest, "Invalid coupon"
	case errors.Is(err, coupon.ErrDuplicateCode):
		return http.StatusConflict, "Coupon code already exists"
	case errors.Is(err, product.ErrNotFound):
		return http.StatusNotFound, "Product not found"
	case errors.Is(err, order.ErrNotFound):
		return http.StatusNotFound, "Order not found"
	case errors.Is(err, coupon.ErrNotFound):
		return http.StatusNotFound, "Coupon not found"
	case errors.Is(err, content.ErrNotFound):
		return http.StatusNotFound, "Not found"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

// respondError writes the error body. Server errors are logged with the
// underlying cause.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusOf(err)
	if status >= http.StatusInternalServerError {
		zctx.From(r.Context()).Error("Request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	httpmiddleware.WriteError(w, status, msg)
}
