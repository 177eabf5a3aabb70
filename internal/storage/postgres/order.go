package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/brosmart/internal/domain/order"
)

const (
	orderColumns = `id, tracking, items, subtotal, discount, total, coupon_code, payment_method,
		customer_name, customer_email, customer_phone, customer_address, status, created_at`

	createOrderSQL = `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	listOrdersSQL         = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC, id`
	getOrderByIDSQL       = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	getOrderByTrackingSQL = `SELECT ` + orderColumns + ` FROM orders WHERE UPPER(tracking) = UPPER($1)`

	// markShippedSQL is a no-op for shipped orders; RETURNING still yields the
	// row so callers get the stored record either way.
	markShippedSQL = `UPDATE orders SET status = 'shipped' WHERE id = $1
		RETURNING ` + orderColumns

	trackingConstraint = "orders_tracking_key"

	summarizeOrdersSQL = `SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'pending'), COALESCE(SUM(total), 0)
		FROM orders`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Line
// items are stored as a JSONB array.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order. A clash on the tracking column yields
// order.ErrDuplicateTracking.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	var coupon *string
	if o.Coupon != "" {
		coupon = &o.Coupon
	}

	_, err := r.pool.Exec(ctx, createOrderSQL,
		o.ID, o.Tracking, encodeItems(o.Items), o.Subtotal, o.Discount, o.Total, coupon, o.PaymentMethod,
		o.Customer.Name, o.Customer.Email, o.Customer.Phone, o.Customer.Address,
		string(o.Status), o.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == trackingConstraint {
			return order.ErrDuplicateTracking
		}
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}
	return nil
}

func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	return r.one(ctx, getOrderByIDSQL, id)
}

func (r *OrderRepository) GetByTracking(ctx context.Context, tracking string) (*order.Order, error) {
	return r.one(ctx, getOrderByTrackingSQL, tracking)
}

func (r *OrderRepository) MarkShipped(ctx context.Context, id string) (*order.Order, error) {
	return r.one(ctx, markShippedSQL, id)
}

// Summary aggregates order counters. SUM over BIGINT yields NUMERIC, which
// is decoded through shopspring/decimal.
func (r *OrderRepository) Summary(ctx context.Context) (order.Summary, error) {
	var (
		s       order.Summary
		revenue decimal.Decimal
	)
	if err := r.pool.QueryRow(ctx, summarizeOrdersSQL).Scan(&s.Orders, &s.Pending, &revenue); err != nil {
		return order.Summary{}, fmt.Errorf("summarizing orders: %w", err)
	}
	s.Revenue = revenue.IntPart()
	return s, nil
}

func (r *OrderRepository) one(ctx context.Context, sql string, arg string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", arg, err)
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", arg, err)
	}
	return &o, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o       order.Order
		items   []byte
		coupon  *string
		status  string
		created time.Time
	)
	err := row.Scan(
		&o.ID, &o.Tracking, &items, &o.Subtotal, &o.Discount, &o.Total, &coupon, &o.PaymentMethod,
		&o.Customer.Name, &o.Customer.Email, &o.Customer.Phone, &o.Customer.Address,
		&status, &created,
	)
	if err != nil {
		return o, err
	}
	if coupon != nil {
		o.Coupon = *coupon
	}
	o.Status = order.Status(status)
	o.CreatedAt = created.UTC()

	o.Items, err = decodeItems(items)
	if err != nil {
		return o, fmt.Errorf("decoding items of order %q: %w", o.ID, err)
	}
	return o, nil
}

func encodeItems(items []order.LineItem) []byte {
	var e jx.Encoder
	e.ArrStart()
	for _, it := range items {
		e.ObjStart()
		e.FieldStart("productId")
		e.Str(it.ProductID)
		e.FieldStart("title")
		e.Str(it.Title)
		e.FieldStart("qty")
		e.Int(it.Quantity)
		e.FieldStart("price")
		e.Int64(it.Price)
		e.ObjEnd()
	}
	e.ArrEnd()
	return e.Bytes()
}

func decodeItems(data []byte) ([]order.LineItem, error) {
	var items []order.LineItem
	err := jx.DecodeBytes(data).Arr(func(d *jx.Decoder) error {
		var it order.LineItem
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "productId":
				it.ProductID, err = d.Str()
			case "title":
				it.Title, err = d.Str()
			case "qty":
				it.Quantity, err = d.Int()
			case "price":
				it.Price, err = d.Int64()
			default:
				err = d.Skip()
			}
			return err
		}); err != nil {
			return err
		}
		items = append(items, it)
		return nil
	})
	return items, err
}
