package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

const orderColumns = `id, user_id, fulfillment, shipping_address, pickup_location, payment_method, order_type,
        tax_rate, items_subtotal, tax, shipping, total, status, paid_at, delivered_at, payment_result,
        created_at, updated_at`

var orderItemColumns = []string{"order_id", "product_id", "name", "quantity", "unit_price"}

type orderRepository struct {
	storage *Storage
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o                             model.Order
		address, pickup, paymentBytes []byte
	)
	err := row.Scan(&o.ID, &o.UserID, &o.Fulfillment, &address, &pickup, &o.PaymentMethod, &o.OrderType,
		&o.TaxRate, &o.ItemsSubtotal, &o.Tax, &o.Shipping, &o.Total, &o.Status, &o.PaidAt, &o.DeliveredAt,
		&paymentBytes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if o.ShippingAddress, err = decodeJSONColumn[model.ShippingAddress](address); err != nil {
		return nil, fmt.Errorf("decode shipping address of order %d: %w", o.ID, err)
	}
	if o.PickupLocation, err = decodeJSONColumn[model.PickupLocation](pickup); err != nil {
		return nil, fmt.Errorf("decode pickup location of order %d: %w", o.ID, err)
	}
	result, err := decodeJSONColumn[model.PaymentResult](paymentBytes)
	if err != nil {
		return nil, fmt.Errorf("decode payment result of order %d: %w", o.ID, err)
	}
	if result != nil {
		o.PaymentResult = *result
	}
	return &o, nil
}

// Create stores the order and its lines in one transaction.
func (r *orderRepository) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	address, err := jsonColumn(order.ShippingAddress)
	if err != nil {
		return nil, err
	}
	pickup, err := jsonColumn(order.PickupLocation)
	if err != nil {
		return nil, err
	}
	payment, err := json.Marshal(order.PaymentResult)
	if err != nil {
		return nil, err
	}

	created := *order
	created.Items = append([]model.OrderItem(nil), order.Items...)

	err = r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const insertOrder = `INSERT INTO orders (user_id, fulfillment, shipping_address, pickup_location, payment_method,
                                 order_type, tax_rate, items_subtotal, tax, shipping, total, status, payment_result)
                             VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
                             RETURNING id, created_at, updated_at`
		if err := tx.QueryRow(ctx, insertOrder,
			order.UserID, order.Fulfillment, address, pickup, order.PaymentMethod,
			order.OrderType, order.TaxRate, order.ItemsSubtotal, order.Tax, order.Shipping, order.Total,
			order.Status, payment,
		).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt); err != nil {
			return err
		}

		lines := make([][]any, len(order.Items))
		for i, item := range order.Items {
			lines[i] = []any{created.ID, item.ProductID, item.Name, item.Quantity, item.UnitPrice}
		}
		_, err := tx.CopyFrom(ctx, pgx.Identifier{"order_items"}, orderItemColumns, pgx.CopyFromRows(lines))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrOrderNotFound
		}
		return nil, err
	}

	items, err := r.loadItems(ctx, []int64{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]
	return order, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	rows, err := r.storage.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id=$1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return result, nil
	}

	ids := make([]int64, len(result))
	for i := range result {
		ids[i] = result[i].ID
	}
	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range result {
		result[i].Items = items[result[i].ID]
	}
	return result, nil
}

func (r *orderRepository) loadItems(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderItem, error) {
	const query = `SELECT order_id, product_id, name, quantity, unit_price
                   FROM order_items WHERE order_id = ANY($1) ORDER BY id`
	rows, err := r.storage.pool.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64][]model.OrderItem, len(orderIDs))
	for rows.Next() {
		var (
			orderID int64
			item    model.OrderItem
		)
		if err := rows.Scan(&orderID, &item.ProductID, &item.Name, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		result[orderID] = append(result[orderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, from model.OrderStatus, update model.StatusUpdate) (bool, error) {
	const query = `UPDATE orders SET status=$3, paid_at=$4, delivered_at=$5, updated_at=NOW()
                   WHERE id=$1 AND status=$2`
	tag, err := r.storage.pool.Exec(ctx, query, id, from, update.Status, update.PaidAt, update.DeliveredAt)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *orderRepository) AttachTransaction(ctx context.Context, id int64, result model.PaymentResult) error {
	payment, err := json.Marshal(result)
	if err != nil {
		return err
	}

	const query = `UPDATE orders SET payment_result=$2, updated_at=NOW()
                   WHERE id=$1 AND status=$3 AND paid_at IS NULL`
	tag, err := r.storage.pool.Exec(ctx, query, id, payment, model.OrderStatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := r.storage.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id=$1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domainErrors.ErrOrderNotFound
	}
	return domainErrors.ErrAlreadyPaid
}

func (r *orderRepository) ApplyPaymentOutcome(ctx context.Context, id int64, result model.PaymentResult, paidAt *time.Time) (bool, error) {
	payment, err := json.Marshal(result)
	if err != nil {
		return false, err
	}

	var tag pgconn.CommandTag
	if paidAt != nil {
		const approve = `UPDATE orders SET payment_result=$2, paid_at=$3, status=$4, updated_at=NOW()
                         WHERE id=$1 AND status=$5 AND paid_at IS NULL`
		tag, err = r.storage.pool.Exec(ctx, approve, id, payment, *paidAt, model.OrderStatusProcessing, model.OrderStatusPending)
	} else {
		const reject = `UPDATE orders SET payment_result=$2, updated_at=NOW()
                        WHERE id=$1 AND status=$3 AND paid_at IS NULL`
		tag, err = r.storage.pool.Exec(ctx, reject, id, payment, model.OrderStatusPending)
	}
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *orderRepository) RecordRefund(ctx context.Context, id int64, refund model.Refund) (bool, error) {
	encoded, err := json.Marshal(refund)
	if err != nil {
		return false, err
	}

	const query = `UPDATE orders SET payment_result = jsonb_set(payment_result, '{refund}', $2::jsonb), updated_at=NOW()
                   WHERE id=$1 AND NOT (payment_result ? 'refund')`
	tag, err := r.storage.pool.Exec(ctx, query, id, encoded)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *orderRepository) FindByBuyOrder(ctx context.Context, buyOrder string) (int64, error) {
	const query = `SELECT id FROM orders WHERE payment_result->>'buy_order' = $1 ORDER BY id DESC LIMIT 1`
	return r.findID(ctx, query, buyOrder)
}

func (r *orderRepository) FindByPaymentToken(ctx context.Context, token string) (int64, error) {
	const query = `SELECT id FROM orders WHERE payment_result->>'id' = $1 ORDER BY id DESC LIMIT 1`
	return r.findID(ctx, query, token)
}

func (r *orderRepository) FindLatestPendingGateway(ctx context.Context, since time.Time) (int64, error) {
	const query = `SELECT id FROM orders
                   WHERE status=$1 AND paid_at IS NULL AND payment_method=$2 AND created_at >= $3
                   ORDER BY created_at DESC LIMIT 1`
	return r.findID(ctx, query, model.OrderStatusPending, model.PaymentMethodGateway, since)
}

func (r *orderRepository) findID(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	if err := r.storage.pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domainErrors.ErrNotFound
		}
		return 0, err
	}
	return id, nil
}
