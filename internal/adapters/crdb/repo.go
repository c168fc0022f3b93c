package crdb

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/bbqaffair/catering-booking-and-orders/internal/domain"
	"github.com/bbqaffair/catering-booking-and-orders/internal/observability"
)

const (
	SerializationFailureCode = "40001"
	UniqueViolationCode      = "23505"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	start := time.Now()
	defer func() {
		observability.DBTxDuration.Observe(time.Since(start).Seconds())
	}()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, "SET TRANSACTION ISOLATION LEVEL SERIALIZABLE")
	if err != nil {
		return err
	}

	err = fn(tx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == SerializationFailureCode {
			return domain.ErrSerializationFailure
		}
		return err
	}

	return tx.Commit(ctx)
}

func (r *Repository) FindCustomerByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	var c domain.Customer
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, email, phone, address, created_at
		FROM customers WHERE lower(email) = lower($1)
	`, email).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCustomer inserts a new customer. The customers table carries a
// unique index on lower(email); a duplicate insert, including one lost
// to a concurrent booking, surfaces as domain.ErrConflict.
func (r *Repository) CreateCustomer(ctx context.Context, customer domain.Customer) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO customers (id, name, email, phone, address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, customer.ID, customer.Name, customer.Email, customer.Phone, customer.Address, customer.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == UniqueViolationCode {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

// CreateOrder persists the order, its line items, and an order.created
// outbox record in one serializable transaction. Either everything is
// recorded or nothing is.
func (r *Repository) CreateOrder(ctx context.Context, order domain.Order) error {
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO orders (id, customer_id, event_date, event_time, guest_count,
				venue_address, special_notes, subtotal, tax_amount, total_amount,
				payment_status, payment_ref, order_status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		`, order.ID, order.CustomerID, order.EventDate, order.EventTime, order.GuestCount,
			order.VenueAddress, order.SpecialNotes, order.Subtotal, order.TaxAmount, order.TotalAmount,
			order.PaymentStatus, order.PaymentRef, order.OrderStatus, order.CreatedAt, order.UpdatedAt)
		if err != nil {
			return err
		}

		// The transaction owns a single connection, so the item inserts
		// go out as one batch rather than concurrent Execs.
		batch := &pgx.Batch{}
		for _, item := range order.Items {
			batch.Queue(`
				INSERT INTO order_items (order_id, menu_item_id, name, quantity, unit_price, total_price)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, order.ID, item.MenuItemID, item.Name, item.Quantity, item.UnitPrice, item.TotalPrice)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return err
		}

		return r.InsertOutbox(ctx, tx, NewOrderEvent(order, "order.created"))
	})
}

func (r *Repository) GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	var order domain.Order
	err := r.pool.QueryRow(ctx, `
		SELECT id, customer_id, event_date, event_time, guest_count, venue_address,
			special_notes, subtotal, tax_amount, total_amount, payment_status,
			payment_ref, order_status, created_at, updated_at
		FROM orders WHERE id = $1
	`, orderID).Scan(&order.ID, &order.CustomerID, &order.EventDate, &order.EventTime,
		&order.GuestCount, &order.VenueAddress, &order.SpecialNotes, &order.Subtotal,
		&order.TaxAmount, &order.TotalAmount, &order.PaymentStatus, &order.PaymentRef,
		&order.OrderStatus, &order.CreatedAt, &order.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT menu_item_id, name, quantity, unit_price, total_price
		FROM order_items WHERE order_id = $1
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.MenuItemID, &item.Name, &item.Quantity, &item.UnitPrice, &item.TotalPrice); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}

	return &order, rows.Err()
}

func (r *Repository) ListOrders(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	query := `
		SELECT id, customer_id, event_date, event_time, guest_count, venue_address,
			special_notes, subtotal, tax_amount, total_amount, payment_status,
			payment_ref, order_status, created_at, updated_at
		FROM orders`
	args := []interface{}{}
	if status != "" {
		query += " WHERE order_status = $1"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.ID, &order.CustomerID, &order.EventDate, &order.EventTime,
			&order.GuestCount, &order.VenueAddress, &order.SpecialNotes, &order.Subtotal,
			&order.TaxAmount, &order.TotalAmount, &order.PaymentStatus, &order.PaymentRef,
			&order.OrderStatus, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, order)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE orders SET order_status = $2, updated_at = now() WHERE id = $1
	`, orderID, status)
	if err != nil {
		return nil, err
	}
	if result.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetOrder(ctx, orderID)
}

func (r *Repository) UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, status domain.PaymentStatus, ref string) (*domain.Order, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE orders SET payment_status = $2,
			payment_ref = CASE WHEN $3 = '' THEN payment_ref ELSE $3 END,
			updated_at = now()
		WHERE id = $1
	`, orderID, status, ref)
	if err != nil {
		return nil, err
	}
	if result.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetOrder(ctx, orderID)
}

// Stats runs the revenue aggregate and the per-status counts as two
// independent pool queries in parallel.
func (r *Repository) Stats(ctx context.Context) (domain.Stats, error) {
	stats := domain.Stats{OrderCounts: make(map[domain.OrderStatus]int)}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.pool.QueryRow(gctx, `
			SELECT COALESCE(SUM(total_amount) FILTER (WHERE payment_status = 'paid'), 0),
				COALESCE(AVG(total_amount), 0)
			FROM orders
		`).Scan(&stats.TotalRevenue, &stats.AverageOrderValue)
	})
	g.Go(func() error {
		rows, err := r.pool.Query(gctx, `
			SELECT order_status, COUNT(*) FROM orders GROUP BY order_status
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var status domain.OrderStatus
			var count int
			if err := rows.Scan(&status, &count); err != nil {
				return err
			}
			stats.OrderCounts[status] = count
		}
		return rows.Err()
	})
	if err := g.Wait(); err != nil {
		return domain.Stats{}, err
	}

	stats.TotalRevenue = domain.Round2(stats.TotalRevenue)
	stats.AverageOrderValue = domain.Round2(stats.AverageOrderValue)
	return stats, nil
}

func (r *Repository) TopMenuItems(ctx context.Context, limit int) ([]domain.ItemSales, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT menu_item_id, name, SUM(quantity), SUM(total_price)
		FROM order_items
		GROUP BY menu_item_id, name
		ORDER BY SUM(quantity) DESC, name ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ItemSales
	for rows.Next() {
		var sales domain.ItemSales
		if err := rows.Scan(&sales.MenuItemID, &sales.Name, &sales.Quantity, &sales.Revenue); err != nil {
			return nil, err
		}
		out = append(out, sales)
	}
	return out, rows.Err()
}
