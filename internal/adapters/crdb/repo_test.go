package crdb_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/bbqaffair/catering-booking-and-orders/internal/adapters/crdb"
	"github.com/bbqaffair/catering-booking-and-orders/internal/domain"
)

const schema = `
	CREATE DATABASE IF NOT EXISTS catering;
	CREATE TABLE IF NOT EXISTS catering.customers (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT NOT NULL,
		address TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		UNIQUE INDEX customers_email_key (lower(email))
	);
	CREATE TABLE IF NOT EXISTS catering.orders (
		id UUID PRIMARY KEY,
		customer_id UUID NOT NULL,
		event_date TIMESTAMPTZ NOT NULL,
		event_time TEXT NOT NULL,
		guest_count INT NOT NULL,
		venue_address TEXT NOT NULL,
		special_notes TEXT,
		subtotal FLOAT8 NOT NULL,
		tax_amount FLOAT8 NOT NULL,
		total_amount FLOAT8 NOT NULL,
		payment_status TEXT CHECK (payment_status IN ('pending', 'paid', 'failed', 'refunded')),
		payment_ref TEXT,
		order_status TEXT CHECK (order_status IN ('pending', 'confirmed', 'preparing', 'completed', 'cancelled')),
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	CREATE TABLE IF NOT EXISTS catering.order_items (
		order_id UUID,
		menu_item_id TEXT,
		name TEXT NOT NULL,
		quantity INT NOT NULL,
		unit_price FLOAT8 NOT NULL,
		total_price FLOAT8 NOT NULL,
		PRIMARY KEY (order_id, menu_item_id)
	);
	CREATE TABLE IF NOT EXISTS catering.outbox (
		id UUID PRIMARY KEY,
		aggregate_type TEXT NOT NULL,
		aggregate_id UUID NOT NULL,
		event_type TEXT NOT NULL,
		payload_json JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		published_at TIMESTAMPTZ,
		status TEXT CHECK (status IN ('NEW', 'PUBLISHED', 'FAILED')),
		dedupe_key TEXT NOT NULL
	);
`

func setupRepo(t *testing.T) (*crdb.Repository, *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	crdbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "cockroachdb/cockroach:v24.1.1",
			Cmd:          []string{"start-single-node", "--insecure"},
			ExposedPorts: []string{"26257/tcp"},
			WaitingFor:   wait.ForHTTP("/health?ready=1").WithPort("8080"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { crdbContainer.Terminate(ctx) })

	dsn, err := crdbContainer.Endpoint(ctx, "postgresql")
	if err != nil {
		t.Fatal(err)
	}

	pool, err := pgxpool.New(ctx, dsn+"/catering?sslmode=disable")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, schema); err != nil {
		t.Fatal(err)
	}

	return crdb.NewRepository(pool), pool
}

func testOrder(customerID uuid.UUID) domain.Order {
	now := time.Now().UTC().Truncate(time.Second)
	return domain.NewOrder(customerID, domain.EventDetails{
		Date:         now.AddDate(0, 0, 14),
		Time:         "12:00 PM",
		GuestCount:   25,
		VenueAddress: "East Coast Park Area D",
	}, []domain.OrderItem{
		{MenuItemID: "pkg:premium", Name: "Premium BBQ Package", Quantity: 25, UnitPrice: 35},
	}, now)
}

func TestRepository_CustomerUniqueByEmail(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	customer := domain.Customer{
		ID:        uuid.New(),
		Name:      "Tan Wei Ming",
		Email:     "weiming@example.com",
		Phone:     "91234567",
		Address:   "Blk 123 Tampines St 45",
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.CreateCustomer(ctx, customer); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	dup := customer
	dup.ID = uuid.New()
	dup.Email = "WeiMing@Example.com"
	if err := repo.CreateCustomer(ctx, dup); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected conflict error, got %v", err)
	}

	found, err := repo.FindCustomerByEmail(ctx, "WEIMING@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if found.ID != customer.ID {
		t.Errorf("expected customer %s, got %s", customer.ID, found.ID)
	}

	if _, err := repo.FindCustomerByEmail(ctx, "nobody@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestRepository_CreateOrder(t *testing.T) {
	repo, pool := setupRepo(t)
	ctx := context.Background()

	customer := domain.Customer{
		ID: uuid.New(), Name: "Tan Wei Ming", Email: "weiming@example.com",
		Phone: "91234567", Address: "Blk 123 Tampines St 45", CreatedAt: time.Now().UTC(),
	}
	if err := repo.CreateCustomer(ctx, customer); err != nil {
		t.Fatal(err)
	}

	order := testOrder(customer.ID)
	if err := repo.CreateOrder(ctx, order); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	fetched, err := repo.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if fetched.OrderStatus != domain.OrderPending || len(fetched.Items) != 1 {
		t.Errorf("expected pending order with 1 item, got %v with %d items", fetched.OrderStatus, len(fetched.Items))
	}
	if fetched.TotalAmount != 945.0 {
		t.Errorf("expected total 945.00, got %v", fetched.TotalAmount)
	}

	// The same transaction must have queued the order.created event.
	records, err := repo.GetUnpublishedOutbox(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].EventType != "order.created" || records[0].AggregateID != order.ID {
		t.Fatalf("expected one order.created outbox record for %s, got %+v", order.ID, records)
	}

	if err := repo.MarkPublished(ctx, records[0].ID, time.Now().UTC()); err != nil {
		t.Fatal(err)
	}
	records, err = repo.GetUnpublishedOutbox(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("expected no unpublished records, got %d", len(records))
	}

	var itemCount int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM order_items WHERE order_id = $1", order.ID).Scan(&itemCount); err != nil {
		t.Fatal(err)
	}
	if itemCount != 1 {
		t.Errorf("expected 1 order item row, got %d", itemCount)
	}
}

func TestRepository_CreateOrder_ItemizedLines(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	customer := domain.Customer{
		ID: uuid.New(), Name: "Tan Wei Ming", Email: "weiming@example.com",
		Phone: "91234567", Address: "Blk 123 Tampines St 45", CreatedAt: time.Now().UTC(),
	}
	if err := repo.CreateCustomer(ctx, customer); err != nil {
		t.Fatal(err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	order := domain.NewOrder(customer.ID, domain.EventDetails{
		Date:         now.AddDate(0, 0, 7),
		Time:         "6:00 PM",
		GuestCount:   20,
		VenueAddress: "Blk 123 Tampines St 45",
	}, []domain.OrderItem{
		{MenuItemID: "1", Name: "Premium Beef Ribeye", Quantity: 2, UnitPrice: 18.9},
		{MenuItemID: "2", Name: "BBQ Chicken Wings", Quantity: 4, UnitPrice: 5},
		{MenuItemID: "3", Name: "Satay", Quantity: 10, UnitPrice: 1.5},
	}, now)

	if err := repo.CreateOrder(ctx, order); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	fetched, err := repo.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(fetched.Items) != 3 {
		t.Fatalf("expected 3 order item rows, got %d", len(fetched.Items))
	}
	if fetched.Subtotal != 72.8 || fetched.TotalAmount != 78.62 {
		t.Errorf("expected subtotal 72.80 and total 78.62, got %v and %v", fetched.Subtotal, fetched.TotalAmount)
	}
}

func TestRepository_StatusUpdatesAndStats(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	customer := domain.Customer{
		ID: uuid.New(), Name: "Tan Wei Ming", Email: "weiming@example.com",
		Phone: "91234567", Address: "Blk 123 Tampines St 45", CreatedAt: time.Now().UTC(),
	}
	if err := repo.CreateCustomer(ctx, customer); err != nil {
		t.Fatal(err)
	}
	order := testOrder(customer.ID)
	if err := repo.CreateOrder(ctx, order); err != nil {
		t.Fatal(err)
	}

	updated, err := repo.UpdateOrderStatus(ctx, order.ID, domain.OrderConfirmed)
	if err != nil {
		t.Fatal(err)
	}
	if updated.OrderStatus != domain.OrderConfirmed {
		t.Errorf("expected confirmed, got %v", updated.OrderStatus)
	}

	paid, err := repo.UpdatePaymentStatus(ctx, order.ID, domain.PaymentPaid, "txn_123")
	if err != nil {
		t.Fatal(err)
	}
	if paid.PaymentStatus != domain.PaymentPaid || paid.PaymentRef != "txn_123" {
		t.Errorf("expected paid with ref txn_123, got %v %q", paid.PaymentStatus, paid.PaymentRef)
	}

	if _, err := repo.UpdateOrderStatus(ctx, uuid.New(), domain.OrderConfirmed); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found error, got %v", err)
	}

	stats, err := repo.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalRevenue != 945.0 || stats.OrderCounts[domain.OrderConfirmed] != 1 {
		t.Errorf("expected revenue 945.00 with one confirmed order, got %+v", stats)
	}

	top, err := repo.TopMenuItems(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 1 || top[0].MenuItemID != "pkg:premium" || top[0].Quantity != 25 {
		t.Errorf("expected premium package as top item, got %+v", top)
	}

	confirmed, err := repo.ListOrders(ctx, domain.OrderConfirmed)
	if err != nil {
		t.Fatal(err)
	}
	if len(confirmed) != 1 {
		t.Errorf("expected 1 confirmed order, got %d", len(confirmed))
	}
}
