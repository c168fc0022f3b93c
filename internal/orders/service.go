// Package orders is the order pricing and creation layer: it resolves
// customers by email, prices line items, and persists the order
// aggregate through a pluggable Store.
package orders

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/bbqaffair/catering-booking-and-orders/internal/booking"
	"github.com/bbqaffair/catering-booking-and-orders/internal/domain"
	"github.com/bbqaffair/catering-booking-and-orders/internal/observability"
)

// Store persists the order aggregate. CreateOrder must record the
// order and all of its items as one unit: on error nothing is stored.
// Lookups return domain.ErrNotFound for missing rows and CreateCustomer
// returns domain.ErrConflict when the email is already taken.
type Store interface {
	FindCustomerByEmail(ctx context.Context, email string) (*domain.Customer, error)
	CreateCustomer(ctx context.Context, customer domain.Customer) error
	CreateOrder(ctx context.Context, order domain.Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, ref string) (*domain.Order, error)
	Stats(ctx context.Context) (domain.Stats, error)
	TopMenuItems(ctx context.Context, limit int) ([]domain.ItemSales, error)
}

type CustomerInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// LineItem is an order line request: a catalog reference with the unit
// price the caller saw. The price is snapshotted into the order as-is.
type LineItem struct {
	MenuItemID string  `json:"menu_item_id"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
}

type Service struct {
	store  Store
	logger observability.Logger
	now    func() time.Time
}

func NewService(store Store, logger observability.Logger) *Service {
	return &Service{store: store, logger: logger, now: time.Now}
}

func validateCreate(info CustomerInfo, event domain.EventDetails, items []LineItem) error {
	ve := &domain.ValidationError{}
	if strings.TrimSpace(info.Name) == "" {
		ve.Add("customer.name", "required")
	}
	if strings.TrimSpace(info.Email) == "" {
		ve.Add("customer.email", "required")
	}
	if strings.TrimSpace(info.Phone) == "" {
		ve.Add("customer.phone", "required")
	}
	if strings.TrimSpace(info.Address) == "" {
		ve.Add("customer.address", "required")
	}
	if event.Date.IsZero() {
		ve.Add("event.date", "required")
	}
	if event.Time == "" {
		ve.Add("event.time", "required")
	}
	if event.GuestCount <= 0 {
		ve.Add("event.guest_count", "must be a positive number")
	}
	if strings.TrimSpace(event.VenueAddress) == "" {
		ve.Add("event.location", "required")
	}
	if len(items) == 0 {
		ve.Add("items", "at least one line item required")
	}
	for _, it := range items {
		if it.Quantity <= 0 {
			ve.Add("items.quantity", "must be positive")
		}
		if it.UnitPrice < 0 {
			ve.Add("items.unit_price", "must not be negative")
		}
	}
	return ve.Err()
}

// resolveCustomer reuses the customer with a matching email or creates
// one. A unique-constraint race with a concurrent booking is resolved
// by re-fetching and reusing the winner's row.
func (s *Service) resolveCustomer(ctx context.Context, info CustomerInfo) (*domain.Customer, error) {
	existing, err := s.store.FindCustomerByEmail(ctx, info.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	customer := domain.Customer{
		ID:        uuid.New(),
		Name:      info.Name,
		Email:     info.Email,
		Phone:     info.Phone,
		Address:   info.Address,
		CreatedAt: s.now(),
	}
	err = s.store.CreateCustomer(ctx, customer)
	if err == nil {
		return &customer, nil
	}
	if errors.Is(err, domain.ErrConflict) {
		return s.store.FindCustomerByEmail(ctx, info.Email)
	}
	return nil, err
}

// CreateOrder validates the request, resolves the customer, prices the
// items, and persists the order. A failure means no order was created;
// callers may retry behind an idempotency key.
func (s *Service) CreateOrder(ctx context.Context, info CustomerInfo, event domain.EventDetails, items []LineItem) (*domain.Order, error) {
	if err := validateCreate(info, event, items); err != nil {
		return nil, err
	}

	customer, err := s.resolveCustomer(ctx, info)
	if err != nil {
		return nil, errors.Wrap(err, "resolve customer")
	}

	orderItems := make([]domain.OrderItem, len(items))
	for i, it := range items {
		orderItems[i] = domain.OrderItem{
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
		}
	}

	order := domain.NewOrder(customer.ID, event, orderItems, s.now())
	if err := s.store.CreateOrder(ctx, order); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	observability.OrdersCreated.Inc()
	s.logger.WithField("order_id", order.ID.String()).Info("order created")
	return &order, nil
}

// SubmitDraft turns a completed wizard draft into an order. The package
// booking becomes a single synthetic line item priced per guest, so
// both booking flows share one totals path.
func (s *Service) SubmitDraft(ctx context.Context, draft *booking.Draft) (*domain.Order, error) {
	if !draft.Complete() {
		ve := &domain.ValidationError{}
		for _, step := range []booking.Step{booking.StepEventDetails, booking.StepVenue, booking.StepContact} {
			if !draft.CanAdvance(step) {
				ve.Add("step", "incomplete booking details")
				break
			}
		}
		return nil, ve
	}

	pkg, ok := draft.Package()
	if !ok {
		return nil, domain.ErrNotFound
	}

	info := CustomerInfo{
		Name:    draft.Name,
		Email:   draft.Email,
		Phone:   draft.Phone,
		Address: draft.Address,
	}
	event := domain.EventDetails{
		Date:         draft.EventDate,
		Time:         draft.EventTime,
		GuestCount:   draft.GuestCount,
		VenueAddress: draft.Address,
		SpecialNotes: draft.SpecialRequests,
	}
	items := []LineItem{{
		MenuItemID: "pkg:" + pkg.ID,
		Name:       pkg.Name,
		Quantity:   draft.GuestCount,
		UnitPrice:  pkg.PricePerGuest,
	}}

	return s.CreateOrder(ctx, info, event, items)
}

func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.store.GetOrder(ctx, id)
}

func (s *Service) ListOrders(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	if status != "" && !domain.ValidOrderStatus(status) {
		ve := &domain.ValidationError{}
		ve.Add("status", "unknown order status")
		return nil, ve
	}
	return s.store.ListOrders(ctx, status)
}

func (s *Service) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	if !domain.ValidOrderStatus(status) {
		ve := &domain.ValidationError{}
		ve.Add("status", "unknown order status")
		return nil, ve
	}
	return s.store.UpdateOrderStatus(ctx, id, status)
}

func (s *Service) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, ref string) (*domain.Order, error) {
	if !domain.ValidPaymentStatus(status) {
		ve := &domain.ValidationError{}
		ve.Add("status", "unknown payment status")
		return nil, ve
	}
	return s.store.UpdatePaymentStatus(ctx, id, status, ref)
}

func (s *Service) Stats(ctx context.Context) (domain.Stats, error) {
	return s.store.Stats(ctx)
}

func (s *Service) TopMenuItems(ctx context.Context, limit int) ([]domain.ItemSales, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.store.TopMenuItems(ctx, limit)
}
