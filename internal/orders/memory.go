package orders

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bbqaffair/catering-booking-and-orders/internal/domain"
)

// MemoryStore is an in-process Store used in tests and local runs
// without a database. It honors the same ErrNotFound/ErrConflict
// semantics as the real repository.
type MemoryStore struct {
	mu        sync.RWMutex
	customers map[uuid.UUID]domain.Customer
	byEmail   map[string]uuid.UUID
	orders    map[uuid.UUID]domain.Order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		customers: make(map[uuid.UUID]domain.Customer),
		byEmail:   make(map[string]uuid.UUID),
		orders:    make(map[uuid.UUID]domain.Order),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *MemoryStore) FindCustomerByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[emailKey(email)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := s.customers[id]
	return &c, nil
}

func (s *MemoryStore) CreateCustomer(ctx context.Context, customer domain.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := emailKey(customer.Email)
	if _, exists := s.byEmail[key]; exists {
		return domain.ErrConflict
	}
	s.customers[customer.ID] = customer
	s.byEmail[key] = customer.ID
	return nil
}

func (s *MemoryStore) CreateOrder(ctx context.Context, order domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.orders[order.ID]; exists {
		return domain.ErrConflict
	}
	order.Items = append([]domain.OrderItem(nil), order.Items...)
	s.orders[order.ID] = order
	return nil
}

func (s *MemoryStore) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	return &o, nil
}

func (s *MemoryStore) ListOrders(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if status != "" && o.OrderStatus != status {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	o.OrderStatus = status
	o.UpdatedAt = time.Now()
	s.orders[id] = o
	return &o, nil
}

func (s *MemoryStore) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus, ref string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	o.PaymentStatus = status
	if ref != "" {
		o.PaymentRef = ref
	}
	o.UpdatedAt = time.Now()
	s.orders[id] = o
	return &o, nil
}

func (s *MemoryStore) Stats(ctx context.Context) (domain.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.Stats{OrderCounts: make(map[domain.OrderStatus]int)}
	var totalValue float64
	for _, o := range s.orders {
		stats.OrderCounts[o.OrderStatus]++
		totalValue += o.TotalAmount
		if o.PaymentStatus == domain.PaymentPaid {
			stats.TotalRevenue += o.TotalAmount
		}
	}
	if n := len(s.orders); n > 0 {
		stats.AverageOrderValue = domain.Round2(totalValue / float64(n))
	}
	stats.TotalRevenue = domain.Round2(stats.TotalRevenue)
	return stats, nil
}

func (s *MemoryStore) TopMenuItems(ctx context.Context, limit int) ([]domain.ItemSales, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byItem := make(map[string]*domain.ItemSales)
	for _, o := range s.orders {
		for _, it := range o.Items {
			sales, ok := byItem[it.MenuItemID]
			if !ok {
				sales = &domain.ItemSales{MenuItemID: it.MenuItemID, Name: it.Name}
				byItem[it.MenuItemID] = sales
			}
			sales.Quantity += it.Quantity
			sales.Revenue = domain.Round2(sales.Revenue + it.TotalPrice)
		}
	}

	out := make([]domain.ItemSales, 0, len(byItem))
	for _, sales := range byItem {
		out = append(out, *sales)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
