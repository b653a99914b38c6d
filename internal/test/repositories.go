package test

import (
	"context"
	"sort"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	mu   sync.Mutex
	ByID map[int64]*model.User
	Err  error
}

// NewUserRepositoryStub constructs stub repository seeded with users.
func NewUserRepositoryStub(users ...*model.User) *UserRepositoryStub {
	s := &UserRepositoryStub{ByID: make(map[int64]*model.User)}
	for _, u := range users {
		s.ByID[u.ID] = u
	}
	return s
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByID[id]; ok {
		u := *user
		return &u, nil
	}
	return nil, domainErrors.ErrNotFound
}

// StockCall records a stock mutation.
type StockCall struct {
	ProductID int64
	Quantity  int
}

// ProductRepositoryStub keeps a mutable catalog with per product stock.
type ProductRepositoryStub struct {
	mu         sync.Mutex
	Products   map[int64]*model.Product
	GetErr     error
	FailOn     map[int64]error
	Decrements []StockCall
	Increments []StockCall
}

// NewProductRepositoryStub constructs a catalog from the given products.
func NewProductRepositoryStub(products ...model.Product) *ProductRepositoryStub {
	s := &ProductRepositoryStub{Products: make(map[int64]*model.Product), FailOn: make(map[int64]error)}
	for i := range products {
		p := products[i]
		s.Products[p.ID] = &p
	}
	return s
}

// GetByIDs returns the known products among ids.
func (s *ProductRepositoryStub) GetByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	out := make(map[int64]model.Product, len(ids))
	for _, id := range ids {
		if p, ok := s.Products[id]; ok {
			out[id] = *p
		}
	}
	return out, nil
}

// DecrementStock subtracts qty iff enough stock is available.
func (s *ProductRepositoryStub) DecrementStock(ctx context.Context, productID int64, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FailOn[productID]; err != nil {
		return err
	}
	p, ok := s.Products[productID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if p.Stock < qty {
		return &domainErrors.InsufficientStockError{ProductID: productID, Requested: qty, Available: p.Stock}
	}
	p.Stock -= qty
	s.Decrements = append(s.Decrements, StockCall{ProductID: productID, Quantity: qty})
	return nil
}

// IncrementStock adds qty back to the product.
func (s *ProductRepositoryStub) IncrementStock(ctx context.Context, productID int64, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.Products[productID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	p.Stock += qty
	s.Increments = append(s.Increments, StockCall{ProductID: productID, Quantity: qty})
	return nil
}

// Stock returns the current stock of a product.
func (s *ProductRepositoryStub) Stock(productID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.Products[productID]; ok {
		return p.Stock
	}
	return 0
}

// ReleasedCount returns how many increments were recorded.
func (s *ProductRepositoryStub) ReleasedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Increments)
}

// OrderRepositoryStub is an in-memory order store with the same
// compare-and-set semantics as the PostgreSQL implementation.
type OrderRepositoryStub struct {
	mu     sync.Mutex
	Orders map[int64]*model.Order
	next   int64

	CreateErr error
	GetErr    error
	UpdateErr error
	AttachErr error
	ApplyErr  error
	RefundErr error
	FindErr   error

	StatusUpdates  int
	AppliedResults []model.PaymentResult
}

// NewOrderRepositoryStub constructs an empty order store.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{Orders: make(map[int64]*model.Order)}
}

// Put stores a copy of order, keeping its ID.
func (s *OrderRepositoryStub) Put(order model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Orders == nil {
		s.Orders = make(map[int64]*model.Order)
	}
	if order.ID > s.next {
		s.next = order.ID
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	stored := cloneOrder(&order)
	s.Orders[order.ID] = stored
}

// Snapshot returns a copy of a stored order or nil.
func (s *OrderRepositoryStub) Snapshot(id int64) *model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.Orders[id]; ok {
		return cloneOrder(o)
	}
	return nil
}

// Create assigns an id and stores the order.
func (s *OrderRepositoryStub) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	if s.Orders == nil {
		s.Orders = make(map[int64]*model.Order)
	}
	s.next++
	stored := cloneOrder(order)
	stored.ID = s.next
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	s.Orders[stored.ID] = stored
	return cloneOrder(stored), nil
}

// GetByID returns a copy of the order.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	o, ok := s.Orders[id]
	if !ok {
		return nil, domainErrors.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

// ListByUser returns the user's orders, newest first.
func (s *OrderRepositoryStub) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Order
	for _, o := range s.Orders {
		if o.UserID == userID {
			out = append(out, *cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// UpdateStatus applies update while the stored status equals from.
func (s *OrderRepositoryStub) UpdateStatus(ctx context.Context, id int64, from model.OrderStatus, update model.StatusUpdate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UpdateErr != nil {
		return false, s.UpdateErr
	}
	o, ok := s.Orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = update.Status
	o.PaidAt = update.PaidAt
	o.DeliveredAt = update.DeliveredAt
	o.UpdatedAt = time.Now()
	s.StatusUpdates++
	return true, nil
}

// AttachTransaction overwrites the payment result of a pending unpaid order.
func (s *OrderRepositoryStub) AttachTransaction(ctx context.Context, id int64, result model.PaymentResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.AttachErr != nil {
		return s.AttachErr
	}
	o, ok := s.Orders[id]
	if !ok {
		return domainErrors.ErrOrderNotFound
	}
	if o.Status != model.OrderStatusPending || o.PaidAt != nil {
		return domainErrors.ErrAlreadyPaid
	}
	o.PaymentResult = result
	return nil
}

// ApplyPaymentOutcome records a confirmation on a pending unpaid order.
func (s *OrderRepositoryStub) ApplyPaymentOutcome(ctx context.Context, id int64, result model.PaymentResult, paidAt *time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ApplyErr != nil {
		return false, s.ApplyErr
	}
	o, ok := s.Orders[id]
	if !ok || o.Status != model.OrderStatusPending || o.PaidAt != nil {
		return false, nil
	}
	o.PaymentResult = result
	if paidAt != nil {
		o.PaidAt = paidAt
		o.Status = model.OrderStatusProcessing
	}
	s.AppliedResults = append(s.AppliedResults, result)
	return true, nil
}

// RecordRefund stores the refund unless one exists.
func (s *OrderRepositoryStub) RecordRefund(ctx context.Context, id int64, refund model.Refund) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.RefundErr != nil {
		return false, s.RefundErr
	}
	o, ok := s.Orders[id]
	if !ok || o.PaymentResult.Refund != nil {
		return false, nil
	}
	r := refund
	o.PaymentResult.Refund = &r
	return true, nil
}

// FindByBuyOrder returns the order whose payment result carries buyOrder.
func (s *OrderRepositoryStub) FindByBuyOrder(ctx context.Context, buyOrder string) (int64, error) {
	return s.find(func(o *model.Order) bool { return o.PaymentResult.BuyOrder == buyOrder })
}

// FindByPaymentToken returns the order whose payment result carries token.
func (s *OrderRepositoryStub) FindByPaymentToken(ctx context.Context, token string) (int64, error) {
	return s.find(func(o *model.Order) bool { return o.PaymentResult.Token == token })
}

// FindLatestPendingGateway returns the newest pending unpaid gateway order created after since.
func (s *OrderRepositoryStub) FindLatestPendingGateway(ctx context.Context, since time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FindErr != nil {
		return 0, s.FindErr
	}
	var latest *model.Order
	for _, o := range s.Orders {
		if o.Status != model.OrderStatusPending || o.PaidAt != nil || !o.UsesGateway() || o.CreatedAt.Before(since) {
			continue
		}
		if latest == nil || o.CreatedAt.After(latest.CreatedAt) {
			latest = o
		}
	}
	if latest == nil {
		return 0, domainErrors.ErrNotFound
	}
	return latest.ID, nil
}

func (s *OrderRepositoryStub) find(match func(*model.Order) bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FindErr != nil {
		return 0, s.FindErr
	}
	for _, o := range s.Orders {
		if match(o) {
			return o.ID, nil
		}
	}
	return 0, domainErrors.ErrNotFound
}

func cloneOrder(o *model.Order) *model.Order {
	c := *o
	c.Items = append([]model.OrderItem(nil), o.Items...)
	if o.PaymentResult.Refund != nil {
		r := *o.PaymentResult.Refund
		c.PaymentResult.Refund = &r
	}
	return &c
}

// SettingsRepositoryStub keeps configuration entries in memory.
type SettingsRepositoryStub struct {
	mu        sync.Mutex
	Items     map[string]model.Setting
	ListErr   error
	UpdateErr error
	ListCalls int
}

// NewSettingsRepositoryStub seeds the pricing keys with the given values.
func NewSettingsRepositoryStub(taxRate, threshold, shippingCost string) *SettingsRepositoryStub {
	zero, hundred := 0.0, 100.0
	return &SettingsRepositoryStub{Items: map[string]model.Setting{
		model.SettingTaxRate:               {Key: model.SettingTaxRate, Value: taxRate, Type: model.SettingNumber, Category: "pricing", Min: &zero, Max: &hundred},
		model.SettingFreeShippingThreshold: {Key: model.SettingFreeShippingThreshold, Value: threshold, Type: model.SettingNumber, Category: "shipping", Min: &zero},
		model.SettingDefaultShippingCost:   {Key: model.SettingDefaultShippingCost, Value: shippingCost, Type: model.SettingNumber, Category: "shipping", Min: &zero},
	}}
}

// List returns every entry ordered by key.
func (s *SettingsRepositoryStub) List(ctx context.Context) ([]model.Setting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ListCalls++
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	out := make([]model.Setting, 0, len(s.Items))
	for _, item := range s.Items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Get returns a single entry.
func (s *SettingsRepositoryStub) Get(ctx context.Context, key string) (*model.Setting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.Items[key]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &item, nil
}

// Update stores a new value.
func (s *SettingsRepositoryStub) Update(ctx context.Context, key, value string, updatedBy int64) (*model.Setting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UpdateErr != nil {
		return nil, s.UpdateErr
	}
	item, ok := s.Items[key]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	item.Value = value
	item.UpdatedAt = time.Now()
	item.UpdatedBy = &updatedBy
	s.Items[key] = item
	return &item, nil
}

// Calls returns how many times List was invoked.
func (s *SettingsRepositoryStub) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ListCalls
}

// CorrelationStoreStub is a single use buy order map.
type CorrelationStoreStub struct {
	mu      sync.Mutex
	Entries map[string]int64
	SaveErr error
	TakeErr error
	Saves   int
}

// NewCorrelationStoreStub constructs an empty store.
func NewCorrelationStoreStub() *CorrelationStoreStub {
	return &CorrelationStoreStub{Entries: make(map[string]int64)}
}

// Save records the mapping.
func (s *CorrelationStoreStub) Save(ctx context.Context, buyOrder string, orderID int64, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	if s.Entries == nil {
		s.Entries = make(map[string]int64)
	}
	s.Entries[buyOrder] = orderID
	s.Saves++
	return nil
}

// Take returns and removes the mapping.
func (s *CorrelationStoreStub) Take(ctx context.Context, buyOrder string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.TakeErr != nil {
		return 0, s.TakeErr
	}
	id, ok := s.Entries[buyOrder]
	if !ok {
		return 0, domainErrors.ErrNotFound
	}
	delete(s.Entries, buyOrder)
	return id, nil
}

// Len returns the number of live entries.
func (s *CorrelationStoreStub) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Entries)
}
