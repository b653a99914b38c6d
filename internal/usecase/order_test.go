package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	testhelpers "github.com/polkiloo/storefront/internal/test"
)

type orderFixture struct {
	orders   *testhelpers.OrderRepositoryStub
	users    *testhelpers.UserRepositoryStub
	products *testhelpers.ProductRepositoryStub
	settings *testhelpers.SettingsRepositoryStub
	notifier *testhelpers.NotifierStub
	uc       *OrderUseCase
}

func newOrderFixture(t *testing.T, products ...model.Product) *orderFixture {
	t.Helper()
	f := &orderFixture{
		orders: testhelpers.NewOrderRepositoryStub(),
		users: testhelpers.NewUserRepositoryStub(
			&model.User{ID: 1, Email: gofakeit.Email(), Name: gofakeit.Name(), Role: model.RoleCustomer},
			&model.User{ID: 2, Email: gofakeit.Email(), Name: gofakeit.Name(), Role: model.RoleCustomer, Wholesale: true},
			&model.User{ID: 99, Email: gofakeit.Email(), Role: model.RoleAdmin},
		),
		products: testhelpers.NewProductRepositoryStub(products...),
		settings: testhelpers.NewSettingsRepositoryStub("19", "100000", "3990"),
		notifier: &testhelpers.NotifierStub{},
	}
	logger := discardLogger()
	provider := NewConfigProvider(f.settings, time.Minute, logger)
	f.uc = NewOrderUseCase(
		f.orders,
		f.users,
		NewPriceEngine(provider, f.products),
		NewStockLedger(f.products, logger),
		f.notifier,
		logger,
	)
	return f
}

func deliveryCheckout(items ...model.CheckoutItem) model.CheckoutRequest {
	return model.CheckoutRequest{
		Items:           items,
		Fulfillment:     model.FulfillmentDelivery,
		ShippingAddress: &model.ShippingAddress{Street: gofakeit.Street(), City: gofakeit.City(), Country: "CL"},
		PaymentMethod:   model.PaymentMethodGateway,
	}
}

func TestCreateOrderHappyPath(t *testing.T) {
	f := newOrderFixture(t, model.Product{ID: 10, Name: "Desk", Price: 100000, Stock: 3})

	order, err := f.uc.Create(context.Background(), customer, deliveryCheckout(model.CheckoutItem{ProductID: 10, Quantity: 1}))
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, int64(100000), order.ItemsSubtotal)
	assert.Equal(t, int64(19000), order.Tax)
	assert.Zero(t, order.Shipping)
	assert.Equal(t, int64(119000), order.Total)
	assert.Equal(t, model.OrderTypeB2C, order.OrderType)
	assert.InDelta(t, 19.0, order.TaxRate, 0.0001)
	assert.False(t, order.IsPaid())
	assert.Equal(t, 2, f.products.Stock(10))

	records := f.notifier.Snapshot()
	require.Len(t, records, 1)
	assert.Equal(t, "created", records[0].Kind)
	assert.Equal(t, order.ID, records[0].OrderID)
}

func TestCreateOrderOverridesClientPrices(t *testing.T) {
	f := newOrderFixture(t, model.Product{ID: 10, Name: "Chair", Price: 20000, Stock: 10})

	req := deliveryCheckout(model.CheckoutItem{ProductID: 10, Quantity: 2, UnitPrice: ptr(int64(1))})
	req.ItemsSubtotal, req.Tax, req.Shipping, req.Total = ptr(int64(2)), ptr(int64(0)), ptr(int64(0)), ptr(int64(2))

	order, err := f.uc.Create(context.Background(), customer, req)
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(20000), order.Items[0].UnitPrice)
	assert.Equal(t, int64(40000), order.ItemsSubtotal)
	assert.Equal(t, int64(7600), order.Tax)
	assert.Equal(t, int64(3990), order.Shipping)
	assert.Equal(t, int64(51590), order.Total)
}

func TestCreateOrderWholesaleSnapshot(t *testing.T) {
	f := newOrderFixture(t, model.Product{ID: 10, Price: 1000, WholesalePrice: ptr(int64(700)), Stock: 10})

	req := deliveryCheckout(model.CheckoutItem{ProductID: 10, Quantity: 1})
	req.Fulfillment = model.FulfillmentPickup
	req.PickupLocation = &model.PickupLocation{LocationID: "store-1"}

	order, err := f.uc.Create(context.Background(), model.Identity{UserID: 2, Role: model.RoleCustomer}, req)
	require.NoError(t, err)

	assert.Equal(t, model.OrderTypeB2B, order.OrderType)
	assert.Equal(t, int64(700), order.Items[0].UnitPrice)
	assert.Zero(t, order.Shipping)
	assert.Nil(t, order.ShippingAddress)
	require.NotNil(t, order.PickupLocation)
}

func TestCreateOrderValidation(t *testing.T) {
	f := newOrderFixture(t, model.Product{ID: 10, Price: 1000, Stock: 10})
	item := model.CheckoutItem{ProductID: 10, Quantity: 1}

	cases := []struct {
		name   string
		mutate func(*model.CheckoutRequest)
	}{
		{"empty cart", func(r *model.CheckoutRequest) { r.Items = nil }},
		{"zero quantity", func(r *model.CheckoutRequest) { r.Items[0].Quantity = 0 }},
		{"missing product id", func(r *model.CheckoutRequest) { r.Items[0].ProductID = 0 }},
		{"unknown product", func(r *model.CheckoutRequest) { r.Items[0].ProductID = 77 }},
		{"unknown payment method", func(r *model.CheckoutRequest) { r.PaymentMethod = "cash" }},
		{"delivery without address", func(r *model.CheckoutRequest) { r.ShippingAddress = nil }},
		{"delivery without city", func(r *model.CheckoutRequest) { r.ShippingAddress.City = " " }},
		{"pickup without location", func(r *model.CheckoutRequest) { r.Fulfillment = model.FulfillmentPickup }},
		{"unknown fulfillment", func(r *model.CheckoutRequest) { r.Fulfillment = "drone" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := deliveryCheckout(item)
			tc.mutate(&req)
			_, err := f.uc.Create(context.Background(), customer, req)
			assert.ErrorIs(t, err, domainErrors.ErrValidation)
		})
	}
	assert.Equal(t, 10, f.products.Stock(10))
}

func TestCreateOrderDefaultsToDelivery(t *testing.T) {
	f := newOrderFixture(t, model.Product{ID: 10, Price: 1000, Stock: 10})
	req := deliveryCheckout(model.CheckoutItem{ProductID: 10, Quantity: 1})
	req.Fulfillment = ""
	req.PickupLocation = &model.PickupLocation{LocationID: "ignored"}

	order, err := f.uc.Create(context.Background(), customer, req)
	require.NoError(t, err)
	assert.Equal(t, model.FulfillmentDelivery, order.Fulfillment)
	assert.Nil(t, order.PickupLocation)
}

func TestCreateOrderUnknownUser(t *testing.T) {
	f := newOrderFixture(t, model.Product{ID: 10, Price: 1000, Stock: 10})

	_, err := f.uc.Create(context.Background(), model.Identity{UserID: 404}, deliveryCheckout(model.CheckoutItem{ProductID: 10, Quantity: 1}))
	assert.ErrorIs(t, err, domainErrors.ErrUnauthorized)
}

func TestCreateOrderInsufficientStockLeavesNoReservation(t *testing.T) {
	f := newOrderFixture(t,
		model.Product{ID: 10, Price: 1000, Stock: 5},
		model.Product{ID: 11, Price: 1000, Stock: 1},
	)

	_, err := f.uc.Create(context.Background(), customer, deliveryCheckout(
		model.CheckoutItem{ProductID: 10, Quantity: 2},
		model.CheckoutItem{ProductID: 11, Quantity: 2},
	))

	assert.ErrorIs(t, err, domainErrors.ErrInsufficientStock)
	assert.Equal(t, 5, f.products.Stock(10))
	assert.Equal(t, 1, f.products.Stock(11))
	assert.Empty(t, f.orders.Orders)
}

func TestCreateOrderReleasesStockWhenWriteFails(t *testing.T) {
	f := newOrderFixture(t, model.Product{ID: 10, Price: 1000, Stock: 5})
	f.orders.CreateErr = errors.New("insert failed")

	_, err := f.uc.Create(context.Background(), customer, deliveryCheckout(model.CheckoutItem{ProductID: 10, Quantity: 3}))

	assert.ErrorIs(t, err, f.orders.CreateErr)
	assert.Equal(t, 5, f.products.Stock(10))
	assert.Empty(t, f.notifier.Snapshot())
}

func TestGetAndListEnforceOwnership(t *testing.T) {
	f := newOrderFixture(t)
	f.orders.Put(model.Order{ID: 1, UserID: 1, Status: model.OrderStatusPending})
	f.orders.Put(model.Order{ID: 2, UserID: 2, Status: model.OrderStatusPending})
	f.orders.Put(model.Order{ID: 3, UserID: 1, Status: model.OrderStatusShipped})
	ctx := context.Background()

	_, err := f.uc.Get(ctx, customer, 2)
	assert.ErrorIs(t, err, domainErrors.ErrForbidden)

	order, err := f.uc.Get(ctx, operator, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), order.ID)

	_, err = f.uc.Get(ctx, customer, 42)
	assert.ErrorIs(t, err, domainErrors.ErrOrderNotFound)

	list, err := f.uc.List(ctx, customer)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(3), list[0].ID)
	assert.Equal(t, int64(1), list[1].ID)
}

func TestCancelReleasesStockOnce(t *testing.T) {
	f := newOrderFixture(t, model.Product{ID: 10, Price: 1000, Stock: 5})
	ctx := context.Background()

	order, err := f.uc.Create(ctx, customer, deliveryCheckout(model.CheckoutItem{ProductID: 10, Quantity: 2}))
	require.NoError(t, err)
	require.Equal(t, 3, f.products.Stock(10))

	cancelled, err := f.uc.Cancel(ctx, customer, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, 5, f.products.Stock(10))

	again, err := f.uc.Cancel(ctx, customer, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, again.Status)
	assert.Equal(t, 5, f.products.Stock(10))
	assert.Equal(t, 1, f.products.ReleasedCount())
}

func TestCancelGuards(t *testing.T) {
	f := newOrderFixture(t)
	f.orders.Put(model.Order{ID: 1, UserID: 1, Status: model.OrderStatusShipped, Fulfillment: model.FulfillmentDelivery})
	f.orders.Put(model.Order{ID: 2, UserID: 2, Status: model.OrderStatusPending})
	ctx := context.Background()

	_, err := f.uc.Cancel(ctx, customer, 1)
	assert.ErrorIs(t, err, domainErrors.ErrInvalidTransition)
	assert.Equal(t, model.OrderStatusShipped, f.orders.Snapshot(1).Status)

	_, err = f.uc.Cancel(ctx, customer, 2)
	assert.ErrorIs(t, err, domainErrors.ErrForbidden)

	cancelled, err := f.uc.Cancel(ctx, operator, 2)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)
}

func TestUpdateStatusTransitions(t *testing.T) {
	f := newOrderFixture(t)
	f.orders.Put(model.Order{ID: 1, UserID: 1, Status: model.OrderStatusPending, Fulfillment: model.FulfillmentDelivery})
	ctx := context.Background()

	_, err := f.uc.UpdateStatus(ctx, customer, 1, model.StatusChange{Status: model.OrderStatusProcessing})
	assert.ErrorIs(t, err, domainErrors.ErrForbidden)

	_, err = f.uc.UpdateStatus(ctx, operator, 1, model.StatusChange{Status: model.OrderStatusReadyForPickup})
	assert.ErrorIs(t, err, domainErrors.ErrInvalidTransition)

	paid := true
	order, err := f.uc.UpdateStatus(ctx, operator, 1, model.StatusChange{Status: model.OrderStatusProcessing, IsPaid: &paid})
	require.NoError(t, err)
	assert.True(t, order.IsPaid())
	assert.False(t, order.IsDelivered())

	order, err = f.uc.UpdateStatus(ctx, operator, 1, model.StatusChange{Status: model.OrderStatusDelivered})
	require.NoError(t, err)
	assert.True(t, order.IsDelivered())
	assert.Equal(t, model.OrderStatusDelivered, f.orders.Snapshot(1).Status)

	_, err = f.uc.UpdateStatus(ctx, operator, 1, model.StatusChange{Status: model.OrderStatusShipped})
	assert.ErrorIs(t, err, domainErrors.ErrInvalidTransition)

	statuses := make([]model.OrderStatus, 0)
	for _, r := range f.notifier.Snapshot() {
		statuses = append(statuses, r.Status)
	}
	assert.Equal(t, []model.OrderStatus{model.OrderStatusProcessing, model.OrderStatusDelivered}, statuses)
}

func TestUpdateStatusMarksPaidWithoutMoving(t *testing.T) {
	f := newOrderFixture(t)
	f.orders.Put(model.Order{ID: 1, UserID: 1, Status: model.OrderStatusPending, Fulfillment: model.FulfillmentPickup, PaymentMethod: model.PaymentMethodBankTransfer})

	paid := true
	order, err := f.uc.UpdateStatus(context.Background(), operator, 1, model.StatusChange{Status: model.OrderStatusPending, IsPaid: &paid})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.True(t, order.IsPaid())

	order, err = f.uc.UpdateStatus(context.Background(), operator, 1, model.StatusChange{Status: model.OrderStatusReadyForPickup})
	require.NoError(t, err)
	assert.True(t, order.IsDelivered())
}

func TestUpdateStatusCancelledDelegatesToCancel(t *testing.T) {
	f := newOrderFixture(t, model.Product{ID: 10, Price: 1000, Stock: 5})
	ctx := context.Background()
	order, err := f.uc.Create(ctx, customer, deliveryCheckout(model.CheckoutItem{ProductID: 10, Quantity: 4}))
	require.NoError(t, err)

	updated, err := f.uc.UpdateStatus(ctx, operator, order.ID, model.StatusChange{Status: model.OrderStatusCancelled})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, updated.Status)
	assert.Equal(t, 5, f.products.Stock(10))
}

func TestUpdateStatusLosesRace(t *testing.T) {
	f := newOrderFixture(t)
	f.orders.Put(model.Order{ID: 1, UserID: 1, Status: model.OrderStatusPending, Fulfillment: model.FulfillmentDelivery})
	f.orders.UpdateErr = errors.New("serialization failure")

	_, err := f.uc.UpdateStatus(context.Background(), operator, 1, model.StatusChange{Status: model.OrderStatusProcessing})
	assert.ErrorIs(t, err, f.orders.UpdateErr)
}
