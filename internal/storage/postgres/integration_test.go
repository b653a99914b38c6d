//go:build integration

package postgres

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"go.uber.org/goleak"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

type storageSuite struct {
	suite.Suite

	container *tcpostgres.PostgresContainer
	storage   *Storage
	faker     *gofakeit.Faker
}

func TestStorageSuite(t *testing.T) {
	defer goleak.VerifyNone(t)

	suite.Run(t, new(storageSuite))
}

func (s *storageSuite) SetupSuite() {
	ctx := s.T().Context()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("storefront"),
		tcpostgres.WithUsername("storefront"),
		tcpostgres.WithPassword("storefront"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.storage, err = New(ctx, dsn, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	s.Require().NoError(err)
	s.faker = gofakeit.New(7)
}

func (s *storageSuite) TearDownSuite() {
	if s.storage != nil {
		s.storage.Close()
	}
	if s.container != nil {
		s.NoError(testcontainers.TerminateContainer(s.container))
	}
}

func (s *storageSuite) insertUser(wholesale bool) int64 {
	var id int64
	err := s.storage.pool.QueryRow(s.T().Context(),
		`INSERT INTO users (email, name, role, wholesale) VALUES ($1, $2, $3, $4) RETURNING id`,
		s.faker.Email(), s.faker.Name(), model.RoleCustomer, wholesale).Scan(&id)
	s.Require().NoError(err)
	return id
}

func (s *storageSuite) insertProduct(price int64, stock int) int64 {
	var id int64
	err := s.storage.pool.QueryRow(s.T().Context(),
		`INSERT INTO products (name, price, stock) VALUES ($1, $2, $3) RETURNING id`,
		s.faker.ProductName(), price, stock).Scan(&id)
	s.Require().NoError(err)
	return id
}

func (s *storageSuite) newOrder(userID, productID int64) *model.Order {
	return &model.Order{
		UserID:          userID,
		Items:           []model.OrderItem{{ProductID: productID, Name: "Desk", Quantity: 1, UnitPrice: 100000}},
		Fulfillment:     model.FulfillmentDelivery,
		ShippingAddress: &model.ShippingAddress{Street: "Main 1", City: "Santiago", Country: "CL"},
		PaymentMethod:   model.PaymentMethodGateway,
		OrderType:       model.OrderTypeB2C,
		TaxRate:         19,
		ItemsSubtotal:   100000,
		Tax:             19000,
		Total:           119000,
		Status:          model.OrderStatusPending,
	}
}

func (s *storageSuite) TestSeededSettings() {
	settings, err := s.storage.Settings().List(s.T().Context())
	s.Require().NoError(err)

	values := map[string]string{}
	for _, setting := range settings {
		values[setting.Key] = setting.Value
	}
	s.Equal("19", values[model.SettingTaxRate])
	s.Equal("100000", values[model.SettingFreeShippingThreshold])
	s.Equal("3990", values[model.SettingDefaultShippingCost])
}

func (s *storageSuite) TestOrderRoundTrip() {
	ctx := s.T().Context()
	orders := s.storage.Orders()
	userID := s.insertUser(false)
	productID := s.insertProduct(100000, 5)

	created, err := orders.Create(ctx, s.newOrder(userID, productID))
	s.Require().NoError(err)
	s.NotZero(created.ID)

	loaded, err := orders.GetByID(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(int64(119000), loaded.Total)
	s.Equal("Santiago", loaded.ShippingAddress.City)
	s.Nil(loaded.PickupLocation)
	s.Len(loaded.Items, 1)
	s.False(loaded.IsPaid())

	list, err := orders.ListByUser(ctx, userID)
	s.Require().NoError(err)
	s.Len(list, 1)

	_, err = orders.GetByID(ctx, created.ID+1000)
	s.ErrorIs(err, domainErrors.ErrOrderNotFound)
}

func (s *storageSuite) TestPaymentLifecycle() {
	ctx := s.T().Context()
	orders := s.storage.Orders()
	created, err := orders.Create(ctx, s.newOrder(s.insertUser(false), s.insertProduct(100000, 5)))
	s.Require().NoError(err)

	buyOrder := s.faker.LetterN(10)
	attached := model.PaymentResult{Token: s.faker.UUID(), BuyOrder: buyOrder, Status: model.PaymentStatusPending, Amount: created.Total}
	s.Require().NoError(orders.AttachTransaction(ctx, created.ID, attached))

	id, err := orders.FindByBuyOrder(ctx, buyOrder)
	s.Require().NoError(err)
	s.Equal(created.ID, id)
	id, err = orders.FindByPaymentToken(ctx, attached.Token)
	s.Require().NoError(err)
	s.Equal(created.ID, id)

	paidAt := time.Now().UTC().Truncate(time.Microsecond)
	approved := attached
	approved.Status = model.PaymentStatusApproved

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		applied int
	)
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := orders.ApplyPaymentOutcome(ctx, created.ID, approved, &paidAt)
			if err == nil && ok {
				mu.Lock()
				applied++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.Equal(1, applied)

	loaded, err := orders.GetByID(ctx, created.ID)
	s.Require().NoError(err)
	s.True(loaded.IsPaid())
	s.Equal(model.OrderStatusProcessing, loaded.Status)

	s.ErrorIs(orders.AttachTransaction(ctx, created.ID, attached), domainErrors.ErrAlreadyPaid)

	refund := model.Refund{ID: "RF-1", Type: "REVERSED", Amount: created.Total, RefundedAt: paidAt}
	recorded, err := orders.RecordRefund(ctx, created.ID, refund)
	s.Require().NoError(err)
	s.True(recorded)
	recorded, err = orders.RecordRefund(ctx, created.ID, model.Refund{ID: "RF-2"})
	s.Require().NoError(err)
	s.False(recorded)

	loaded, err = orders.GetByID(ctx, created.ID)
	s.Require().NoError(err)
	s.Require().NotNil(loaded.PaymentResult.Refund)
	s.Equal("RF-1", loaded.PaymentResult.Refund.ID)
	s.Equal(model.PaymentStatusApproved, loaded.PaymentResult.Status)
}

func (s *storageSuite) TestLastUnitReservedOnce() {
	ctx := s.T().Context()
	products := s.storage.Products()
	productID := s.insertProduct(500, 1)

	results := make(chan error, 2)
	for range 2 {
		go func() { results <- products.DecrementStock(ctx, productID, 1) }()
	}
	first, second := <-results, <-results

	failures := 0
	for _, err := range []error{first, second} {
		if err != nil {
			s.ErrorIs(err, domainErrors.ErrInsufficientStock)
			failures++
		}
	}
	s.Equal(1, failures)

	catalog, err := products.GetByIDs(ctx, []int64{productID})
	s.Require().NoError(err)
	s.Equal(0, catalog[productID].Stock)
}

func (s *storageSuite) TestCorrelationsAreSingleUse() {
	ctx := s.T().Context()
	store := s.storage.Correlations()
	buyOrder := s.faker.LetterN(12)

	require.NoError(s.T(), store.Save(ctx, buyOrder, 42, time.Minute))
	id, err := store.Take(ctx, buyOrder)
	s.Require().NoError(err)
	s.Equal(int64(42), id)

	_, err = store.Take(ctx, buyOrder)
	s.ErrorIs(err, domainErrors.ErrNotFound)

	s.Require().NoError(store.Save(ctx, buyOrder, 43, -time.Second))
	_, err = store.Take(ctx, buyOrder)
	s.ErrorIs(err, domainErrors.ErrNotFound)
}
