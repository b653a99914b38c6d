package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	testhelpers "github.com/polkiloo/storefront/internal/test"
)

func TestStockLedgerConcurrentReservationsNeverOversell(t *testing.T) {
	products := testhelpers.NewProductRepositoryStub(model.Product{ID: 1, Price: 100, Stock: 1})
	ledger := NewStockLedger(products, discardLogger())

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		short     atomic.Int32
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := ledger.Reserve(context.Background(), 1, 1)
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, domainErrors.ErrInsufficientStock):
				short.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(1), short.Load())
	assert.Zero(t, products.Stock(1))
}

func TestStockLedgerReserveAllRollsBackEarlierLines(t *testing.T) {
	products := testhelpers.NewProductRepositoryStub(
		model.Product{ID: 1, Stock: 5},
		model.Product{ID: 2, Stock: 5},
		model.Product{ID: 3, Stock: 1},
	)
	ledger := NewStockLedger(products, discardLogger())

	err := ledger.ReserveAll(context.Background(), []model.OrderItem{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 3},
		{ProductID: 3, Quantity: 2},
	})

	var stockErr *domainErrors.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(3), stockErr.ProductID)
	assert.Equal(t, 1, stockErr.Available)

	assert.Equal(t, 5, products.Stock(1))
	assert.Equal(t, 5, products.Stock(2))
	assert.Equal(t, 1, products.Stock(3))
	assert.Equal(t, 2, products.ReleasedCount())
}

func TestStockLedgerRejectsNonPositiveQuantity(t *testing.T) {
	ledger := NewStockLedger(testhelpers.NewProductRepositoryStub(model.Product{ID: 1, Stock: 5}), discardLogger())

	assert.ErrorIs(t, ledger.Reserve(context.Background(), 1, 0), domainErrors.ErrValidation)
	assert.ErrorIs(t, ledger.Release(context.Background(), 1, -1), domainErrors.ErrValidation)
}

func TestStockLedgerReleaseAllAttemptsEveryLine(t *testing.T) {
	products := testhelpers.NewProductRepositoryStub(model.Product{ID: 1, Stock: 0}, model.Product{ID: 3, Stock: 0})
	logger, logs := capturingLogger()
	ledger := NewStockLedger(products, logger)

	err := ledger.ReleaseAll(context.Background(), []model.OrderItem{
		{ProductID: 1, Quantity: 1},
		{ProductID: 2, Quantity: 1},
		{ProductID: 3, Quantity: 4},
	})

	assert.ErrorIs(t, err, domainErrors.ErrNotFound)
	assert.Equal(t, 1, products.Stock(1))
	assert.Equal(t, 4, products.Stock(3))
	assert.Contains(t, logs.String(), "stock release failed")
}
