package usecase

import (
	"context"
	"log/slog"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// CorrelationObserver records which strategy resolved a callback.
type CorrelationObserver interface {
	CorrelationResolved(strategy model.CorrelationStrategy)
	CorrelationFailed()
}

// Correlator resolves a gateway callback to an internal order id.
// Strategies run in a fixed priority order and stop at the first hit.
type Correlator struct {
	orders   repository.OrderRepository
	store    repository.CorrelationStore
	cache    repository.CorrelationStore
	observer CorrelationObserver
	ttl      time.Duration
	window   time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// CorrelatorParams groups Correlator collaborators. Cache and Observer are optional.
type CorrelatorParams struct {
	Orders          repository.OrderRepository
	Store           repository.CorrelationStore
	Cache           repository.CorrelationStore
	Observer        CorrelationObserver
	TTL             time.Duration
	HeuristicWindow time.Duration
	Logger          *slog.Logger
}

// NewCorrelator constructs Correlator.
func NewCorrelator(p CorrelatorParams) *Correlator {
	return &Correlator{
		orders:   p.Orders,
		store:    p.Store,
		cache:    p.Cache,
		observer: p.Observer,
		ttl:      p.TTL,
		window:   p.HeuristicWindow,
		logger:   p.Logger,
		now:      time.Now,
	}
}

// Register records buyOrder for orderID. The durable write is required;
// the cache write is best effort.
func (c *Correlator) Register(ctx context.Context, buyOrder string, orderID int64) error {
	if err := c.store.Save(ctx, buyOrder, orderID, c.ttl); err != nil {
		return err
	}
	if c.cache != nil {
		if err := c.cache.Save(ctx, buyOrder, orderID, c.ttl); err != nil {
			c.logger.Warn("correlation cache write failed",
				slog.String("buy_order", buyOrder),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

// Resolve finds the order a callback belongs to or fails with ErrOrderNotFound.
func (c *Correlator) Resolve(ctx context.Context, cb model.GatewayCallback) (model.Resolution, error) {
	type strategy struct {
		name model.CorrelationStrategy
		run  func(context.Context, model.GatewayCallback) (int64, bool)
	}
	strategies := []strategy{
		{model.StrategyCorrelationStore, c.fromStore},
		{model.StrategyStructuralParse, c.fromStructure},
		{model.StrategyBuyOrderLookup, c.fromBuyOrder},
		{model.StrategyTokenLookup, c.fromToken},
		{model.StrategyHeuristic, c.fromHeuristic},
	}

	for _, s := range strategies {
		if id, ok := s.run(ctx, cb); ok {
			if s.name == model.StrategyHeuristic {
				c.logger.Warn("payment callback resolved heuristically",
					slog.Int64("order_id", id),
					slog.String("token", cb.Token),
					slog.String("buy_order", cb.BuyOrder),
					slog.Duration("window", c.window))
			} else {
				c.logger.Debug("payment callback correlated",
					slog.Int64("order_id", id),
					slog.String("strategy", string(s.name)))
			}
			if c.observer != nil {
				c.observer.CorrelationResolved(s.name)
			}
			return model.Resolution{OrderID: id, Strategy: s.name}, nil
		}
	}

	if c.observer != nil {
		c.observer.CorrelationFailed()
	}
	c.logger.Error("payment callback could not be correlated",
		slog.String("token", cb.Token),
		slog.String("buy_order", cb.BuyOrder))
	return model.Resolution{}, domainErrors.ErrOrderNotFound
}

func (c *Correlator) fromStore(ctx context.Context, cb model.GatewayCallback) (int64, bool) {
	if cb.BuyOrder == "" {
		return 0, false
	}

	var cached int64
	if c.cache != nil {
		id, err := c.cache.Take(ctx, cb.BuyOrder)
		if err == nil {
			cached = id
		} else if !isNotFound(err) {
			c.logStrategyError(model.StrategyCorrelationStore, err)
		}
	}

	// The durable entry is consumed even on a cache hit so it stays single use.
	id, err := c.store.Take(ctx, cb.BuyOrder)
	switch {
	case cached != 0:
		return cached, true
	case err == nil:
		return id, true
	case !isNotFound(err):
		c.logStrategyError(model.StrategyCorrelationStore, err)
	}
	return 0, false
}

func (c *Correlator) fromStructure(ctx context.Context, cb model.GatewayCallback) (int64, bool) {
	id, ok := ParseBuyOrder(cb.BuyOrder)
	if !ok {
		return 0, false
	}
	order, err := c.orders.GetByID(ctx, id)
	if err != nil {
		if !isNotFound(err) {
			c.logStrategyError(model.StrategyStructuralParse, err)
		}
		return 0, false
	}
	return order.ID, true
}

func (c *Correlator) fromBuyOrder(ctx context.Context, cb model.GatewayCallback) (int64, bool) {
	if cb.BuyOrder == "" {
		return 0, false
	}
	return c.lookup(model.StrategyBuyOrderLookup)(c.orders.FindByBuyOrder(ctx, cb.BuyOrder))
}

func (c *Correlator) fromToken(ctx context.Context, cb model.GatewayCallback) (int64, bool) {
	token := cb.Token
	if token == "" {
		token = cb.AbortedToken
	}
	if token == "" {
		return 0, false
	}
	return c.lookup(model.StrategyTokenLookup)(c.orders.FindByPaymentToken(ctx, token))
}

func (c *Correlator) fromHeuristic(ctx context.Context, _ model.GatewayCallback) (int64, bool) {
	return c.lookup(model.StrategyHeuristic)(c.orders.FindLatestPendingGateway(ctx, c.now().Add(-c.window)))
}

func (c *Correlator) lookup(name model.CorrelationStrategy) func(int64, error) (int64, bool) {
	return func(id int64, err error) (int64, bool) {
		if err != nil {
			if !isNotFound(err) {
				c.logStrategyError(name, err)
			}
			return 0, false
		}
		return id, true
	}
}

func (c *Correlator) logStrategyError(name model.CorrelationStrategy, err error) {
	c.logger.Error("correlation strategy failed",
		slog.String("strategy", string(name)),
		slog.String("error", err.Error()))
}
