package usecase

import (
	"context"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

var hundred = decimal.NewFromInt(100)

// PricingConfigSource supplies the configuration pricing depends on.
type PricingConfigSource interface {
	PricingConfig(ctx context.Context) (model.PricingConfig, error)
}

// PriceEngine recomputes cart pricing from the catalog and current configuration.
type PriceEngine struct {
	config   PricingConfigSource
	products repository.ProductRepository
}

// NewPriceEngine constructs PriceEngine.
func NewPriceEngine(config PricingConfigSource, products repository.ProductRepository) *PriceEngine {
	return &PriceEngine{config: config, products: products}
}

// Price loads a catalog snapshot for the cart and computes its pricing.
// Prices submitted with the cart are never read.
func (e *PriceEngine) Price(ctx context.Context, items []model.CheckoutItem, tier model.PriceTier, mode model.FulfillmentMode) (model.Pricing, error) {
	cfg, err := e.config.PricingConfig(ctx)
	if err != nil {
		return model.Pricing{}, err
	}

	ids := lo.Uniq(lo.Map(items, func(i model.CheckoutItem, _ int) int64 { return i.ProductID }))
	catalog, err := e.products.GetByIDs(ctx, ids)
	if err != nil {
		return model.Pricing{}, err
	}

	return ComputePricing(items, tier, mode, catalog, cfg)
}

// ComputePricing is the pure pricing function: the same inputs always yield the same breakdown.
func ComputePricing(items []model.CheckoutItem, tier model.PriceTier, mode model.FulfillmentMode, catalog map[int64]model.Product, cfg model.PricingConfig) (model.Pricing, error) {
	lines := make([]model.PricedLine, 0, len(items))
	for i, item := range items {
		if item.Quantity < 1 {
			return model.Pricing{}, domainErrors.Validation("items[%d]: quantity must be at least 1", i)
		}
		product, ok := catalog[item.ProductID]
		if !ok {
			return model.Pricing{}, domainErrors.Validation("items[%d]: unknown product %d", i, item.ProductID)
		}
		lines = append(lines, model.PricedLine{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  item.Quantity,
			UnitPrice: UnitPrice(product, tier),
		})
	}

	subtotal := lo.SumBy(lines, func(l model.PricedLine) int64 { return int64(l.Quantity) * l.UnitPrice })
	tax := decimal.NewFromInt(subtotal).Mul(cfg.TaxRate).Div(hundred).Round(0).IntPart()

	var shipping int64
	if mode != model.FulfillmentPickup && subtotal < cfg.FreeShippingThreshold {
		shipping = cfg.DefaultShippingCost
	}

	return model.Pricing{
		Lines:         lines,
		TaxRate:       cfg.TaxRate,
		ItemsSubtotal: subtotal,
		Tax:           tax,
		Shipping:      shipping,
		Total:         subtotal + tax + shipping,
	}, nil
}

// UnitPrice selects the tier base price and applies an active sale discount to it.
func UnitPrice(p model.Product, tier model.PriceTier) int64 {
	base := p.Price
	if tier == model.PriceTierWholesale && p.WholesalePrice != nil && *p.WholesalePrice > 0 {
		base = *p.WholesalePrice
	}
	if !p.OnSale || p.DiscountPercentage <= 0 {
		return base
	}
	factor := hundred.Sub(decimal.NewFromFloat(p.DiscountPercentage)).Div(hundred)
	if factor.IsNegative() {
		return 0
	}
	return decimal.NewFromInt(base).Mul(factor).Round(0).IntPart()
}
