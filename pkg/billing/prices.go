package billing

import (
	"maps"

	"github.com/moodmoney/quota/pkg/plans"
)

// PriceCatalog maps provider price IDs to plan tiers and back.
type PriceCatalog struct {
	tiers  map[string]plans.Tier
	prices map[plans.Tier]string
}

// NewPriceCatalog builds a catalog from tier to price ID pairs. Empty price
// IDs and tiers that cannot be purchased are skipped.
func NewPriceCatalog(prices map[plans.Tier]string) *PriceCatalog {
	c := &PriceCatalog{
		tiers:  make(map[string]plans.Tier, len(prices)),
		prices: make(map[plans.Tier]string, len(prices)),
	}
	for tier, price := range prices {
		if price == "" || !tier.Valid() || tier == plans.TierFree {
			continue
		}
		c.tiers[price] = tier
		c.prices[tier] = price
	}
	return c
}

// PriceCatalogFromConfig reads the STRIPE_PRICE_* settings.
func PriceCatalogFromConfig(cfg Config) *PriceCatalog {
	return NewPriceCatalog(map[plans.Tier]string{
		plans.TierStarter: cfg.PriceStarter,
		plans.TierPro:     cfg.PricePro,
		plans.TierPremium: cfg.PricePremium,
	})
}

// TierFor returns the tier sold under priceID.
func (c *PriceCatalog) TierFor(priceID string) (plans.Tier, bool) {
	t, ok := c.tiers[priceID]
	return t, ok
}

// PriceFor returns the price ID that sells tier.
func (c *PriceCatalog) PriceFor(tier plans.Tier) (string, bool) {
	p, ok := c.prices[tier]
	return p, ok
}

// Prices returns a copy of the tier to price mapping.
func (c *PriceCatalog) Prices() map[plans.Tier]string {
	return maps.Clone(c.prices)
}
