package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/lymq17/Antipatrones/internal/domain/user"
)

var zero = decimal.Zero

// DiscountPolicy maps a user tier and an order total to a discount amount.
type DiscountPolicy struct {
	cfg DiscountConfig
}

// NewDiscountPolicy creates a DiscountPolicy over the given rules.
func NewDiscountPolicy(cfg DiscountConfig) DiscountPolicy {
	return DiscountPolicy{cfg: cfg}
}

// Discount returns the discount for total. Gold is checked before silver and
// both thresholds are exclusive. Unrecognized tiers get no discount. The
// result is not rounded.
func (p DiscountPolicy) Discount(tier user.Tier, total decimal.Decimal) decimal.Decimal {
	switch {
	case tier == user.TierGold && total.GreaterThan(p.cfg.GoldMinTotal):
		return total.Mul(p.cfg.GoldRate)
	case tier == user.TierSilver && total.GreaterThan(p.cfg.SilverMinTotal):
		return total.Mul(p.cfg.SilverRate)
	default:
		return zero
	}
}
